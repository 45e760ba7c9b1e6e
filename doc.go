// Package theora provides a pure Go decoder for Theora video carried in Ogg
// files.
//
// Theora is a block-based, motion-compensated DCT video codec descended from
// On2's VP3. This package implements the complete decode path without any
// CGo dependencies:
//   - Ogg page framing with CRC verification and resynchronisation
//   - Packet reassembly across pages and interleaved logical streams
//   - Identification, comment and setup headers, including custom Huffman
//     trees and quantization matrices
//   - 4:2:0, 4:2:2 and 4:4:4 frames with last and golden references
//   - Granule position tracking and presentation times
//
// A Reader pulls pages from an io.Reader and returns decoded frames one at a
// time. Corrupt pages, sequence gaps and undecodable packets are logged,
// counted in Stats and skipped:
//
//	r := theora.NewReader(f, nil)
//	defer r.Close()
//	for {
//		frame, err := r.ReadFrame()
//		if err == io.EOF {
//			break
//		}
//		if err != nil {
//			return err
//		}
//		img := frame.YCbCr()
//		...
//	}
//
// Callers that demultiplex themselves feed packets to a Decoder directly.
//
// The package also registers itself with the standard library's image
// package, so image.Decode returns the first frame of an Ogg Theora file.
package theora
