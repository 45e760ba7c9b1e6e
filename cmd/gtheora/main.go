// Command gtheora inspects and decodes Ogg Theora video from the command line.
//
// Usage:
//
//	gtheora info [options] <input.ogv>   Display stream headers (use "-" for stdin)
//	gtheora dec [options] <input.ogv>    Decode frames to PNG, JPEG, WebP, BMP or TIFF
//
// Inputs compressed with zstd (for example .ogv.zst archives) are
// decompressed transparently.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	nativewebp "github.com/HugoSmits86/nativewebp"
	"github.com/gen2brain/webp"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/deepteams/theora"
)

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var errUsage = errors.New("usage")

// cli carries the process streams so tests can run commands in-process.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	err := c.run(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "gtheora: %v\n", err)
		}
		os.Exit(1)
	}
}

func (c *cli) run(args []string) error {
	if len(args) < 1 {
		c.printUsage()
		return errUsage
	}
	switch args[0] {
	case "info":
		return c.runInfo(args[1:])
	case "dec":
		return c.runDec(args[1:])
	case "-h", "-help", "--help", "help":
		c.printUsage()
		return nil
	}
	fmt.Fprintf(c.stderr, "gtheora: unknown command %q\n\n", args[0])
	c.printUsage()
	return errUsage
}

func (c *cli) printUsage() {
	fmt.Fprintf(c.stderr, `Usage:
  gtheora info [options] <input.ogv>   Display stream headers
  gtheora dec [options] <input.ogv>    Decode frames to PNG, JPEG, WebP, BMP or TIFF

Use "-" as input to read from stdin. zstd-compressed input is detected
automatically.

Run "gtheora <command> -h" for command-specific options.
`)
}

// newLogger returns a text logger on stderr; verbose enables debug events.
func (c *cli) newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))
}

// input is an opened source, transparently decompressed.
type input struct {
	io.Reader
	closers []func()
}

func (in *input) Close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
}

// openInput opens path, or stdin for "-", and unwraps a zstd frame if the
// data starts with one.
func (c *cli) openInput(path string) (*input, error) {
	in := &input{}
	var src io.Reader = c.stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, func() { f.Close() })
		src = f
	}

	br := bufio.NewReader(src)
	magic, _ := br.Peek(len(zstdMagic))
	if !bytes.Equal(magic, zstdMagic) {
		in.Reader = br
		return in, nil
	}
	dec, err := zstd.NewReader(br)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("opening zstd stream: %w", err)
	}
	in.closers = append(in.closers, dec.Close)
	in.Reader = dec
	return in, nil
}

func displayName(path string) string {
	if path == "-" {
		return "<stdin>"
	}
	return path
}

// --- info ---

func (c *cli) runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	count := fs.Bool("count", false, "decode every frame and report totals")
	ignoreCRC := fs.Bool("ignore-crc", false, "accept pages with a bad checksum")
	verbose := fs.Bool("v", false, "log demuxing and decoding events")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("info: missing input file\nUsage: gtheora info [options] <input.ogv>")
	}
	inputPath := fs.Arg(0)

	in, err := c.openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	r := theora.NewReader(in, &theora.Options{
		IgnoreChecksum: *ignoreCRC,
		Logger:         c.newLogger(*verbose),
	})
	defer r.Close()

	d, err := r.Decoder()
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}
	info := d.Info()
	w := c.stdout

	fmt.Fprintf(w, "File:          %s\n", displayName(inputPath))
	fmt.Fprintf(w, "Version:       %d.%d.%d\n", info.VersionMajor, info.VersionMinor, info.VersionSubminor)
	fmt.Fprintf(w, "Frame:         %d x %d\n", info.Width, info.Height)
	fmt.Fprintf(w, "Picture:       %d x %d at (%d, %d)\n", info.PicWidth, info.PicHeight, info.PicX, info.PicY)
	fmt.Fprintf(w, "Pixel format:  %s\n", info.PixelFormat)
	fmt.Fprintf(w, "Color space:   %s\n", info.ColorSpace)
	fmt.Fprintf(w, "Frame rate:    %d/%d (%.3f fps)\n", info.FPSNum, info.FPSDen,
		float64(info.FPSNum)/float64(info.FPSDen))
	if info.AspectNum != 0 && info.AspectDen != 0 {
		fmt.Fprintf(w, "Aspect ratio:  %d:%d\n", info.AspectNum, info.AspectDen)
	}
	if info.TargetBitrate > 0 {
		fmt.Fprintf(w, "Bitrate:       %d bit/s\n", info.TargetBitrate)
	}
	fmt.Fprintf(w, "Quality:       %d\n", info.Quality)
	fmt.Fprintf(w, "Granule shift: %d\n", info.KeyframeGranuleShift)

	cm := d.Comment()
	fmt.Fprintf(w, "Vendor:        %s\n", cm.Vendor)
	for _, s := range cm.Comments {
		fmt.Fprintf(w, "Comment:       %s\n", s)
	}

	if !*count {
		return nil
	}
	var frames, keys int64
	var last float64
	for {
		f, err := r.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("info: %w", err)
		}
		frames++
		if f.KeyFrame {
			keys++
		}
		last = f.Time
	}
	st := r.Stats()
	fmt.Fprintf(w, "Frames:        %d (%d key)\n", frames, keys)
	if frames > 0 {
		fmt.Fprintf(w, "Duration:      %.3f s\n", last+float64(info.FPSDen)/float64(info.FPSNum))
	}
	fmt.Fprintf(w, "Pages:         %d\n", st.Pages)
	if st.Resyncs > 0 || st.Gaps > 0 || st.Rejected > 0 {
		fmt.Fprintf(w, "Damage:        %d resyncs (%d bytes), %d gaps, %d rejected packets\n",
			st.Resyncs, st.Skipped, st.Gaps, st.Rejected)
	}
	return nil
}

// --- dec ---

func (c *cli) runDec(args []string) error {
	fs := flag.NewFlagSet("dec", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	output := fs.String("o", "", `output path; a "%d" verb numbers frames (default: <input>_%04d.<fmt>, "-" for stdout)`)
	maxFrames := fs.Int("n", 0, "maximum number of frames to write (0 = all)")
	fmtFlag := fs.String("f", "", "output format: png, jpeg, webp, bmp, tiff (auto-detect from extension if omitted)")
	quality := fs.Int("q", 90, "JPEG and WebP quality 1-100")
	lossless := fs.Bool("lossless", false, "write lossless WebP")
	ignoreCRC := fs.Bool("ignore-crc", false, "accept pages with a bad checksum")
	verbose := fs.Bool("v", false, "log demuxing and decoding events")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("dec: missing input file\nUsage: gtheora dec [options] <input.ogv>")
	}
	inputPath := fs.Arg(0)

	outFmt, err := detectOutputFormat(*fmtFlag, *output)
	if err != nil {
		return err
	}
	enc := imageEncoder{format: outFmt, quality: *quality, lossless: *lossless}

	pattern := *output
	limit := *maxFrames
	switch {
	case pattern == "-":
		limit = 1
	case pattern == "":
		base := "output"
		if inputPath != "-" {
			base = trimExt(filepath.Base(inputPath))
		}
		pattern = base + "_%04d" + extFor(outFmt)
	case !strings.Contains(pattern, "%"):
		limit = 1
	}

	in, err := c.openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	r := theora.NewReader(in, &theora.Options{
		IgnoreChecksum: *ignoreCRC,
		Logger:         c.newLogger(*verbose),
	})
	defer r.Close()

	n := 0
	for limit == 0 || n < limit {
		f, err := r.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("dec: %w", err)
		}
		img := f.YCbCr()

		if pattern == "-" {
			if err := enc.encode(c.stdout, img); err != nil {
				return fmt.Errorf("dec: %w", err)
			}
		} else {
			path := pattern
			if strings.Contains(pattern, "%") {
				path = fmt.Sprintf(pattern, n)
			}
			if err := writeImage(path, img, enc); err != nil {
				return fmt.Errorf("dec: frame %d: %w", n, err)
			}
		}
		n++
	}
	if n == 0 {
		return fmt.Errorf("dec: %w", theora.ErrNoFrames)
	}

	st := r.Stats()
	fmt.Fprintf(c.stderr, "Decoded %s → %d frames", displayName(inputPath), n)
	if st.Rejected > 0 || st.Gaps > 0 {
		fmt.Fprintf(c.stderr, " (%d rejected packets, %d gaps)", st.Rejected, st.Gaps)
	}
	fmt.Fprintln(c.stderr)
	return nil
}

func trimExt(name string) string {
	name = strings.TrimSuffix(name, ".zst")
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// detectOutputFormat returns "png", "jpeg", "webp", "bmp" or "tiff" based
// on the flag or the output extension.
func detectOutputFormat(fmtFlag, outputPath string) (string, error) {
	if fmtFlag != "" {
		switch f := strings.ToLower(fmtFlag); f {
		case "png", "webp", "bmp", "tiff":
			return f, nil
		case "jpeg", "jpg":
			return "jpeg", nil
		case "tif":
			return "tiff", nil
		}
		return "", fmt.Errorf("dec: unknown format %q (use png/jpeg/webp/bmp/tiff)", fmtFlag)
	}
	if outputPath != "" && outputPath != "-" {
		switch strings.ToLower(filepath.Ext(outputPath)) {
		case ".jpg", ".jpeg":
			return "jpeg", nil
		case ".webp":
			return "webp", nil
		case ".bmp":
			return "bmp", nil
		case ".tif", ".tiff":
			return "tiff", nil
		}
	}
	return "png", nil
}

func extFor(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "webp":
		return ".webp"
	case "bmp":
		return ".bmp"
	case "tiff":
		return ".tiff"
	}
	return ".png"
}

func writeImage(path string, img image.Image, enc imageEncoder) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := enc.encode(out, img); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// imageEncoder writes frames in one output format.
type imageEncoder struct {
	format   string
	quality  int
	lossless bool // WebP only
}

func (e imageEncoder) encode(w io.Writer, img image.Image) error {
	switch e.format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: e.quality})
	case "webp":
		if e.lossless {
			return nativewebp.Encode(w, img, nil)
		}
		return webp.Encode(w, img, webp.Options{Quality: e.quality})
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return png.Encode(w, img)
}
