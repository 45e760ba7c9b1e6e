package synth

import (
	"github.com/deepteams/theora/internal/bitio"
	"github.com/deepteams/theora/internal/vp3"
)

// WriteSBRun writes a superblock-level run length, 1..4129.
func WriteSBRun(w *bitio.Cursor, run int) {
	switch {
	case run == 1:
		w.WriteBitsMSB(0, 1)
	case run <= 3:
		w.WriteBitsMSB(0b10, 2)
		w.WriteBitsMSB(uint32(run-2), 1)
	case run <= 5:
		w.WriteBitsMSB(0b110, 3)
		w.WriteBitsMSB(uint32(run-4), 1)
	case run <= 9:
		w.WriteBitsMSB(0b1110, 4)
		w.WriteBitsMSB(uint32(run-6), 2)
	case run <= 17:
		w.WriteBitsMSB(0b11110, 5)
		w.WriteBitsMSB(uint32(run-10), 3)
	case run <= 33:
		w.WriteBitsMSB(0b111110, 6)
		w.WriteBitsMSB(uint32(run-18), 4)
	default:
		w.WriteBitsMSB(0b111111, 6)
		w.WriteBitsMSB(uint32(run-34), 12)
	}
}

// WriteBlockRun writes a fragment-level run length, 1..30.
func WriteBlockRun(w *bitio.Cursor, run int) {
	switch {
	case run <= 2:
		w.WriteBitsMSB(0, 1)
		w.WriteBitsMSB(uint32(run-1), 1)
	case run <= 4:
		w.WriteBitsMSB(0b10, 2)
		w.WriteBitsMSB(uint32(run-3), 1)
	case run <= 6:
		w.WriteBitsMSB(0b110, 3)
		w.WriteBitsMSB(uint32(run-5), 1)
	case run <= 10:
		w.WriteBitsMSB(0b1110, 4)
		w.WriteBitsMSB(uint32(run-7), 2)
	case run <= 14:
		w.WriteBitsMSB(0b11110, 5)
		w.WriteBitsMSB(uint32(run-11), 2)
	default:
		w.WriteBitsMSB(0b11111, 5)
		w.WriteBitsMSB(uint32(run-15), 4)
	}
}

// writeSBRuns codes flags as alternating superblock-level runs. After a
// run of the maximum length the next flag is sent explicitly.
func writeSBRuns(w *bitio.Cursor, flags []int) {
	if len(flags) == 0 {
		return
	}
	w.WriteBitsMSB(uint32(flags[0]), 1)
	for i := 0; i < len(flags); {
		run := 1
		for i+run < len(flags) && flags[i+run] == flags[i] && run < vp3.MaxSBRun {
			run++
		}
		WriteSBRun(w, run)
		i += run
		if run == vp3.MaxSBRun && i < len(flags) {
			w.WriteBitsMSB(uint32(flags[i]), 1)
		}
	}
}

// writeBlockRuns codes flags as alternating fragment-level runs. Runs
// always toggle, so a run longer than 30 cannot be expressed.
func writeBlockRuns(w *bitio.Cursor, flags []int) error {
	if len(flags) == 0 {
		return nil
	}
	w.WriteBitsMSB(uint32(flags[0]), 1)
	for i := 0; i < len(flags); {
		run := 1
		for i+run < len(flags) && flags[i+run] == flags[i] {
			run++
		}
		if run > vp3.MaxBlockRun {
			return ErrRun
		}
		WriteBlockRun(w, run)
		i += run
	}
	return nil
}
