package vp3

import "github.com/deepteams/theora/internal/dsp"

// predictDC replaces each coded fragment's DC residual with the full DC
// value, predicted from neighbours that are coded and use the same
// reference frame.
func (d *Decoder) predictDC() {
	for pli := range d.geom.Planes {
		p := &d.geom.Planes[pli]
		var lastDC [3]int
		for fy := 0; fy < p.FragH; fy++ {
			for fx := 0; fx < p.FragW; fx++ {
				fi := p.FragBase + FragIndex(fy*p.FragW+fx)
				f := &d.frags[fi]
				if !f.coded {
					continue
				}
				ref := f.mode.Ref()

				var dc [4]int
				mask := 0
				neighbour := func(bit int, nfi FragIndex) {
					n := &d.frags[nfi]
					if n.coded && n.mode.Ref() == ref {
						mask |= 1 << bit
						dc[bit] = int(d.coeffs[nfi][0])
					}
				}
				if fx > 0 {
					neighbour(0, fi-1)
				}
				if fy > 0 {
					below := fi - FragIndex(p.FragW)
					if fx > 0 {
						neighbour(1, below-1)
					}
					neighbour(2, below)
					if fx+1 < p.FragW {
						neighbour(3, below+1)
					}
				}

				var pred int
				if mask == 0 {
					pred = lastDC[ref]
				} else {
					w := &dcWeights[mask]
					pred = (w.w[0]*dc[0] + w.w[1]*dc[1] + w.w[2]*dc[2] + w.w[3]*dc[3]) / w.div
					if mask&7 == 7 {
						switch {
						case abs(pred-dc[2]) > 128:
							pred = dc[2]
						case abs(pred-dc[0]) > 128:
							pred = dc[0]
						case abs(pred-dc[1]) > 128:
							pred = dc[1]
						}
					}
				}
				v := int16(pred + int(d.coeffs[fi][0]))
				d.coeffs[fi][0] = v
				lastDC[ref] = int(v)
			}
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// reconstruct builds the new frame into cur: coded fragments from their
// coefficients and prediction, uncoded ones copied from the last frame.
// The loop filter and border extension follow.
func (d *Decoder) reconstruct(cur *FrameBuffer) {
	d.predictDC()
	for pli := range d.geom.Planes {
		p := &d.geom.Planes[pli]
		dst := &cur.Planes[pli]
		for fy := 0; fy < p.FragH; fy++ {
			off := dst.Offset + fy*8*dst.Stride
			for fx := 0; fx < p.FragW; fx, off = fx+1, off+8 {
				fi := p.FragBase + FragIndex(fy*p.FragW+fx)
				if !d.frags[fi].coded {
					src := &d.last.Planes[pli]
					dsp.Copy8x8(dst.Data, off, dst.Stride, src.Data, off, src.Stride)
					continue
				}
				d.reconFragment(pli, fi, dst, off)
			}
		}
	}
	d.loopFilter(cur)
	cur.extendBorders()
}

// reconFragment dequantizes, transforms and predicts one coded fragment.
func (d *Decoder) reconFragment(pli int, fi FragIndex, dst *PlaneBuffer, off int) {
	f := &d.frags[fi]
	coef := &d.coeffs[fi]
	qti := 1
	if f.mode == ModeIntra {
		qti = 0
	}
	quant := d.setup.Quant
	dcq := int(quant.Matrix(qti, pli, d.hdr.qis[0])[0])

	var res [64]int16
	if f.nz <= 1 {
		v := dsp.IDCTDC(int16(int(coef[0]) * dcq))
		for i := range res {
			res[i] = v
		}
	} else {
		acq := quant.Matrix(qti, pli, d.hdr.qis[f.qii])
		var blk [64]int16
		blk[0] = int16(int(coef[0]) * dcq)
		for zz := 1; zz < int(f.nz); zz++ {
			ci := dezigzag[zz]
			blk[ci] = int16(int(coef[zz]) * int(acq[ci]))
		}
		dsp.IDCT(&blk, &res)
	}

	if f.mode == ModeIntra {
		dsp.PutIntra(dst.Data, off, dst.Stride, &res)
		return
	}

	ref := d.last
	if f.mode.Ref() == refGolden {
		ref = d.golden
	}
	src := &ref.Planes[pli]
	fracX, fracY := 2, 2
	if pli > 0 {
		xs, ys := d.geom.Format.ChromaShift()
		fracX <<= xs
		fracY <<= ys
	}
	ax, bx := dsp.MotionOffsets(int(f.mv.X), fracX)
	ay, by := dsp.MotionOffsets(int(f.mv.Y), fracY)
	s1 := off + ay*src.Stride + ax
	s2 := off + by*src.Stride + bx
	if s1 == s2 {
		dsp.Copy8x8(dst.Data, off, dst.Stride, src.Data, s1, src.Stride)
	} else {
		dsp.Avg8x8(dst.Data, off, dst.Stride, src.Data, s1, s2, src.Stride)
	}
	dsp.AddInter(dst.Data, off, dst.Stride, &res)
}

// loopFilter smooths the edges of coded fragments: the left and bottom
// edges always, the right and top edges when that neighbour is uncoded.
// Plane edges are never filtered.
func (d *Decoder) loopFilter(cur *FrameBuffer) {
	l := int(d.setup.FilterLimits[d.hdr.qis[0]])
	if l == 0 {
		return
	}
	lim := d.limits[l]
	if lim == nil {
		lim = dsp.NewLimits(l)
		d.limits[l] = lim
	}
	for pli := range d.geom.Planes {
		p := &d.geom.Planes[pli]
		buf := &cur.Planes[pli]
		for fy := 0; fy < p.FragH; fy++ {
			off := buf.Offset + fy*8*buf.Stride
			for fx := 0; fx < p.FragW; fx, off = fx+1, off+8 {
				fi := p.FragBase + FragIndex(fy*p.FragW+fx)
				if !d.frags[fi].coded {
					continue
				}
				if fx > 0 {
					dsp.FilterVertical(buf.Data, off, buf.Stride, lim)
				}
				if fy > 0 {
					dsp.FilterHorizontal(buf.Data, off, buf.Stride, lim)
				}
				if fx+1 < p.FragW && !d.frags[fi+1].coded {
					dsp.FilterVertical(buf.Data, off+8, buf.Stride, lim)
				}
				if fy+1 < p.FragH && !d.frags[fi+FragIndex(p.FragW)].coded {
					dsp.FilterHorizontal(buf.Data, off+8*buf.Stride, buf.Stride, lim)
				}
			}
		}
	}
}
