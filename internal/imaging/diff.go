package imaging

import (
	"image"
	"image/color"
)

// diffThreshold is the per-channel delta below which two pixels are treated
// as identical; small enough to absorb encoder noise only.
const diffThreshold = 0

// Diff returns the per-channel absolute difference between two images of
// the same size. Differing sizes yield a diff over the intersection.
func Diff(a, b image.Image) *image.RGBA {
	ra, rb := ToRGBA(a), ToRGBA(b)
	bounds := ra.Bounds().Intersect(rb.Bounds())
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ia, ib := ra.PixOffset(x, y), rb.PixOffset(x, y)
			id := dst.PixOffset(x, y)
			dst.Pix[id] = absDelta(ra.Pix[ia], rb.Pix[ib])
			dst.Pix[id+1] = absDelta(ra.Pix[ia+1], rb.Pix[ib+1])
			dst.Pix[id+2] = absDelta(ra.Pix[ia+2], rb.Pix[ib+2])
			dst.Pix[id+3] = 255
		}
	}
	return dst
}

// DiffMask returns a binary mask that is white wherever the two images
// differ in any channel.
func DiffMask(a, b image.Image) *image.Gray {
	ra, rb := ToRGBA(a), ToRGBA(b)
	bounds := ra.Bounds().Intersect(rb.Bounds())
	dst := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ia, ib := ra.PixOffset(x, y), rb.PixOffset(x, y)
			if absDelta(ra.Pix[ia], rb.Pix[ib]) > diffThreshold ||
				absDelta(ra.Pix[ia+1], rb.Pix[ib+1]) > diffThreshold ||
				absDelta(ra.Pix[ia+2], rb.Pix[ib+2]) > diffThreshold {
				dst.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return dst
}

func absDelta(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
