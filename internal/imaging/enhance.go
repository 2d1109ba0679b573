// Package imaging implements the pure image operations used by the target
// locator and the screenshot pipeline: resampling, brightness/contrast
// adjustment, diffing, palette analysis, and marker/grid annotation.
package imaging

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Downsample scales img down by an integer factor using Catmull-Rom
// resampling. factor <= 1 returns a copy at the original size.
func Downsample(img image.Image, factor int) *image.RGBA {
	b := img.Bounds()
	if factor < 1 {
		factor = 1
	}
	w := b.Dx() / factor
	h := b.Dy() / factor
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// AdjustBrightness multiplies every channel by factor. factor 1.0 is the
// identity, 0.0 yields black, values above 1.0 brighten (clamped at 255).
func AdjustBrightness(img image.Image, factor float64) *image.RGBA {
	return mapPixels(img, func(c color.RGBA) color.RGBA {
		return color.RGBA{
			R: clamp8(float64(c.R) * factor),
			G: clamp8(float64(c.G) * factor),
			B: clamp8(float64(c.B) * factor),
			A: c.A,
		}
	})
}

// Dim halves the brightness of the image. Marker and grid rendering dim the
// screenshot first so the annotations stand out for the vision model.
func Dim(img image.Image) *image.RGBA {
	return AdjustBrightness(img, 0.5)
}

// AdjustContrast scales the distance of every channel from the mean
// luminance of the image. factor 1.0 is the identity; below 1.0 flattens,
// above 1.0 exaggerates.
func AdjustContrast(img image.Image, factor float64) *image.RGBA {
	if factor == 1 {
		return ToRGBA(img)
	}
	mean := meanLuminance(img)
	return mapPixels(img, func(c color.RGBA) color.RGBA {
		return color.RGBA{
			R: clamp8(mean + (float64(c.R)-mean)*factor),
			G: clamp8(mean + (float64(c.G)-mean)*factor),
			B: clamp8(mean + (float64(c.B)-mean)*factor),
			A: c.A,
		}
	})
}

// ToRGBA returns img as *image.RGBA, copying only when necessary to avoid
// aliasing the caller's pixels.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}

func mapPixels(img image.Image, f func(color.RGBA) color.RGBA) *image.RGBA {
	src := ToRGBA(img)
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := src.PixOffset(x, y)
			c := color.RGBA{src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3]}
			c = f(c)
			src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return src
}

// meanLuminance returns the mean ITU-R 601 luma over all pixels.
func meanLuminance(img image.Image) float64 {
	src := ToRGBA(img)
	b := src.Bounds()
	var sum float64
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := src.PixOffset(x, y)
			r, g, bl := float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2])
			sum += (299*r + 587*g + 114*bl) / 1000
		}
	}
	return sum / float64(n)
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
