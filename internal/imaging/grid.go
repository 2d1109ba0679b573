package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
)

// GridMargin is the width of the label band added to each side of a
// grid-annotated image. Cell geometry helpers assume this offset.
const GridMargin = 50

// gridLineWidth is the thickness of the translucent grid lines.
const gridLineWidth = 3

// Cell addresses a grid cell; rows and columns are 1-based.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// AddGridLabels returns a copy of img with a red label band on all four
// sides, cell indices 1..gridSize drawn in the bands, and translucent grid
// lines over the content. Fails when no font size lets every label fit
// inside a grid cell.
func AddGridLabels(img image.Image, gridSize int) (*image.RGBA, error) {
	src := ToRGBA(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	dst := image.NewRGBA(image.Rect(0, 0, w+2*GridMargin, h+2*GridMargin))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{255, 0, 0, 255}), image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(GridMargin, GridMargin, GridMargin+w, GridMargin+h), src, src.Bounds().Min, draw.Src)

	face, _, err := fitGridFace(gridSize, w, h)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	cellW := float64(w) / float64(gridSize)
	cellH := float64(h) / float64(gridSize)
	labelCol := color.RGBA{255, 255, 255, 255}
	for i := 0; i < gridSize; i++ {
		label := strconv.Itoa(i + 1)
		cy := GridMargin + int(float64(i)*cellH+cellH/2)
		cx := GridMargin + int(float64(i)*cellW+cellW/2)
		drawTextCentered(dst, face, label, GridMargin/2, cy, labelCol)         // left band
		drawTextCentered(dst, face, label, GridMargin+w+GridMargin/2, cy, labelCol) // right band
		drawTextCentered(dst, face, label, cx, GridMargin/2, labelCol)         // top band
		drawTextCentered(dst, face, label, cx, GridMargin+h+GridMargin/2, labelCol) // bottom band
	}

	line := color.RGBA{255, 255, 255, 128}
	for i := 0; i <= gridSize; i++ {
		y := GridMargin + int(float64(i)*cellH)
		x := GridMargin + int(float64(i)*cellW)
		draw.Draw(dst, image.Rect(GridMargin, y, GridMargin+w, y+gridLineWidth), image.NewUniform(line), image.Point{}, draw.Over)
		draw.Draw(dst, image.Rect(x, GridMargin, x+gridLineWidth, GridMargin+h), image.NewUniform(line), image.Point{}, draw.Over)
	}
	return dst, nil
}

// fitGridFace finds the largest font size whose digits fit inside one grid
// cell, starting from half the cell dimension and shrinking.
func fitGridFace(gridSize, w, h int) (face font.Face, sizePx float64, err error) {
	maxW := w / gridSize
	maxH := h / gridSize
	size := maxH / 2
	if maxW/2 < size {
		size = maxW / 2
	}
	for ; size > 0; size-- {
		f, ferr := newFace(float64(size))
		if ferr != nil {
			return nil, 0, ferr
		}
		fits := true
		for i := 1; i <= gridSize; i++ {
			tw, th := textSize(f, strconv.Itoa(i))
			if tw > maxW || th > maxH {
				fits = false
				break
			}
		}
		if fits {
			return f, float64(size), nil
		}
		f.Close()
	}
	return nil, 0, errors.New("no font size fits within the grid cells")
}

// HighlightCells brightens the given cells of a grid-annotated image and
// tints them red, so a correction round can show the model its previous
// answer in place.
func HighlightCells(annotated image.Image, cells []Cell, gridSize int) *image.RGBA {
	dst := ToRGBA(annotated)
	b := dst.Bounds()
	cellW := float64(b.Dx()-2*GridMargin) / float64(gridSize)
	cellH := float64(b.Dy()-2*GridMargin) / float64(gridSize)

	for _, c := range cells {
		x1 := GridMargin + int(float64(c.Col-1)*cellW)
		y1 := GridMargin + int(float64(c.Row-1)*cellH)
		box := image.Rect(x1, y1, x1+int(cellW), y1+int(cellH)).Intersect(b)
		if box.Empty() {
			continue
		}
		brightenRect(dst, box, 2.0)
		draw.Draw(dst, box, image.NewUniform(color.RGBA{255, 0, 0, 128}), image.Point{}, draw.Over)
	}
	return dst
}

// CellCenter maps a 1-based grid cell to the pixel center within the
// unannotated image of the given size.
func CellCenter(gridSize int, c Cell, width, height int) (int, int) {
	cellW := float64(width) / float64(gridSize)
	cellH := float64(height) / float64(gridSize)
	x := int((float64(c.Col) - 0.5) * cellW)
	y := int((float64(c.Row) - 0.5) * cellH)
	return x, y
}

func brightenRect(dst *image.RGBA, r image.Rectangle, factor float64) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := dst.PixOffset(x, y)
			dst.Pix[i] = clamp8(float64(dst.Pix[i]) * factor)
			dst.Pix[i+1] = clamp8(float64(dst.Pix[i+1]) * factor)
			dst.Pix[i+2] = clamp8(float64(dst.Pix[i+2]) * factor)
		}
	}
}
