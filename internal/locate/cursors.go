// Package locate implements visual target localization over screenshots.
// A feedback-driven search renders candidate markers on the image, asks a
// vision model which marker is closest to the target, aggregates the noisy
// answers by voting, and shrinks the search region around the winner until
// the markers would overlap or an iteration budget runs out. A grid-overlay
// variant asks for covering cells instead of markers.
package locate

import (
	"math"
	"math/rand"
)

// Point is a pixel position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CursorParams tunes the marker-voting search.
type CursorParams struct {
	// NumCursors is the number of candidate markers per round; must be a
	// perfect square so they form a lattice.
	NumCursors int
	// SpreadReduction scales the search region after each accepted round.
	SpreadReduction float64
	// MaxIterations caps the number of refinement rounds; 0 means refine
	// until the overlap condition stops the search.
	MaxIterations int
	// MaxOverlapRatio stops the search once marker rectangles overlap more
	// than this fraction; past that point answers no longer discriminate.
	MaxOverlapRatio float64
	// ConsensusThreshold is the vote count a marker needs to win a round.
	ConsensusThreshold int
	// RetriesPerIteration bounds unparseable model replies per round before
	// the search backtracks to the previous region.
	RetriesPerIteration int
	// Jitter randomizes marker positions by this fraction of a lattice cell.
	Jitter float64
	// LabelSizeRatio sets marker label size relative to the image.
	LabelSizeRatio float64
	// DownsampleFactor shrinks the screenshot before prompting; results are
	// scaled back to the original coordinates.
	DownsampleFactor int
	// ContrastFactor is applied after downsampling; 1.0 leaves the image as is.
	ContrastFactor float64
}

// DefaultCursorParams returns the tuning the search was calibrated with.
func DefaultCursorParams() CursorParams {
	return CursorParams{
		NumCursors:          4,
		SpreadReduction:     0.5,
		MaxIterations:       0,
		MaxOverlapRatio:     0.2,
		ConsensusThreshold:  2,
		RetriesPerIteration: 3,
		Jitter:              0.01,
		LabelSizeRatio:      0.04,
		DownsampleFactor:    3,
		ContrastFactor:      1,
	}
}

// generateCursors lays out a sqrt(n) x sqrt(n) lattice of candidate points
// centered on center. spread scales the lattice relative to the image size;
// jitter displaces each point by a fraction of its cell. Points are clamped
// to the image bounds.
func generateCursors(rng *rand.Rand, center Point, spread float64, width, height, numCursors int, jitter float64) []Point {
	gridSize := int(math.Sqrt(float64(numCursors)))
	if gridSize < 1 {
		gridSize = 1
	}
	cellW := float64(width) * spread / float64(gridSize)
	cellH := float64(height) * spread / float64(gridSize)

	startX := float64(center.X) - cellW*float64(gridSize-1)/2
	startY := float64(center.Y) - cellH*float64(gridSize-1)/2

	cursors := make([]Point, 0, gridSize*gridSize)
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := int(startX + float64(i)*cellW)
			y := int(startY + float64(j)*cellH)
			x += int((rng.Float64() - 0.5) * cellW * jitter)
			y += int((rng.Float64() - 0.5) * cellH * jitter)
			cursors = append(cursors, Point{
				X: clampInt(x, 0, width-1),
				Y: clampInt(y, 0, height-1),
			})
		}
	}
	return cursors
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
