package locate

import (
	"context"
	"fmt"
	"image"
	"sort"
	"strings"

	"gui-replay/backend/internal/imaging"
	"gui-replay/backend/internal/vision"
)

// GridParams tunes the grid-overlay search.
type GridParams struct {
	// GridSize is the number of rows and columns.
	GridSize int
	// DownsampleFactor shrinks the screenshot before overlaying the grid.
	DownsampleFactor int
	// DisableCorrections stops after the first answer instead of re-asking
	// with the previous answer highlighted until it stabilizes.
	DisableCorrections bool
	// MaxRounds caps correction rounds even when answers keep changing.
	MaxRounds int
}

// DefaultGridParams returns the tuning the grid search was calibrated with.
func DefaultGridParams() GridParams {
	return GridParams{
		GridSize:         25,
		DownsampleFactor: 2,
		MaxRounds:        10,
	}
}

// GridRound records one answer of the grid search.
type GridRound struct {
	Cells []imaging.Cell `json:"cells"`
}

// GridResult is the outcome of a grid search.
type GridResult struct {
	// Cells are the covering cells of the final stable answer.
	Cells []imaging.Cell `json:"cells"`
	// Point is the centroid of the covering cells in original coordinates.
	Point Point `json:"point"`
	// Rounds lists every answer, first to last.
	Rounds []GridRound `json:"rounds"`
}

type cellsAnswer struct {
	Cells []imaging.Cell `json:"cells"`
}

// GridSearch locates a target by overlaying a labelled grid and asking the
// model for the covering cells, re-asking with the previous answer
// highlighted until the answer repeats.
type GridSearch struct {
	prompter vision.Prompter
	params   GridParams
}

// NewGridSearch returns a search using prompter with the given params.
// Zero-valued params fields fall back to the defaults.
func NewGridSearch(prompter vision.Prompter, params GridParams) (*GridSearch, error) {
	def := DefaultGridParams()
	if params.GridSize == 0 {
		params.GridSize = def.GridSize
	}
	if params.DownsampleFactor == 0 {
		params.DownsampleFactor = def.DownsampleFactor
	}
	if params.MaxRounds == 0 {
		params.MaxRounds = def.MaxRounds
	}
	if params.GridSize < 2 {
		return nil, fmt.Errorf("locate: GridSize %d is too small", params.GridSize)
	}
	return &GridSearch{prompter: prompter, params: params}, nil
}

// Locate searches screenshot for the target description. The search stops
// when an answer repeats a previous one or MaxRounds is reached; the final
// answer's cells and centroid are returned.
func (s *GridSearch) Locate(ctx context.Context, screenshot image.Image, target string) (*GridResult, error) {
	if target == "" {
		return nil, fmt.Errorf("locate: target description is required")
	}

	img := imaging.Dim(imaging.Downsample(screenshot, s.params.DownsampleFactor))
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	base, err := imaging.AddGridLabels(img, s.params.GridSize)
	if err != nil {
		return nil, fmt.Errorf("locate: grid overlay: %w", err)
	}

	result := &GridResult{}
	seen := map[string]bool{}
	var current []imaging.Cell

	for round := 0; round < s.params.MaxRounds; round++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		prompt := gridPrompt(target, s.params.GridSize, cellLabels(current))
		frame := image.Image(base)
		if len(current) > 0 {
			frame = imaging.HighlightCells(base, current, s.params.GridSize)
		}

		response, err := s.prompter.Prompt(ctx, vision.Request{
			System: systemPrompt,
			Prompt: prompt,
			Images: []image.Image{frame},
		})
		if err != nil {
			return nil, fmt.Errorf("locate: grid round %d: %w", round+1, err)
		}

		var answer cellsAnswer
		if err := vision.ParseCodeSnippet(response, &answer); err != nil {
			return nil, fmt.Errorf("locate: grid round %d: %w", round+1, err)
		}
		cells, err := s.validateCells(answer.Cells)
		if err != nil {
			return nil, fmt.Errorf("locate: grid round %d: %w", round+1, err)
		}

		result.Rounds = append(result.Rounds, GridRound{Cells: cells})
		key := cellKey(cells)
		if seen[key] {
			current = cells
			break
		}
		seen[key] = true
		current = cells

		if s.params.DisableCorrections {
			break
		}
	}

	if len(current) == 0 {
		return nil, fmt.Errorf("locate: model selected no cells")
	}

	result.Cells = current
	result.Point = s.centroid(current, width, height)
	return result, nil
}

// validateCells rejects out-of-range cells and sorts the rest so answers
// compare independently of order.
func (s *GridSearch) validateCells(cells []imaging.Cell) ([]imaging.Cell, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("answer contains no cells")
	}
	for _, c := range cells {
		if c.Row < 1 || c.Row > s.params.GridSize || c.Col < 1 || c.Col > s.params.GridSize {
			return nil, fmt.Errorf("cell (%d, %d) is outside the %dx%d grid", c.Row, c.Col, s.params.GridSize, s.params.GridSize)
		}
	}
	out := make([]imaging.Cell, len(cells))
	copy(out, cells)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out, nil
}

// centroid averages the cell centers and scales back to the original image.
func (s *GridSearch) centroid(cells []imaging.Cell, width, height int) Point {
	var sumX, sumY int
	for _, c := range cells {
		x, y := imaging.CellCenter(s.params.GridSize, c, width, height)
		sumX += x
		sumY += y
	}
	n := len(cells)
	return Point{
		X: sumX / n * s.params.DownsampleFactor,
		Y: sumY / n * s.params.DownsampleFactor,
	}
}

func cellKey(cells []imaging.Cell) string {
	return strings.Join(cellLabels(cells), ";")
}

func cellLabels(cells []imaging.Cell) []string {
	if len(cells) == 0 {
		return nil
	}
	labels := make([]string, len(cells))
	for i, c := range cells {
		labels[i] = fmt.Sprintf("(%d, %d)", c.Row, c.Col)
	}
	return labels
}
