package locate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"math/rand"
	"strconv"

	"gui-replay/backend/internal/imaging"
	"gui-replay/backend/internal/vision"
)

// Iteration records one refinement round of the cursor search.
type Iteration struct {
	// Center and Spread describe the search region the round started from,
	// in downsampled coordinates.
	Center Point   `json:"center"`
	Spread float64 `json:"spread"`
	// Votes holds the marker numbers the model answered, in order.
	Votes []int `json:"votes"`
	// Chosen is the winning marker position, in downsampled coordinates.
	Chosen Point `json:"chosen"`
	// OverlapRatio is the largest label overlap seen while rendering.
	OverlapRatio float64 `json:"overlap_ratio"`
}

// Result is the outcome of a cursor search.
type Result struct {
	// Point is the located target in the original image coordinates.
	Point Point `json:"point"`
	// Iterations lists every refinement round, coarsest first.
	Iterations []Iteration `json:"iterations"`
	// Annotated shows all per-round winners labelled on the downsampled
	// screenshot, for inspection.
	Annotated image.Image `json:"-"`
}

// closestAnswer is the reply schema the cursor prompt asks for.
type closestAnswer struct {
	Target          string  `json:"target"`
	TargetPosition  string  `json:"target_position"`
	CursorPositions string  `json:"cursor_positions"`
	Closest         float64 `json:"closest"`
}

// CursorSearch locates a target description on a screenshot by iteratively
// rendering numbered markers and voting over model answers.
type CursorSearch struct {
	prompter vision.Prompter
	params   CursorParams
	rng      *rand.Rand
	// OnIteration, when set, is called after each accepted round.
	OnIteration func(Iteration)
}

// NewCursorSearch returns a search using prompter with the given params.
// Zero-valued params fields fall back to the defaults.
func NewCursorSearch(prompter vision.Prompter, params CursorParams) (*CursorSearch, error) {
	def := DefaultCursorParams()
	if params.NumCursors == 0 {
		params.NumCursors = def.NumCursors
	}
	if params.SpreadReduction == 0 {
		params.SpreadReduction = def.SpreadReduction
	}
	if params.MaxOverlapRatio == 0 {
		params.MaxOverlapRatio = def.MaxOverlapRatio
	}
	if params.ConsensusThreshold == 0 {
		params.ConsensusThreshold = def.ConsensusThreshold
	}
	if params.RetriesPerIteration == 0 {
		params.RetriesPerIteration = def.RetriesPerIteration
	}
	if params.Jitter == 0 {
		params.Jitter = def.Jitter
	}
	if params.LabelSizeRatio == 0 {
		params.LabelSizeRatio = def.LabelSizeRatio
	}
	if params.DownsampleFactor == 0 {
		params.DownsampleFactor = def.DownsampleFactor
	}
	if params.ContrastFactor == 0 {
		params.ContrastFactor = def.ContrastFactor
	}
	root := int(isqrt(params.NumCursors))
	if root*root != params.NumCursors {
		return nil, fmt.Errorf("locate: NumCursors %d is not a perfect square", params.NumCursors)
	}
	if params.SpreadReduction <= 0 || params.SpreadReduction >= 1 {
		return nil, fmt.Errorf("locate: SpreadReduction %v must be in (0, 1)", params.SpreadReduction)
	}
	return &CursorSearch{
		prompter: prompter,
		params:   params,
		rng:      rand.New(rand.NewSource(42)),
	}, nil
}

// Locate searches screenshot for the target description. It refines the
// search region until marker labels overlap beyond MaxOverlapRatio, the
// iteration budget runs out, or ctx is cancelled.
func (s *CursorSearch) Locate(ctx context.Context, screenshot image.Image, target string) (*Result, error) {
	if target == "" {
		return nil, fmt.Errorf("locate: target description is required")
	}

	img := imaging.Downsample(screenshot, s.params.DownsampleFactor)
	if s.params.ContrastFactor != 1 {
		img = imaging.AdjustContrast(img, s.params.ContrastFactor)
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	inner := imaging.DistinctColor(img)

	center := Point{X: width / 2, Y: height / 2}
	spread := 1.0
	centerHistory := []Point{}
	spreadHistory := []float64{}
	exceptions := []string{}
	result := &Result{}

	for round := 1; s.params.MaxIterations == 0 || round <= s.params.MaxIterations; round++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		centerHistory = append(centerHistory, center)
		spreadHistory = append(spreadHistory, spread)

		it, err := s.runRound(ctx, img, target, center, spread, width, height, inner, &exceptions)
		if err != nil {
			if len(centerHistory) > 1 {
				// Backtrack: drop the failed region and redo the previous one.
				center = centerHistory[len(centerHistory)-2]
				spread = spreadHistory[len(spreadHistory)-2]
				centerHistory = centerHistory[:len(centerHistory)-2]
				spreadHistory = spreadHistory[:len(spreadHistory)-2]
				log.Printf("locate: round %d failed (%v), backtracking to center=%v spread=%v", round, err, center, spread)
				continue
			}
			return nil, fmt.Errorf("locate: round %d: %w", round, err)
		}

		result.Iterations = append(result.Iterations, it)
		if s.OnIteration != nil {
			s.OnIteration(it)
		}

		center = it.Chosen
		spread *= s.params.SpreadReduction

		if it.OverlapRatio > s.params.MaxOverlapRatio {
			break
		}
	}

	if len(result.Iterations) == 0 {
		return nil, fmt.Errorf("locate: no rounds completed")
	}

	final := result.Iterations[len(result.Iterations)-1].Chosen
	result.Point = Point{
		X: final.X * s.params.DownsampleFactor,
		Y: final.Y * s.params.DownsampleFactor,
	}
	result.Annotated = s.annotate(img, result.Iterations, inner)
	return result, nil
}

// runRound renders markers and collects votes until one marker reaches the
// consensus threshold. Unparseable or out-of-range answers are recorded in
// exceptions so the next prompt can warn the model; after RetriesPerIteration
// of them the round fails.
func (s *CursorSearch) runRound(ctx context.Context, img image.Image, target string, center Point, spread float64, width, height int, inner color.RGBA, exceptions *[]string) (Iteration, error) {
	it := Iteration{Center: center, Spread: spread}
	counts := make(map[int]int)
	failures := 0

	var cursors []Point
	for {
		select {
		case <-ctx.Done():
			return it, ctx.Err()
		default:
		}

		cursors = generateCursors(s.rng, center, spread, width, height, s.params.NumCursors, s.params.Jitter)
		markers := make([]imaging.Marker, len(cursors))
		labels := make([]string, len(cursors))
		for i, c := range cursors {
			markers[i] = imaging.Marker{X: c.X, Y: c.Y}
			labels[i] = strconv.Itoa(i + 1)
		}
		style := imaging.DefaultMarkerStyle(inner)
		style.LabelSizeRatio = s.params.LabelSizeRatio
		annotated, overlap, err := imaging.DrawLabeledMarkers(img, markers, labels, style)
		if err != nil {
			return it, err
		}
		if overlap > it.OverlapRatio {
			it.OverlapRatio = overlap
		}

		prompt := cursorPrompt(target, s.params.NumCursors, *exceptions)
		response, err := s.prompter.Prompt(ctx, vision.Request{
			System: systemPrompt,
			Prompt: prompt,
			Images: []image.Image{annotated},
		})
		if err != nil {
			return it, err
		}

		var answer closestAnswer
		if err := vision.ParseCodeSnippet(response, &answer); err != nil {
			*exceptions = append(*exceptions, err.Error())
			failures++
			if failures >= s.params.RetriesPerIteration {
				return it, fmt.Errorf("no parseable answer after %d attempts: %w", failures, err)
			}
			continue
		}
		closest := int(answer.Closest)
		if closest < 1 || closest > len(cursors) {
			*exceptions = append(*exceptions, fmt.Sprintf("closest %d is out of range 1..%d", closest, len(cursors)))
			failures++
			if failures >= s.params.RetriesPerIteration {
				return it, fmt.Errorf("no valid answer after %d attempts", failures)
			}
			continue
		}

		it.Votes = append(it.Votes, closest)
		counts[closest]++
		if counts[closest] >= s.params.ConsensusThreshold {
			it.Chosen = cursors[closest-1]
			return it, nil
		}
	}
}

// annotate labels each round's winner on the working image, numbered in
// search order.
func (s *CursorSearch) annotate(img image.Image, iterations []Iteration, inner color.RGBA) image.Image {
	markers := make([]imaging.Marker, len(iterations))
	labels := make([]string, len(iterations))
	for i, it := range iterations {
		markers[i] = imaging.Marker{X: it.Chosen.X, Y: it.Chosen.Y}
		labels[i] = strconv.Itoa(i + 1)
	}
	annotated, _, err := imaging.DrawLabeledMarkers(img, markers, labels, imaging.DefaultMarkerStyle(inner))
	if err != nil {
		return img
	}
	return annotated
}

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := n
	for {
		y := (x + n/x) / 2
		if y >= x {
			return x
		}
		x = y
	}
}
