package imaging

import (
	"image"
	"image/color"
	"math"
	"math/rand"
)

const (
	colorSampleSize  = 1000
	colorClusters    = 10
	kmeansIterations = 12
	// colorLatticeStep is the quantization step of the candidate palette
	// searched for the most distinct color.
	colorLatticeStep = 8
)

// DistinctColor returns the RGB color maximally different from the colors
// present in img. It clusters a deterministic sample of pixels with k-means
// and picks the candidate on a coarse RGB lattice whose summed distance to
// the cluster centers is largest. Marker rectangles use this color so they
// remain visible on any screenshot.
func DistinctColor(img image.Image) color.RGBA {
	samples := samplePixels(img, colorSampleSize)
	if len(samples) == 0 {
		return color.RGBA{R: 255, A: 255}
	}
	centers := kmeans(samples, colorClusters)

	var best [3]float64
	bestScore := -1.0
	for r := 0; r < 256; r += colorLatticeStep {
		for g := 0; g < 256; g += colorLatticeStep {
			for b := 0; b < 256; b += colorLatticeStep {
				cand := [3]float64{float64(r), float64(g), float64(b)}
				score := 0.0
				for _, c := range centers {
					score += dist3(cand, c)
				}
				if score > bestScore {
					bestScore = score
					best = cand
				}
			}
		}
	}
	return color.RGBA{R: uint8(best[0]), G: uint8(best[1]), B: uint8(best[2]), A: 255}
}

// samplePixels draws up to n pixels with a fixed-seed shuffle so results are
// reproducible across runs.
func samplePixels(img image.Image, n int) [][3]float64 {
	src := ToRGBA(img)
	b := src.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return nil
	}
	all := make([][3]float64, 0, total)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := src.PixOffset(x, y)
			all = append(all, [3]float64{float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2])})
		}
	}
	if len(all) <= n {
		return all
	}
	rng := rand.New(rand.NewSource(42))
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:n]
}

// kmeans runs a fixed number of Lloyd iterations with deterministic
// initialization. Good enough for palette summarization; exact convergence
// is not required.
func kmeans(samples [][3]float64, k int) [][3]float64 {
	if k > len(samples) {
		k = len(samples)
	}
	rng := rand.New(rand.NewSource(42))
	centers := make([][3]float64, k)
	for i := range centers {
		centers[i] = samples[rng.Intn(len(samples))]
	}
	assign := make([]int, len(samples))
	for iter := 0; iter < kmeansIterations; iter++ {
		for i, s := range samples {
			bi, bd := 0, math.MaxFloat64
			for j, c := range centers {
				if d := dist3(s, c); d < bd {
					bi, bd = j, d
				}
			}
			assign[i] = bi
		}
		sums := make([][3]float64, k)
		counts := make([]int, k)
		for i, s := range samples {
			j := assign[i]
			sums[j][0] += s[0]
			sums[j][1] += s[1]
			sums[j][2] += s[2]
			counts[j]++
		}
		for j := range centers {
			if counts[j] == 0 {
				continue
			}
			centers[j] = [3]float64{
				sums[j][0] / float64(counts[j]),
				sums[j][1] / float64(counts[j]),
				sums[j][2] / float64(counts[j]),
			}
		}
	}
	return centers
}

func dist3(a, b [3]float64) float64 {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
