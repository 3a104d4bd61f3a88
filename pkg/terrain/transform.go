package terrain

import (
	"math"
	"math/rand/v2"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// epsilon is the smallest height range Terrace will quantize.
const epsilon = 1e-9

// NoiseParams configures HeightNoise.
type NoiseParams struct {
	Seed        int64
	Scale       float64
	Strength    float64
	Octaves     int
	Persistence float64
	Lacunarity  float64
}

// HeightNoise adds fractal simplex noise to every cell. Sample positions
// are in world units so the pattern does not depend on resolution.
func HeightNoise(d *Data, p NoiseParams) *Data {
	if p.Scale <= 0 || p.Octaves < 1 {
		return d
	}
	noise := opensimplex.New(p.Seed)
	n := d.Size()
	step := 1.0
	if d.Resolution > 0 {
		step = 1 / float64(d.Resolution)
	}
	for row := range n {
		for col := range n {
			x := (float64(col)*step - 0.5) * d.Width / p.Scale
			y := (float64(row)*step - 0.5) * d.Length / p.Scale
			amp, freq, sum := 1.0, 1.0, 0.0
			for range p.Octaves {
				sum += noise.Eval2(x*freq, y*freq) * amp
				amp *= p.Persistence
				freq *= p.Lacunarity
			}
			d.Heights[row*n+col] += sum * p.Strength
		}
	}
	return d
}

// Terrace quantizes heights into levels equal bands over the observed
// range, then blends back toward the original by smoothing in [0,1].
func Terrace(d *Data, levels int, smoothing float64) *Data {
	lo, hi := d.Range()
	if hi-lo < epsilon || levels < 1 {
		return d
	}
	smoothing = math.Max(0, math.Min(1, smoothing))
	span := hi - lo
	for i, h := range d.Heights {
		q := lo + math.Round((h-lo)/span*float64(levels))/float64(levels)*span
		d.Heights[i] = q + (h-q)*smoothing
	}
	return d
}

// ErosionParams configures HydraulicErosion.
type ErosionParams struct {
	Iterations int
	Strength   float64 // 0 leaves the data untouched, 1 applies fully
	Seed       uint64
}

// HydraulicErosion is a cheap stand-in for fluid erosion: it repeatedly
// replaces a random cell with the 3x3 average taken from a snapshot of
// the heights before the pass.
func HydraulicErosion(d *Data, p ErosionParams) *Data {
	if p.Iterations <= 0 || len(d.Heights) == 0 || p.Strength <= 0 {
		return d
	}
	strength := math.Min(1, p.Strength)
	before := d.Clone()
	n := d.Size()
	rng := rand.New(rand.NewPCG(p.Seed, uint64(n)))
	for range p.Iterations {
		row, col := rng.IntN(n), rng.IntN(n)
		avg := before.boxAverage(row, col)
		i := row*n + col
		d.Heights[i] = before.Heights[i] + (avg-before.Heights[i])*strength
	}
	return d
}

func (d *Data) boxAverage(row, col int) float64 {
	n := d.Size()
	sum, count := 0.0, 0
	for r := max(row-1, 0); r <= min(row+1, n-1); r++ {
		for c := max(col-1, 0); c <= min(col+1, n-1); c++ {
			sum += d.At(r, c)
			count++
		}
	}
	return sum / float64(count)
}
