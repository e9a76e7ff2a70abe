package core

import (
	"sort"
)

// Distribution1D is a piecewise-constant 1D probability distribution over
// [0,1), built once from a set of non-negative bucket weights. Sampling
// transforms uniform variates into bucket-proportional variates.
type Distribution1D struct {
	Func     []float64 // bucket weights, as given
	CDF      []float64 // len(Func)+1 entries, CDF[0]=0, CDF[n]=1
	Integral float64   // average of Func over the domain
}

// NewDistribution1D builds the distribution from bucket weights. A
// zero-integral function falls back to a uniform distribution so sampling
// stays well defined.
func NewDistribution1D(f []float64) *Distribution1D {
	n := len(f)
	d := &Distribution1D{
		Func: append([]float64(nil), f...),
		CDF:  make([]float64, n+1),
	}

	for i := 1; i < n+1; i++ {
		d.CDF[i] = d.CDF[i-1] + d.Func[i-1]/float64(n)
	}

	d.Integral = d.CDF[n]
	if d.Integral == 0 {
		for i := 1; i < n+1; i++ {
			d.CDF[i] = float64(i) / float64(n)
		}
	} else {
		for i := 1; i < n+1; i++ {
			d.CDF[i] /= d.Integral
		}
	}
	return d
}

// Count returns the number of buckets
func (d *Distribution1D) Count() int {
	return len(d.Func)
}

// SampleContinuous transforms a uniform sample into a value in [0,1)
// distributed proportionally to Func. Returns the value, its pdf and the
// bucket it fell into.
func (d *Distribution1D) SampleContinuous(u float64) (x float64, pdf float64, bucket int) {
	bucket = d.findInterval(u)

	du := u - d.CDF[bucket]
	if width := d.CDF[bucket+1] - d.CDF[bucket]; width > 0 {
		du /= width
	}

	if d.Integral > 0 {
		pdf = d.Func[bucket] / d.Integral
	} else {
		pdf = 1 // uniform fallback
	}

	x = (float64(bucket) + du) / float64(d.Count())
	return x, pdf, bucket
}

// SampleDiscrete transforms a uniform sample into a bucket index with
// probability proportional to that bucket's weight. The second return value
// remaps u to a fresh uniform variate within the chosen bucket.
func (d *Distribution1D) SampleDiscrete(u float64) (bucket int, remapped float64) {
	bucket = d.findInterval(u)
	remapped = u - d.CDF[bucket]
	if width := d.CDF[bucket+1] - d.CDF[bucket]; width > 0 {
		remapped /= width
	}
	return bucket, remapped
}

// DiscretePDF returns the probability of SampleDiscrete choosing bucket i
func (d *Distribution1D) DiscretePDF(i int) float64 {
	if d.Integral == 0 {
		return 1.0 / float64(d.Count())
	}
	return d.Func[i] / (d.Integral * float64(d.Count()))
}

// findInterval locates the rightmost CDF entry <= u, clamped to a valid
// bucket index. Rightmost matters: runs of zero-weight buckets produce
// repeated CDF values and sampling must land past them.
func (d *Distribution1D) findInterval(u float64) int {
	i := sort.Search(len(d.CDF), func(j int) bool { return d.CDF[j] > u }) - 1
	return max(0, min(i, d.Count()-1))
}

// Distribution2D is a piecewise-constant distribution over the unit square,
// sampled by first choosing a row from the marginal distribution and then a
// column from that row's conditional distribution.
type Distribution2D struct {
	conditional []*Distribution1D // one per row
	marginal    *Distribution1D   // over row integrals
}

// NewDistribution2D builds the distribution from a row-major grid of
// non-negative weights. All rows must have equal length.
func NewDistribution2D(f [][]float64) *Distribution2D {
	d := &Distribution2D{
		conditional: make([]*Distribution1D, len(f)),
	}
	marginalFunc := make([]float64, len(f))
	for i, row := range f {
		d.conditional[i] = NewDistribution1D(row)
		marginalFunc[i] = d.conditional[i].Integral
	}
	d.marginal = NewDistribution1D(marginalFunc)
	return d
}

// SampleContinuous transforms a uniform 2D sample into a point in the unit
// square distributed proportionally to the weight grid, returning the point
// and its joint pdf.
func (d *Distribution2D) SampleContinuous(u Vec2) (Vec2, float64) {
	y, pdfY, row := d.marginal.SampleContinuous(u.Y)
	x, pdfX, _ := d.conditional[row].SampleContinuous(u.X)
	return NewVec2(x, y), pdfX * pdfY
}

// PDF returns the joint pdf at a point in the unit square
func (d *Distribution2D) PDF(p Vec2) float64 {
	row := min(int(p.Y*float64(len(d.conditional))), len(d.conditional)-1)
	row = max(row, 0)
	cond := d.conditional[row]
	col := min(int(p.X*float64(cond.Count())), cond.Count()-1)
	col = max(col, 0)
	if d.marginal.Integral == 0 {
		return 1
	}
	return cond.Func[col] / d.marginal.Integral
}
