package mapper

import "math"

// DefaultTableSize is the number of curve points sampled by a Table.
const DefaultTableSize = 256

// Table is a waveshaper curve sampled over [-1, 1]. Lookups interpolate
// linearly between points, so the mapped function is only ever evaluated at
// the sample grid. With an even size the grid never contains x = 0.
type Table struct {
	curve []float64
}

// NewTable samples fn at size evenly spaced points across [-1, 1].
func NewTable(fn func(x float64) float64, size int) *Table {
	if size < 2 {
		size = DefaultTableSize
	}
	curve := make([]float64, size)
	for i := range curve {
		x := float64(i)/float64(size-1)*2 - 1
		curve[i] = fn(x)
	}
	return &Table{curve: curve}
}

// Len returns the number of sampled points.
func (t *Table) Len() int {
	return len(t.curve)
}

// Point returns the i-th sampled value.
func (t *Table) Point(i int) float64 {
	return t.curve[i]
}

// Lookup shapes x. Inputs outside [-1, 1] clamp to the curve's ends.
func (t *Table) Lookup(x float64) float64 {
	x = clampUnit(x)
	pos := (x + 1) / 2 * float64(len(t.curve)-1)
	i := int(math.Floor(pos))
	if i >= len(t.curve)-1 {
		return t.curve[len(t.curve)-1]
	}
	frac := pos - float64(i)
	return t.curve[i] + (t.curve[i+1]-t.curve[i])*frac
}
