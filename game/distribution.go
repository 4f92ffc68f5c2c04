package game

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Distribution holds one float per cell. It serves both as a probability
// distribution over actions and as a signed attribution grid.
type Distribution struct {
	Grid[float64]
}

func Zero() Distribution {
	return Distribution{}
}

// Onehot puts all mass on a single cell.
func Onehot(pos Position) Distribution {
	var d Distribution
	d.Set(pos, 1)
	return d
}

func (d Distribution) Add(other Distribution) Distribution {
	for y := range d.Cells {
		floats.Add(d.Cells[y][:], other.Cells[y][:])
	}
	return d
}

func (d Distribution) Sub(other Distribution) Distribution {
	for y := range d.Cells {
		floats.Sub(d.Cells[y][:], other.Cells[y][:])
	}
	return d
}

// Scale multiplies every cell by factor.
func (d Distribution) Scale(factor float64) Distribution {
	for y := range d.Cells {
		floats.Scale(factor, d.Cells[y][:])
	}
	return d
}

// Normalize divides by the sum. A grid summing to zero is returned unchanged.
func (d Distribution) Normalize() Distribution {
	sum := d.Sum()
	if sum == 0 {
		return d
	}
	return d.Scale(1 / sum)
}

// Values flattens the grid in row-major order.
func (d Distribution) Values() []float64 {
	values := make([]float64, 0, Cells)
	for y := range d.Cells {
		values = append(values, d.Cells[y][:]...)
	}
	return values
}

func (d Distribution) Sum() float64 {
	return floats.Sum(d.Values())
}

// Argmax returns the first cell in row-major order holding the largest value.
func (d Distribution) Argmax() Position {
	return PositionAt(floats.MaxIdx(d.Values()))
}

// EqualApprox compares cell by cell within an absolute or relative tolerance.
func (d Distribution) EqualApprox(other Distribution, tol float64) bool {
	return floats.EqualApprox(d.Values(), other.Values(), tol)
}

func (d Distribution) String() string {
	var sb strings.Builder
	for y, row := range d.Cells {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x, v := range row {
			if x > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%+.4f", v)
		}
	}
	return sb.String()
}
