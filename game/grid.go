package game

// Position is a board coordinate. X is the column and Y the row.
type Position struct {
	X, Y int
}

func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < Size && p.Y >= 0 && p.Y < Size
}

// Index is the row-major index of the position.
func (p Position) Index() int {
	return p.Y*Size + p.X
}

func PositionAt(index int) Position {
	return Position{X: index % Size, Y: index / Size}
}

// Positions lists every cell in row-major order.
func Positions() []Position {
	positions := make([]Position, 0, Cells)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			positions = append(positions, Position{X: x, Y: y})
		}
	}
	return positions
}

// Grid is a fixed square array of values indexed by Position.
// Grids are plain values: assignment copies all cells.
type Grid[T any] struct {
	Cells [Size][Size]T
}

func GridFromFunc[T any](f func(Position) T) Grid[T] {
	var g Grid[T]
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			g.Cells[y][x] = f(Position{X: x, Y: y})
		}
	}
	return g
}

// Get returns false when the position lies outside of the grid.
func (g Grid[T]) Get(pos Position) (T, bool) {
	if !pos.InBounds() {
		var zero T
		return zero, false
	}
	return g.Cells[pos.Y][pos.X], true
}

// At is Get without the bounds report; out of range positions yield the zero value.
func (g Grid[T]) At(pos Position) T {
	v, _ := g.Get(pos)
	return v
}

// Set ignores positions outside of the grid.
func (g *Grid[T]) Set(pos Position, value T) {
	if !pos.InBounds() {
		return
	}
	g.Cells[pos.Y][pos.X] = value
}

func Map[T, U any](g Grid[T], f func(Position, T) U) Grid[U] {
	return GridFromFunc(func(pos Position) U {
		return f(pos, g.Cells[pos.Y][pos.X])
	})
}
