package game

// Symmetry maps a cell to its image under one of the board's rotations or reflections.
type Symmetry func(Position) Position

// Symmetries returns the eight elements of the square's dihedral group,
// starting with the identity.
func Symmetries() []Symmetry {
	last := Size - 1
	rotate := func(p Position) Position { return Position{X: last - p.Y, Y: p.X} }
	reflect := func(p Position) Position { return Position{X: last - p.X, Y: p.Y} }

	symmetries := make([]Symmetry, 0, 8)
	current := func(p Position) Position { return p }
	for i := 0; i < 4; i++ {
		r := current
		symmetries = append(symmetries, r)
		symmetries = append(symmetries, func(p Position) Position { return reflect(r(p)) })
		current = func(p Position) Position { return rotate(r(p)) }
	}
	return symmetries
}

// Transform applies the symmetry to every cell of the board.
func (b Board) Transform(s Symmetry) Board {
	var out Board
	for _, pos := range Positions() {
		out.Set(s(pos), b.At(pos))
	}
	return out
}

func (d Distribution) Transform(s Symmetry) Distribution {
	var out Distribution
	for _, pos := range Positions() {
		out.Set(s(pos), d.At(pos))
	}
	return out
}
