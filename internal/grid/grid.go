package grid

// Pos addresses a cell in the world grid.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Less orders positions lexicographically. The world iterates tanks in this
// order so ticks are deterministic.
func (p Pos) Less(other Pos) bool {
	if p.X != other.X {
		return p.X < other.X
	}
	if p.Y != other.Y {
		return p.Y < other.Y
	}
	return p.Z < other.Z
}

// Direction enumerates the six axis-aligned neighbor offsets.
type Direction int

const (
	Down Direction = iota
	Up
	North
	South
	West
	East
)

// NoDirection marks a side-agnostic capability lookup.
const NoDirection Direction = -1

// Directions lists every direction in the fixed enumeration order that
// greedy fluid distribution depends on. Do not reorder.
var Directions = [6]Direction{Down, Up, North, South, West, East}

// Offset returns the neighboring position one step in the direction.
func (d Direction) Offset(p Pos) Pos {
	switch d {
	case Down:
		return Pos{p.X, p.Y - 1, p.Z}
	case Up:
		return Pos{p.X, p.Y + 1, p.Z}
	case North:
		return Pos{p.X, p.Y, p.Z - 1}
	case South:
		return Pos{p.X, p.Y, p.Z + 1}
	case West:
		return Pos{p.X - 1, p.Y, p.Z}
	case East:
		return Pos{p.X + 1, p.Y, p.Z}
	}
	return p
}

// Opposite returns the facing direction, i.e. the side a neighbor is
// approached from.
func (d Direction) Opposite() Direction {
	switch d {
	case Down:
		return Up
	case Up:
		return Down
	case North:
		return South
	case South:
		return North
	case West:
		return East
	case East:
		return West
	}
	return NoDirection
}

func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Up:
		return "up"
	case North:
		return "north"
	case South:
		return "south"
	case West:
		return "west"
	case East:
		return "east"
	}
	return "none"
}
