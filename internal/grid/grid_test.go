package grid

import "testing"

func TestDirectionOrder(t *testing.T) {
	want := [6]Direction{Down, Up, North, South, West, East}
	if Directions != want {
		t.Fatalf("direction order changed: %v", Directions)
	}
}

func TestOffsetAndOpposite(t *testing.T) {
	origin := Pos{X: 1, Y: 2, Z: 3}
	for _, dir := range Directions {
		neighbor := dir.Offset(origin)
		if neighbor == origin {
			t.Fatalf("%s offset did not move", dir)
		}
		if back := dir.Opposite().Offset(neighbor); back != origin {
			t.Fatalf("%s round trip landed at %v, want %v", dir, back, origin)
		}
	}
}

func TestPosLess(t *testing.T) {
	cases := []struct {
		a, b Pos
		want bool
	}{
		{Pos{0, 0, 0}, Pos{1, 0, 0}, true},
		{Pos{1, 0, 0}, Pos{0, 9, 9}, false},
		{Pos{0, 1, 0}, Pos{0, 2, 0}, true},
		{Pos{0, 0, 2}, Pos{0, 0, 1}, false},
		{Pos{0, 0, 0}, Pos{0, 0, 0}, false},
	}
	for _, tc := range cases {
		if got := tc.a.Less(tc.b); got != tc.want {
			t.Fatalf("Less(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
