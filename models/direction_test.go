package models

import "testing"

func TestParseDirection(t *testing.T) {
	cases := []struct {
		in   string
		want Direction
		ok   bool
	}{
		{"NORTH", North, true},
		{"north", North, true},
		{"East", East, true},
		{"SOUTH", South, true},
		{"west", West, true},
		{"up", North, false},
		{"", North, false},
	}
	for _, c := range cases {
		got, ok := ParseDirection(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseDirection(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestRotations(t *testing.T) {
	if got := North.Clockwise(); got != East {
		t.Errorf("North.Clockwise() = %v", got)
	}
	if got := West.Clockwise(); got != North {
		t.Errorf("West.Clockwise() = %v", got)
	}
	if got := North.CounterClockwise(); got != West {
		t.Errorf("North.CounterClockwise() = %v", got)
	}
	for _, d := range Directions {
		if got := d.Opposite().Opposite(); got != d {
			t.Errorf("%v.Opposite().Opposite() = %v", d, got)
		}
		if got := d.Clockwise().CounterClockwise(); got != d {
			t.Errorf("%v rotate round trip = %v", d, got)
		}
	}
}

func TestRelativeTo(t *testing.T) {
	// Viewed facing east, "ahead" (north in body frame) is east in the
	// world frame.
	if got := North.RelativeTo(East); got != East {
		t.Errorf("North.RelativeTo(East) = %v", got)
	}
	for _, d := range Directions {
		for _, viewing := range Directions {
			if got := d.RelativeTo(viewing).CounterRelativeTo(viewing); got != d {
				t.Errorf("%v relative round trip via %v = %v", d, viewing, got)
			}
		}
	}
}

func TestOffsetsSumToZero(t *testing.T) {
	sx, sy := 0, 0
	for _, d := range Directions {
		dx, dy := d.Offset()
		if dx == 0 && dy == 0 {
			t.Errorf("%v has zero offset", d)
		}
		sx += dx
		sy += dy
	}
	if sx != 0 || sy != 0 {
		t.Errorf("offsets sum to (%d,%d)", sx, sy)
	}
	if dx, dy := North.Offset(); dx != 0 || dy != -1 {
		t.Errorf("North.Offset() = (%d,%d)", dx, dy)
	}
}
