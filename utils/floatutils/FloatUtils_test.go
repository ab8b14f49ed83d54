package floatutils

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	tests := []struct {
		value, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-2, 0, 1, 0},
		{3, 0, 1, 1},
		{1, 1, 1, 1},
	}

	for _, test := range tests {
		if got := Clip(test.value, test.min, test.max); got != test.want {
			t.Errorf("clip(%v, %v, %v): want(%v) have(%v)", test.value,
				test.min, test.max, test.want, got)
		}
	}
}

func TestLmap(t *testing.T) {
	from := r1.Interval{Min: 20, Max: 30}
	to := r1.Interval{Min: 0, Max: 1}

	if got := Lmap(25, from, to); got != 0.5 {
		t.Errorf("lmap: want(0.5) have(%v)", got)
	}
	if got := Lmap(40, from, to); got != 2.0 {
		t.Errorf("lmap should not clip: want(2) have(%v)", got)
	}
	if got := Lmap(5, r1.Interval{Min: 1, Max: 1}, to); got != 0 {
		t.Errorf("lmap on empty interval: want(0) have(%v)", got)
	}
}
