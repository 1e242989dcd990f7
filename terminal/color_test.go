package terminal

import "testing"

// TestLerpEndpoints verifies t clamps to the endpoint colors
func TestLerpEndpoints(t *testing.T) {
	a := RGB{R: 10, G: 20, B: 30}
	b := RGB{R: 200, G: 100, B: 50}

	if got := Lerp(a, b, 0); !got.Equal(a) {
		t.Errorf("Lerp(t=0) = %v, want %v", got, a)
	}
	if got := Lerp(a, b, 1); !got.Equal(b) {
		t.Errorf("Lerp(t=1) = %v, want %v", got, b)
	}
	if got := Lerp(a, b, -0.5); !got.Equal(a) {
		t.Errorf("Lerp(t<0) = %v, want %v", got, a)
	}
	if got := Lerp(a, b, 1.5); !got.Equal(b) {
		t.Errorf("Lerp(t>1) = %v, want %v", got, b)
	}
}

// TestLerpMidpoint verifies the halfway blend
func TestLerpMidpoint(t *testing.T) {
	got := Lerp(RGB{R: 0, G: 0, B: 0}, RGB{R: 200, G: 100, B: 50}, 0.5)
	want := RGB{R: 100, G: 50, B: 25}
	if !got.Equal(want) {
		t.Errorf("Lerp(t=0.5) = %v, want %v", got, want)
	}
}

// TestScaleClamps verifies channel saturation
func TestScaleClamps(t *testing.T) {
	c := RGB{R: 200, G: 100, B: 0}

	if got := Scale(c, 2.0); got.R != 255 {
		t.Errorf("Scale overflow R = %d, want 255", got.R)
	}
	if got := Scale(c, 0); !got.Equal(RGBBlack) {
		t.Errorf("Scale(0) = %v, want black", got)
	}
	if got := Scale(c, 0.5); got.R != 100 || got.G != 50 {
		t.Errorf("Scale(0.5) = %v, want {100 50 0}", got)
	}
}
