package hsv

import "testing"

func TestFloatToInt16Table(t *testing.T) {
	cases := []struct {
		v    float64
		want int16
	}{
		{-1, int16Min},
		{-0.5, -16384},
		{0, 0},
		{0.5, 16384},
		{1, int16Max},
	}
	for _, c := range cases {
		if got := floatToInt16(c.v); got != c.want {
			t.Errorf("floatToInt16(%v) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestFloatToInt16Saturates(t *testing.T) {
	if got := floatToInt16(2.0); got != int16Max {
		t.Errorf("floatToInt16(2.0) = %d, want %d", got, int16Max)
	}
	if got := floatToInt16(-2.0); got != int16Min {
		t.Errorf("floatToInt16(-2.0) = %d, want %d", got, int16Min)
	}
}

func TestInt16ToFloatEndpoints(t *testing.T) {
	if got := int16ToFloat(int16Max); got != 1 {
		t.Errorf("int16ToFloat(max) = %v, want 1", got)
	}
	if got := int16ToFloat(int16Min); got != -1 {
		t.Errorf("int16ToFloat(min) = %v, want -1", got)
	}
	if got := int16ToFloat(0); got != 0 {
		t.Errorf("int16ToFloat(0) = %v, want 0", got)
	}
}

func TestInt16ToFloatPreservesSign(t *testing.T) {
	pos := int16ToFloat(100)
	neg := int16ToFloat(-100)
	if pos <= 0 {
		t.Errorf("int16ToFloat(100) = %v, want > 0", pos)
	}
	if neg >= 0 {
		t.Errorf("int16ToFloat(-100) = %v, want < 0", neg)
	}
}
