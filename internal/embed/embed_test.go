package embed

import (
	"math"
	"testing"
)

// #region cosine-tests
func TestCosine_Identical(t *testing.T) {
	a := []float32{1.0, 2.0, 3.0}
	b := []float32{1.0, 2.0, 3.0}

	if got := Cosine(a, b); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("Cosine(identical) = %v, want 1.0", got)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	a := []float32{1.0, 0.0}
	b := []float32{0.0, 1.0}

	if got := Cosine(a, b); math.Abs(got) > 1e-6 {
		t.Errorf("Cosine(orthogonal) = %v, want 0.0", got)
	}
}

func TestCosine_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
	}{
		{"zero vector", []float32{0, 0, 0}, []float32{1, 2, 3}},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}},
		{"both empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); got != 0 {
				t.Errorf("Cosine = %v, want 0", got)
			}
		})
	}
}

// #endregion cosine-tests

// #region normalize-tests
func TestNormalize_UnitNorm(t *testing.T) {
	v := []float32{3.0, 4.0}
	Normalize(v)

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-6 {
		t.Errorf("norm after Normalize = %v, want 1.0", math.Sqrt(norm))
	}
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("Normalize([3,4]) = %v, want [0.6, 0.8]", v)
	}
}

func TestNormalize_ZeroVectorUntouched(t *testing.T) {
	v := []float32{0, 0, 0}
	Normalize(v)
	for i, x := range v {
		if x != 0 {
			t.Errorf("v[%d] = %v, want 0", i, x)
		}
	}
}

// #endregion normalize-tests

// #region dot-tests
func TestDot_NormalizedEqualsCosine(t *testing.T) {
	a := []float32{1.0, 2.0, 2.0}
	b := []float32{2.0, 1.0, 2.0}
	want := Cosine(a, b)

	Normalize(a)
	Normalize(b)
	if got := Dot(a, b); math.Abs(got-want) > 1e-6 {
		t.Errorf("Dot(normalized) = %v, want cosine %v", got, want)
	}
}

func TestDot_LengthMismatch(t *testing.T) {
	if got := Dot([]float32{1}, []float32{1, 2}); got != 0 {
		t.Errorf("Dot(mismatch) = %v, want 0", got)
	}
}

// #endregion dot-tests
