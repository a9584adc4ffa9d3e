package arcard

import (
	"math"
	"testing"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name string
		t    ObjectTransform
		tilt TiltVector
		want RenderTransform
	}{
		{
			name: "identity",
			t:    ObjectTransform{Scale: 1},
			want: RenderTransform{Scale: 1},
		},
		{
			name: "position and rotation pass through",
			t:    ObjectTransform{Position: Vec2{-40, 25}, Scale: 0.7, Rotation: 400},
			want: RenderTransform{TranslateX: -40, TranslateY: 25, Scale: 0.7, RotateZ: 400},
		},
		{
			name: "flipped",
			t:    ObjectTransform{Scale: 1, Flipped: true},
			want: RenderTransform{Scale: 1, RotateY: 180},
		},
		{
			name: "tilt",
			t:    ObjectTransform{Scale: 1},
			tilt: TiltVector{X: 5, Y: -3},
			want: RenderTransform{Scale: 1, RotateX: -3, RotateY: 5},
		},
		{
			name: "tilt adds to flip",
			t:    ObjectTransform{Scale: 1, Flipped: true},
			tilt: TiltVector{X: 5, Y: 2},
			want: RenderTransform{Scale: 1, RotateX: 2, RotateY: 185},
		},
		{
			name: "tilt clamped",
			t:    ObjectTransform{Scale: 1},
			tilt: TiltVector{X: 40, Y: -90},
			want: RenderTransform{Scale: 1, RotateX: -MaxTilt, RotateY: MaxTilt},
		},
		{
			name: "scale clamped",
			t:    ObjectTransform{Scale: 5},
			want: RenderTransform{Scale: MaxScale},
		},
		{
			name: "non-finite inputs",
			t:    ObjectTransform{Position: Vec2{math.NaN(), math.Inf(1)}, Scale: math.NaN(), Rotation: math.Inf(-1)},
			tilt: TiltVector{X: math.NaN(), Y: math.Inf(1)},
			want: RenderTransform{Scale: MinScale},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(tt.t, tt.tilt)
			if got != tt.want {
				t.Errorf("Compose = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComposeRotationIndependentOfFlip(t *testing.T) {
	a := Compose(ObjectTransform{Scale: 1, Rotation: 45}, TiltVector{})
	b := Compose(ObjectTransform{Scale: 1, Rotation: 45, Flipped: true}, TiltVector{})
	if a.RotateZ != b.RotateZ {
		t.Errorf("flip changed rotateZ: %v vs %v", a.RotateZ, b.RotateZ)
	}
	if b.RotateY-a.RotateY != 180 {
		t.Errorf("flip offset = %v, want 180", b.RotateY-a.RotateY)
	}
}
