package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	if got := m.Mul(Identity()); got != m {
		t.Errorf("M * I = %v, want %v", got, m)
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate column: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   Vec2
		want Vec2
	}{
		{"translate", Translate(10, 20, 0), Vec2{1, 2}, Vec2{11, 22}},
		{"scale", Scale(2, 3, 1), Vec2{1, 2}, Vec2{2, 6}},
		{"rotate 90", RotateZ(math.Pi / 2), Vec2{1, 0}, Vec2{0, 1}},
		{"translate after scale", Translate(1, 0, 0).Mul(Scale(2, 2, 1)), Vec2{1, 1}, Vec2{3, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if !got.ApproxEqual(tt.want, 1e-5) {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInverse(t *testing.T) {
	m := Translate(3, -2, 0).Mul(RotateZ(0.7)).Mul(Scale(2, 2, 1))
	got := m.Mul(m.Inverse())
	if !got.ApproxEqual(Identity(), 1e-5) {
		t.Errorf("M * M^-1 = %v, want identity", got)
	}
}

func TestInverseSingular(t *testing.T) {
	if got := Scale(0, 1, 1).Inverse(); got != Identity() {
		t.Errorf("singular Inverse() = %v, want identity", got)
	}
	if _, ok := Scale(0, 0, 1).TryInverse(); ok {
		t.Error("TryInverse reported a zero scale as invertible")
	}
	if _, ok := RotateZ(0.3).TryInverse(); !ok {
		t.Error("TryInverse reported a rotation as singular")
	}
}

func TestOrtho(t *testing.T) {
	m := Ortho(0, 2, 0, 2, -1, 1)
	got := m.TransformPoint(Vec2{2, 2})
	if !got.ApproxEqual(Vec2{1, 1}, 1e-6) {
		t.Errorf("Ortho corner = %v, want {1 1}", got)
	}
}
