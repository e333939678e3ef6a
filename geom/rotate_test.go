package geom

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func square() []Point {
	return []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
}

func TestCentroid(t *testing.T) {
	assert.Equal(t, Point{5, 5}, Centroid(square()))
	assert.Equal(t, Point{}, Centroid(nil))
}

func TestRotatePoint_StandardRotation(t *testing.T) {
	tests := []struct {
		name  string
		p     Point
		angle float64
		ref   Point
		want  Point
	}{
		{"zero", Point{3, 4}, 0, Point{}, Point{3, 4}},
		{"quarter turn", Point{1, 0}, 90, Point{}, Point{0, -1}},
		{"negative quarter", Point{1, 0}, -90, Point{}, Point{0, 1}},
		{"half turn about ref", Point{2, 1}, 180, Point{1, 1}, Point{-1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RotatePoint(tt.p, tt.angle, tt.ref)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Errorf("RotatePoint() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRotatePoint_MatchesFormula(t *testing.T) {
	p := Point{7, -2}
	angle := 33.0
	theta := -angle * math.Pi / 180
	want := Point{
		X: p.X*math.Cos(theta) - p.Y*math.Sin(theta),
		Y: p.X*math.Sin(theta) + p.Y*math.Cos(theta),
	}
	if diff := cmp.Diff(want, RotatePoint(p, angle, Point{}), approx); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRotatePolygon_FullTurnIsIdentity(t *testing.T) {
	sq := square()
	got := RotatePolygon(sq, 360, Centroid(sq))
	if diff := cmp.Diff(sq, got, approx); diff != "" {
		t.Errorf("360 degree rotation changed the square (-want +got):\n%s", diff)
	}
}

func TestRotatePolygon_FourQuarterTurns(t *testing.T) {
	sq := square()
	c := Centroid(sq)

	got := sq
	for i := 0; i < 4; i++ {
		got = RotatePolygon(got, 90, c)
	}
	once := RotatePolygon(sq, 360, c)
	if diff := cmp.Diff(once, got, approx); diff != "" {
		t.Errorf("4x90 != 360 (-want +got):\n%s", diff)
	}
}

func TestRotatePolygon_Translates(t *testing.T) {
	got := RotatePolygon(square(), 0, Point{100, 200})
	want := []Point{{95, 195}, {105, 195}, {105, 205}, {95, 205}}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRotatePolygon_DoesNotMutateInput(t *testing.T) {
	sq := square()
	_ = RotatePolygon(sq, 45, Point{1, 1})
	assert.Equal(t, square(), sq)
}

func TestScaledArrows(t *testing.T) {
	assert.Len(t, ArrowPoints, len(arrowOutline))
	assert.Equal(t, Point{15, 50}, ArrowPoints[3])
	assert.Equal(t, Point{30, 100}, LgArrowPoints[3])
}
