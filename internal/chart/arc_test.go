package chart

import (
	"math"
	"strconv"
	"strings"
	"testing"
)

const tolerance = 1e-9

// arcEndpoints parses "M cx cy L x1 y1 A r r 0 f 0 x2 y2 Z".
func arcEndpoints(t *testing.T, path string) (Point, Point, string) {
	t.Helper()
	fields := strings.Fields(path)
	if len(fields) != 15 {
		t.Fatalf("expected single arc path, got %q", path)
	}
	num := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			t.Fatalf("bad number %q in %q", s, path)
		}
		return v
	}
	return Point{num(fields[4]), num(fields[5])}, Point{num(fields[12]), num(fields[13])}, fields[10]
}

func near(a, b Point) bool {
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance
}

func TestPolarToCartesianZeroPointsUp(t *testing.T) {
	p := PolarToCartesian(CenterX, CenterY, Radius, 0)
	if !near(p, Point{100, 20}) {
		t.Fatalf("expected 0 degrees at (100,20), got %+v", p)
	}
	p = PolarToCartesian(CenterX, CenterY, Radius, 90)
	if !near(p, Point{180, 100}) {
		t.Fatalf("expected 90 degrees at (180,100), got %+v", p)
	}
}

func TestArcFullCircleUsesTwoSemicircles(t *testing.T) {
	path := Arc(0, 360)
	if n := strings.Count(path, "A"); n != 2 {
		t.Fatalf("expected two arc commands, got %d in %q", n, path)
	}
	if !strings.HasPrefix(path, "M 100 100 L 100 20 A 80 80 0 0 1 ") {
		t.Fatalf("unexpected full circle path %q", path)
	}
}

func TestArcLargeArcFlag(t *testing.T) {
	if _, _, flag := arcEndpoints(t, Arc(0, 180)); flag != "0" {
		t.Fatalf("expected large arc flag 0 for 180 degrees, got %s", flag)
	}
	if _, _, flag := arcEndpoints(t, Arc(10, 190.5)); flag != "1" {
		t.Fatalf("expected large arc flag 1 above 180 degrees, got %s", flag)
	}
	if _, _, flag := arcEndpoints(t, Arc(0, 90)); flag != "0" {
		t.Fatalf("expected large arc flag 0 for 90 degrees, got %s", flag)
	}
}

func TestArcAdjacentSlicesShareEndpoints(t *testing.T) {
	// path runs from the end-angle point back to the start-angle point
	firstFrom, firstTo, _ := arcEndpoints(t, Arc(0, 90))
	secondFrom, secondTo, _ := arcEndpoints(t, Arc(90, 270))
	lastFrom, lastTo, _ := arcEndpoints(t, Arc(270, 360))

	if !near(firstFrom, secondTo) {
		t.Fatalf("expected 90 degree boundary to match: %+v vs %+v", firstFrom, secondTo)
	}
	if !near(secondFrom, lastTo) {
		t.Fatalf("expected 270 degree boundary to match: %+v vs %+v", secondFrom, lastTo)
	}
	if !near(lastFrom, firstTo) {
		t.Fatalf("expected 0/360 boundary to match: %+v vs %+v", lastFrom, firstTo)
	}
	if near(firstFrom, firstTo) {
		t.Fatalf("expected non-degenerate arc")
	}
}
