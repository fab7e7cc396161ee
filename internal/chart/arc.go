package chart

import (
	"math"
	"strconv"
	"strings"
)

const (
	CenterX = 100.0
	CenterY = 100.0
	Radius  = 80.0
)

type Point struct {
	X, Y float64
}

// PolarToCartesian measures angles in degrees clockwise from 12 o'clock.
func PolarToCartesian(cx, cy, r, angleDeg float64) Point {
	rad := (angleDeg - 90) * math.Pi / 180.0
	return Point{
		X: cx + r*math.Cos(rad),
		Y: cy + r*math.Sin(rad),
	}
}

// Arc builds the SVG path of a pie wedge. Callers guarantee 0 <= start <= end.
// A full turn is drawn as two semicircles because a single 360 degree arc collapses to nothing.
func Arc(startAngle, endAngle float64) string {
	if endAngle-startAngle >= 360 {
		start := PolarToCartesian(CenterX, CenterY, Radius, startAngle)
		mid := PolarToCartesian(CenterX, CenterY, Radius, startAngle+180)
		return joinPath(
			"M", CenterX, CenterY,
			"L", start.X, start.Y,
			"A", Radius, Radius, 0, 0, 1, mid.X, mid.Y,
			"A", Radius, Radius, 0, 0, 1, start.X, start.Y,
			"Z",
		)
	}

	start := PolarToCartesian(CenterX, CenterY, Radius, endAngle)
	end := PolarToCartesian(CenterX, CenterY, Radius, startAngle)
	largeArc := "0"
	if endAngle-startAngle > 180 {
		largeArc = "1"
	}

	return joinPath(
		"M", CenterX, CenterY,
		"L", start.X, start.Y,
		"A", Radius, Radius, 0, largeArc, 0, end.X, end.Y,
		"Z",
	)
}

func joinPath(parts ...any) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		switch v := p.(type) {
		case string:
			out[i] = v
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			out[i] = strconv.Itoa(v)
		}
	}
	return strings.Join(out, " ")
}
