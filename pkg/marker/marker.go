// Package marker maps marker shape names to drawable markers.
//
// It has no knowledge of series, legends or the grid; renderers look up a
// marker and draw the polygon it returns.
package marker

import "math"

// Point is a vertex in canvas coordinates.
type Point struct {
	X, Y float64
}

// Marker is a series point glyph.
type Marker interface {
	// Shape returns the shape name, e.g. "circle".
	Shape() string
	// Polygon returns the outline of a marker of the given size centered on
	// (cx, cy).
	Polygon(cx, cy, size float64) []Point
}

// Shape names.
const (
	ShapeSquare   = "square"
	ShapeCircle   = "circle"
	ShapeCross    = "cross"
	ShapeDiamond  = "diamond"
	ShapePlus     = "plus"
	ShapeTriangle = "triangle"
)

type (
	Square   struct{}
	Circle   struct{}
	Cross    struct{}
	Diamond  struct{}
	Plus     struct{}
	Triangle struct{}
)

var table = map[string]Marker{
	ShapeSquare:   Square{},
	ShapeCircle:   Circle{},
	ShapeCross:    Cross{},
	ShapeDiamond:  Diamond{},
	ShapePlus:     Plus{},
	ShapeTriangle: Triangle{},
}

// Lookup resolves shape to a Marker. Strings are matched against the known
// shape names; a Marker is returned as is. Anything else, including unknown
// names and nil, yields Square.
func Lookup(shape any) Marker {
	switch v := shape.(type) {
	case string:
		if m, ok := table[v]; ok {
			return m
		}
		return Square{}
	case Marker:
		return v
	default:
		return Square{}
	}
}

// Shapes lists the known shape names in menu order.
func Shapes() []string {
	return []string{ShapeSquare, ShapeCircle, ShapeCross, ShapeDiamond, ShapePlus, ShapeTriangle}
}

func (Square) Shape() string { return ShapeSquare }

func (Square) Polygon(cx, cy, size float64) []Point {
	h := size / 2
	return []Point{{cx - h, cy - h}, {cx + h, cy - h}, {cx + h, cy + h}, {cx - h, cy + h}}
}

func (Circle) Shape() string { return ShapeCircle }

func (Circle) Polygon(cx, cy, size float64) []Point {
	const segments = 24
	r := size / 2
	pts := make([]Point, 0, segments)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		pts = append(pts, Point{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return pts
}

func (Diamond) Shape() string { return ShapeDiamond }

func (Diamond) Polygon(cx, cy, size float64) []Point {
	h := size / 2
	return []Point{{cx, cy - h}, {cx + h, cy}, {cx, cy + h}, {cx - h, cy}}
}

func (Triangle) Shape() string { return ShapeTriangle }

func (Triangle) Polygon(cx, cy, size float64) []Point {
	h := size / 2
	return []Point{{cx, cy - h}, {cx + h, cy + h}, {cx - h, cy + h}}
}

func (Plus) Shape() string { return ShapePlus }

func (Plus) Polygon(cx, cy, size float64) []Point {
	h := size / 2
	t := size / 6
	return []Point{
		{cx - t, cy - h}, {cx + t, cy - h}, {cx + t, cy - t}, {cx + h, cy - t},
		{cx + h, cy + t}, {cx + t, cy + t}, {cx + t, cy + h}, {cx - t, cy + h},
		{cx - t, cy + t}, {cx - h, cy + t}, {cx - h, cy - t}, {cx - t, cy - t},
	}
}

func (Cross) Shape() string { return ShapeCross }

// Polygon returns the plus outline rotated by 45 degrees.
func (Cross) Polygon(cx, cy, size float64) []Point {
	pts := Plus{}.Polygon(0, 0, size)
	sin, cos := math.Sincos(math.Pi / 4)
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{cx + p.X*cos - p.Y*sin, cy + p.X*sin + p.Y*cos}
	}
	return out
}
