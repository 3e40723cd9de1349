package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/gridchart/pkg/chart"
	"github.com/vanderheijden86/gridchart/pkg/marker"
	"github.com/vanderheijden86/gridchart/pkg/model"
	"github.com/vanderheijden86/gridchart/pkg/theme"
)

// --- scene model -----------------------------------------------------------

type shapeKind int

const (
	shapeRect shapeKind = iota
	shapePolygon
	shapePolyline
	shapeText
)

// shape is one drawing primitive. Both the PNG and SVG backends draw the
// same scene so exported images match regardless of format.
type shape struct {
	kind   shapeKind
	x, y   float64
	w, h   float64
	points []marker.Point
	fill   string // empty means no fill
	stroke string // empty means no stroke
	width  float64
	text   string
	anchor float64 // 0 left, 0.5 center, 1 right
	size   float64 // font size (SVG only; PNG uses a fixed bitmap face)
}

// Scene is a backend-neutral rendering of a chart.
type Scene struct {
	Width      int
	Height     int
	Background string
	Foreground string
	shapes     []shape
}

// ShapeCount returns the number of primitives in the scene.
func (s *Scene) ShapeCount() int { return len(s.shapes) }

// Texts returns every text label in drawing order.
func (s *Scene) Texts() []string {
	var out []string
	for _, sh := range s.shapes {
		if sh.kind == shapeText {
			out = append(out, sh.text)
		}
	}
	return out
}

func (s *Scene) rect(x, y, w, h float64, fill, stroke string) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	s.shapes = append(s.shapes, shape{kind: shapeRect, x: x, y: y, w: w, h: h, fill: fill, stroke: stroke, width: 1})
}

func (s *Scene) polygon(pts []marker.Point, fill, stroke string) {
	s.shapes = append(s.shapes, shape{kind: shapePolygon, points: pts, fill: fill, stroke: stroke, width: 1})
}

func (s *Scene) polyline(pts []marker.Point, stroke string, width float64) {
	s.shapes = append(s.shapes, shape{kind: shapePolyline, points: pts, stroke: stroke, width: width})
}

func (s *Scene) text(x, y float64, text string, anchor, size float64) {
	s.shapes = append(s.shapes, shape{kind: shapeText, x: x, y: y, text: text, anchor: anchor, size: size, fill: s.Foreground})
}

// --- layout ----------------------------------------------------------------

const (
	padding      = 24.0
	titleHeight  = 28.0
	legendHeight = 22.0
	axisWidth    = 56.0
	labelHeight  = 18.0
	charWidth    = 7.0 // basicfont.Face7x13
	markerSize   = 7.0
)

type plotArea struct {
	left, top, right, bottom float64
}

func (p plotArea) width() float64  { return p.right - p.left }
func (p plotArea) height() float64 { return p.bottom - p.top }

// linearScale maps a value domain onto a pixel range.
type linearScale struct {
	lo, hi   float64
	from, to float64
}

func newScale(lo, hi, from, to float64) linearScale {
	if hi == lo {
		hi = lo + 1
	}
	return linearScale{lo: lo, hi: hi, from: from, to: to}
}

func (s linearScale) at(v float64) float64 {
	return s.from + (v-s.lo)/(s.hi-s.lo)*(s.to-s.from)
}

func (s linearScale) ticks(n int) []float64 {
	return floats.Span(make([]float64, n), s.lo, s.hi)
}

type stackMode int

const (
	stackNone stackMode = iota
	stackSum
	stackPercent
)

func modeOf(t model.ChartType) stackMode {
	switch t {
	case model.ChartStackedColumn, model.ChartStackedBar, model.ChartStackedArea:
		return stackSum
	case model.ChartNormalizedColumn, model.ChartNormalizedBar, model.ChartNormalizedArea:
		return stackPercent
	default:
		return stackNone
	}
}

// BuildScene lays out data for the given theme, palette and options.
func BuildScene(data chart.ChartData, th theme.Theme, pal model.Palette, opts chart.Options) *Scene {
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 500
	}
	sc := &Scene{Width: width, Height: height, Background: th.Background, Foreground: th.Foreground}
	sc.rect(0, 0, float64(width), float64(height), th.Background, "")

	area := plotArea{left: padding, top: padding, right: float64(width) - padding, bottom: float64(height) - padding}
	if opts.Title != "" {
		sc.text(float64(width)/2, padding+8, opts.Title, 0.5, 16)
		area.top += titleHeight
	}
	if opts.Legend {
		area.bottom -= legendHeight
		drawLegend(sc, data, pal, area.bottom+legendHeight/2+6)
	}

	if len(data.Series) == 0 || len(data.Categories) == 0 {
		sc.text(float64(width)/2, float64(height)/2, "No data", 0.5, 14)
		return sc
	}

	switch data.ChartType {
	case model.ChartPie, model.ChartDoughnut:
		drawPie(sc, data, pal, area, data.ChartType == model.ChartDoughnut)
	case model.ChartScatter, model.ChartBubble:
		area.left += axisWidth
		area.bottom -= labelHeight
		drawScatter(sc, data, pal, area, opts, data.ChartType == model.ChartBubble)
	case model.ChartHistogram:
		area.left += axisWidth
		area.bottom -= labelHeight
		drawHistogram(sc, data, pal, area)
	case model.ChartLine, model.ChartArea, model.ChartStackedArea, model.ChartNormalizedArea:
		area.left += axisWidth
		area.bottom -= labelHeight
		drawLines(sc, data, pal, area, opts)
	default:
		area.left += axisWidth
		area.bottom -= labelHeight
		drawBars(sc, data, pal, area)
	}
	return sc
}

// seriesMatrix returns values[s][c], normalized to percentages per category
// when mode is stackPercent.
func seriesMatrix(data chart.ChartData, mode stackMode) [][]float64 {
	vals := make([][]float64, len(data.Series))
	for i, s := range data.Series {
		vals[i] = append([]float64(nil), s.Values...)
	}
	if mode != stackPercent {
		return vals
	}
	for c := range data.Categories {
		total := 0.0
		for s := range vals {
			total += math.Abs(vals[s][c])
		}
		if total == 0 {
			continue
		}
		for s := range vals {
			vals[s][c] = vals[s][c] / total * 100
		}
	}
	return vals
}

// valueDomain returns the value range to plot, always including zero.
func valueDomain(vals [][]float64, mode stackMode) (float64, float64) {
	if mode == stackPercent {
		return 0, 100
	}
	lo, hi := 0.0, 0.0
	if mode == stackSum {
		for c := range vals[0] {
			pos, neg := 0.0, 0.0
			for s := range vals {
				if v := vals[s][c]; v >= 0 {
					pos += v
				} else {
					neg += v
				}
			}
			hi, lo = math.Max(hi, pos), math.Min(lo, neg)
		}
		return lo, hi
	}
	for _, row := range vals {
		if len(row) == 0 {
			continue
		}
		hi, lo = math.Max(hi, floats.Max(row)), math.Min(lo, floats.Min(row))
	}
	return lo, hi
}

func drawValueAxis(sc *Scene, scale linearScale, area plotArea, horizontal bool) {
	for _, v := range scale.ticks(5) {
		p := scale.at(v)
		label := formatValue(v)
		if horizontal {
			sc.polyline([]marker.Point{{X: p, Y: area.top}, {X: p, Y: area.bottom}}, "#cccccc", 0.5)
			sc.text(p, area.bottom+13, label, 0.5, 11)
			continue
		}
		sc.polyline([]marker.Point{{X: area.left, Y: p}, {X: area.right, Y: p}}, "#cccccc", 0.5)
		sc.text(area.left-6, p+4, label, 1, 11)
	}
}

func drawCategoryLabels(sc *Scene, cats []chart.Category, area plotArea, horizontal bool) {
	n := float64(len(cats))
	if horizontal {
		band := area.height() / n
		maxChars := int(math.Floor((axisWidth - 6) / charWidth))
		for i, c := range cats {
			sc.text(area.left-6, area.top+band*(float64(i)+0.5)+4, truncate(c.Label, maxChars), 1, 11)
		}
		return
	}
	band := area.width() / n
	maxChars := int(band / charWidth)
	if maxChars < 1 {
		return
	}
	for i, c := range cats {
		sc.text(area.left+band*(float64(i)+0.5), area.bottom+13, truncate(c.Label, maxChars), 0.5, 11)
	}
}

func drawBars(sc *Scene, data chart.ChartData, pal model.Palette, area plotArea) {
	mode := modeOf(data.ChartType)
	horizontal := data.ChartType.IsHorizontal()
	vals := seriesMatrix(data, mode)
	lo, hi := valueDomain(vals, mode)

	var scale linearScale
	var band float64
	if horizontal {
		scale = newScale(lo, hi, area.left, area.right)
		band = area.height() / float64(len(data.Categories))
	} else {
		scale = newScale(lo, hi, area.bottom, area.top)
		band = area.width() / float64(len(data.Categories))
	}
	drawValueAxis(sc, scale, area, horizontal)

	nSeries := float64(len(vals))
	for c := range data.Categories {
		bandStart := float64(c) * band
		pos, neg := 0.0, 0.0
		for s := range vals {
			v := vals[s][c]
			from, to := 0.0, v
			offset, thickness := bandStart+band*0.1, band*0.8
			if mode == stackNone {
				thickness = band * 0.8 / nSeries
				offset += float64(s) * thickness
			} else if v >= 0 {
				from, to = pos, pos+v
				pos += v
			} else {
				from, to = neg, neg+v
				neg += v
			}
			a, b := scale.at(from), scale.at(to)
			if horizontal {
				sc.rect(a, area.top+offset, b-a, thickness, pal.Fill(s), pal.Stroke(s))
			} else {
				sc.rect(area.left+offset, b, thickness, a-b, pal.Fill(s), pal.Stroke(s))
			}
		}
	}
	drawCategoryLabels(sc, data.Categories, area, horizontal)
}

func drawLines(sc *Scene, data chart.ChartData, pal model.Palette, area plotArea, opts chart.Options) {
	mode := modeOf(data.ChartType)
	filled := data.ChartType != model.ChartLine
	vals := seriesMatrix(data, mode)
	lo, hi := valueDomain(vals, mode)
	scale := newScale(lo, hi, area.bottom, area.top)
	drawValueAxis(sc, scale, area, false)

	band := area.width() / float64(len(data.Categories))
	xAt := func(c int) float64 { return area.left + band*(float64(c)+0.5) }
	glyph := marker.Lookup(opts.Marker)
	size := opts.MarkerSize
	if size <= 0 {
		size = markerSize
	}

	base := make([]float64, len(data.Categories))
	for s := range vals {
		top := make([]marker.Point, len(data.Categories))
		bottom := make([]marker.Point, len(data.Categories))
		for c, v := range vals[s] {
			b := base[c]
			if mode == stackNone {
				b = 0
			}
			top[c] = marker.Point{X: xAt(c), Y: scale.at(b + v)}
			bottom[c] = marker.Point{X: xAt(c), Y: scale.at(b)}
			if mode != stackNone {
				base[c] += v
			}
		}
		if filled {
			outline := append([]marker.Point(nil), top...)
			for i := len(bottom) - 1; i >= 0; i-- {
				outline = append(outline, bottom[i])
			}
			sc.polygon(outline, pal.Fill(s), "")
		}
		sc.polyline(top, pal.Stroke(s), 2)
		if !filled {
			for _, p := range top {
				sc.polygon(glyph.Polygon(p.X, p.Y, size), pal.Fill(s), pal.Stroke(s))
			}
		}
	}
	drawCategoryLabels(sc, data.Categories, area, false)
}

// drawScatter plots the first series on the x axis against every other
// series. With a single series, category position is used for x. Bubble
// charts size points by the last series when there are at least three.
func drawScatter(sc *Scene, data chart.ChartData, pal model.Palette, area plotArea, opts chart.Options, bubble bool) {
	vals := seriesMatrix(data, stackNone)
	xs := make([]float64, len(data.Categories))
	ys := vals
	if len(vals) > 1 {
		xs = vals[0]
		ys = vals[1:]
	} else {
		for i := range xs {
			xs[i] = float64(i + 1)
		}
	}
	var sizes []float64
	if bubble && len(ys) > 1 {
		sizes = ys[len(ys)-1]
		ys = ys[:len(ys)-1]
	}

	xScale := newScale(math.Min(0, floats.Min(xs)), floats.Max(xs), area.left, area.right)
	lo, hi := valueDomain(ys, stackNone)
	yScale := newScale(lo, hi, area.bottom, area.top)
	drawValueAxis(sc, yScale, area, false)
	drawValueAxis(sc, xScale, area, true)

	glyph := marker.Lookup(opts.Marker)
	size := opts.MarkerSize
	if size <= 0 {
		size = markerSize
	}
	var sizeScale linearScale
	if sizes != nil {
		sizeScale = newScale(floats.Min(sizes), floats.Max(sizes), size, size*4)
	}
	for s, row := range ys {
		color := s
		if len(vals) > 1 {
			color = s + 1
		}
		for c, y := range row {
			d := size
			if sizes != nil {
				d = sizeScale.at(sizes[c])
			}
			sc.polygon(glyph.Polygon(xScale.at(xs[c]), yScale.at(y), d), pal.Fill(color), pal.Stroke(color))
		}
	}
}

func drawPie(sc *Scene, data chart.ChartData, pal model.Palette, area plotArea, doughnut bool) {
	values := make([]float64, len(data.Series[0].Values))
	for i, v := range data.Series[0].Values {
		values[i] = math.Abs(v)
	}
	total := floats.Sum(values)
	if total == 0 {
		sc.text((area.left+area.right)/2, (area.top+area.bottom)/2, "No data", 0.5, 14)
		return
	}
	cx, cy := (area.left+area.right)/2, (area.top+area.bottom)/2
	r := math.Min(area.width(), area.height()) / 2 * 0.9
	inner := 0.0
	if doughnut {
		inner = r * 0.5
	}

	angle := -math.Pi / 2
	for i, v := range values {
		sweep := v / total * 2 * math.Pi
		if sweep == 0 {
			continue
		}
		pts := arc(cx, cy, r, angle, angle+sweep)
		if inner > 0 {
			in := arc(cx, cy, inner, angle, angle+sweep)
			for j := len(in) - 1; j >= 0; j-- {
				pts = append(pts, in[j])
			}
		} else {
			pts = append(pts, marker.Point{X: cx, Y: cy})
		}
		sc.polygon(pts, pal.Fill(i), pal.Stroke(i))

		mid := angle + sweep/2
		lr := (r + inner) / 2
		if inner == 0 {
			lr = r * 0.65
		}
		if sweep > 0.3 {
			sc.text(cx+lr*math.Cos(mid), cy+lr*math.Sin(mid)+4, fmt.Sprintf("%.0f%%", v/total*100), 0.5, 11)
		}
		angle += sweep
	}
}

// arc approximates a circular arc with one vertex per three degrees.
func arc(cx, cy, r, from, to float64) []marker.Point {
	steps := max(2, int(math.Ceil((to-from)/(math.Pi/60))))
	pts := make([]marker.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		a := from + (to-from)*float64(i)/float64(steps)
		pts = append(pts, marker.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)})
	}
	return pts
}

// histogramBins counts the first series' values into ceil(sqrt(n)) equal
// width bins.
func histogramBins(values []float64) (dividers, counts []float64) {
	x := append([]float64(nil), values...)
	sort.Float64s(x)
	bins := max(1, int(math.Ceil(math.Sqrt(float64(len(x))))))
	lo, hi := x[0], x[len(x)-1]
	if hi == lo {
		hi = lo + 1
	}
	// the top divider must sit strictly above the largest value
	hi += (hi - lo) * 1e-9
	dividers = floats.Span(make([]float64, bins+1), lo, hi)
	counts = stat.Histogram(nil, dividers, x, nil)
	return dividers, counts
}

func drawHistogram(sc *Scene, data chart.ChartData, pal model.Palette, area plotArea) {
	values := data.Series[0].Values
	if len(values) == 0 {
		return
	}
	dividers, counts := histogramBins(values)
	scale := newScale(0, floats.Max(counts), area.bottom, area.top)
	drawValueAxis(sc, scale, area, false)

	band := area.width() / float64(len(counts))
	for i, n := range counts {
		x := area.left + float64(i)*band
		sc.rect(x, scale.at(n), band, area.bottom-scale.at(n), pal.Fill(0), pal.Stroke(0))
		if int(band/charWidth) >= 4 {
			sc.text(x+band/2, area.bottom+13, formatValue(dividers[i]), 0.5, 11)
		}
	}
}

func drawLegend(sc *Scene, data chart.ChartData, pal model.Palette, y float64) {
	var labels []string
	if data.ChartType.IsPolar() {
		for _, c := range data.Categories {
			labels = append(labels, c.Label)
		}
	} else {
		for _, s := range data.Series {
			labels = append(labels, s.Name)
		}
	}
	x := padding
	for i, label := range labels {
		label = truncate(label, 18)
		sc.rect(x, y-9, 10, 10, pal.Fill(i), pal.Stroke(i))
		sc.text(x+14, y, label, 0, 11)
		x += 14 + float64(len([]rune(label)))*charWidth + 16
		if x > float64(sc.Width)-padding {
			break
		}
	}
}

// --- helpers ---------------------------------------------------------------

func formatValue(v float64) string {
	switch {
	case math.Abs(v) >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case math.Abs(v) >= 1e4:
		return fmt.Sprintf("%.0fk", v/1e3)
	default:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
