package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/gridchart/pkg/chart"
	"github.com/vanderheijden86/gridchart/pkg/model"
)

// renderChart draws a text rendition of a chart: a header describing its
// state and ranges, then horizontal bars per category.
func renderChart(t Theme, s *Session, comp *chart.Comp, width, height int) string {
	ctrl := comp.Controller()
	data := ctrl.ChartData()
	pal := s.Palette(comp)

	link := "linked"
	if !ctrl.IsChartLinked() {
		link = "detached"
	}
	var lines []string
	lines = append(lines, t.Title.Render(truncate(fmt.Sprintf("%s · %s · %s",
		ctrl.ChartType(), ctrl.ThemeName(), link), width)))
	lines = append(lines, t.MutedText.Render(truncate(rangeSummary(s, ctrl), width)))
	lines = append(lines, renderLegend(data, pal, width))

	body := max(height-len(lines)-1, 1)
	lines = append(lines, "")
	lines = append(lines, chartBody(data, pal, width, body)...)
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// rangeSummary lists the chart's grid ranges in A1 notation.
func rangeSummary(s *Session, ctrl *chart.Controller) string {
	ranges := s.Grid.CellRanges(ctrl.ChartID())
	if len(ranges) == 0 {
		if s.Config.SuppressChartRanges {
			return "ranges hidden"
		}
		return "no ranges"
	}
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		a1, err := r.A1(s.Grid.DisplayIndex)
		if err != nil {
			continue
		}
		parts = append(parts, a1)
	}
	return "ranges " + strings.Join(parts, ", ")
}

func renderLegend(data chart.ChartData, pal model.Palette, width int) string {
	var parts []string
	for i, series := range data.Series {
		swatch := lipgloss.NewStyle().Foreground(SeriesColor(pal.Fill(i), i)).Render("■")
		parts = append(parts, swatch+" "+series.Name)
	}
	if len(parts) == 0 {
		return "no value columns"
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(parts, "  "))
}

func chartBody(data chart.ChartData, pal model.Palette, width, height int) []string {
	if len(data.Series) == 0 || len(data.Categories) == 0 {
		return []string{"nothing to plot"}
	}
	switch {
	case data.ChartType == model.ChartPie || data.ChartType == model.ChartDoughnut:
		return pieLines(data, pal, width, height)
	case data.ChartType.IsXY() || data.ChartType == model.ChartHistogram:
		return seriesStats(data, pal, width, height)
	default:
		return barLines(data, pal, width, height)
	}
}

// barLines draws one row per category. Grouped types give each series its
// own bar; stacked and normalized types draw segments on a single bar.
func barLines(data chart.ChartData, pal model.Palette, width, height int) []string {
	labelWidth := 0
	for _, c := range data.Categories {
		labelWidth = max(labelWidth, runewidth.StringWidth(c.Label))
	}
	labelWidth = min(labelWidth, width/3)
	barWidth := max(width-labelWidth-2, 4)

	name := string(data.ChartType)
	stacked := strings.HasPrefix(name, "stacked") || strings.HasPrefix(name, "normalized")
	normalized := strings.HasPrefix(name, "normalized")

	peak := 0.0
	for i := range data.Categories {
		if stacked {
			peak = max(peak, categoryTotal(data, i))
			continue
		}
		for _, s := range data.Series {
			peak = max(peak, math.Abs(valueAt(s, i)))
		}
	}
	if peak == 0 {
		peak = 1
	}

	var lines []string
	for i, c := range data.Categories {
		if len(lines) >= height {
			break
		}
		label := fitCell(c.Label, labelWidth, false)
		if stacked {
			total := peak
			if normalized {
				total = categoryTotal(data, i)
				if total == 0 {
					total = 1
				}
			}
			var bar strings.Builder
			for si, s := range data.Series {
				n := int(math.Round(math.Abs(valueAt(s, i)) / total * float64(barWidth)))
				bar.WriteString(segment(n, pal.Fill(si), si))
			}
			lines = append(lines, label+" "+bar.String())
			continue
		}
		for si, s := range data.Series {
			v := valueAt(s, i)
			n := int(math.Round(math.Abs(v) / peak * float64(barWidth-8)))
			prefix := label
			if si > 0 {
				prefix = strings.Repeat(" ", labelWidth)
			}
			lines = append(lines, prefix+" "+segment(n, pal.Fill(si), si)+" "+formatNumber(v))
		}
	}
	return lines
}

// pieLines lists each category's share of the first series.
func pieLines(data chart.ChartData, pal model.Palette, width, height int) []string {
	series := data.Series[0]
	total := 0.0
	for _, v := range series.Values {
		total += math.Abs(v)
	}
	if total == 0 {
		total = 1
	}
	var lines []string
	for i, c := range data.Categories {
		if i >= height {
			break
		}
		share := math.Abs(valueAt(series, i)) / total
		n := int(math.Round(share * float64(max(width-24, 4))))
		lines = append(lines, fmt.Sprintf("%s %s %5.1f%%",
			fitCell(c.Label, 12, false), segment(n, pal.Fill(i), i), share*100))
	}
	return lines
}

// seriesStats summarizes series for chart types that do not read well as
// text bars.
func seriesStats(data chart.ChartData, pal model.Palette, width, height int) []string {
	var lines []string
	for i, s := range data.Series {
		if i >= height {
			break
		}
		lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
		for _, v := range s.Values {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
			sum += v
		}
		if len(s.Values) == 0 {
			lo, hi = 0, 0
		}
		swatch := segment(2, pal.Fill(i), i)
		line := fmt.Sprintf("%s %s n=%d min=%s max=%s sum=%s", swatch, s.Name,
			len(s.Values), formatNumber(lo), formatNumber(hi), formatNumber(sum))
		lines = append(lines, lipgloss.NewStyle().MaxWidth(width).Render(line))
	}
	return lines
}

func segment(n int, hex string, index int) string {
	if n <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(SeriesColor(hex, index)).Render(strings.Repeat("█", n))
}

func categoryTotal(data chart.ChartData, i int) float64 {
	total := 0.0
	for _, s := range data.Series {
		total += math.Abs(valueAt(s, i))
	}
	return total
}

func valueAt(s chart.Series, i int) float64 {
	if i < 0 || i >= len(s.Values) {
		return 0
	}
	v := s.Values[i]
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
