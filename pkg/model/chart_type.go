package model

import (
	"fmt"
	"strings"
)

// ChartType identifies the kind of chart a controller drives.
type ChartType string

const (
	ChartGroupedColumn    ChartType = "groupedColumn"
	ChartStackedColumn    ChartType = "stackedColumn"
	ChartNormalizedColumn ChartType = "normalizedColumn"
	ChartGroupedBar       ChartType = "groupedBar"
	ChartStackedBar       ChartType = "stackedBar"
	ChartNormalizedBar    ChartType = "normalizedBar"
	ChartLine             ChartType = "line"
	ChartPie              ChartType = "pie"
	ChartDoughnut         ChartType = "doughnut"
	ChartArea             ChartType = "area"
	ChartStackedArea      ChartType = "stackedArea"
	ChartNormalizedArea   ChartType = "normalizedArea"
	ChartScatter          ChartType = "scatter"
	ChartBubble           ChartType = "bubble"
	ChartHistogram        ChartType = "histogram"
)

// AllChartTypes lists every chart type in menu order.
func AllChartTypes() []ChartType {
	return []ChartType{
		ChartGroupedColumn, ChartStackedColumn, ChartNormalizedColumn,
		ChartGroupedBar, ChartStackedBar, ChartNormalizedBar,
		ChartLine,
		ChartPie, ChartDoughnut,
		ChartArea, ChartStackedArea, ChartNormalizedArea,
		ChartScatter, ChartBubble,
		ChartHistogram,
	}
}

// IsValid reports whether t is a known chart type.
func (t ChartType) IsValid() bool {
	for _, known := range AllChartTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// IsXY reports whether the chart plots axis pairs rather than categories.
func (t ChartType) IsXY() bool {
	return t == ChartScatter || t == ChartBubble
}

// IsPolar reports whether the chart is a pie or doughnut.
func (t ChartType) IsPolar() bool {
	return t == ChartPie || t == ChartDoughnut
}

// IsHorizontal reports whether bars grow along the x axis.
func (t ChartType) IsHorizontal() bool {
	return t == ChartGroupedBar || t == ChartStackedBar || t == ChartNormalizedBar
}

// Next returns the chart type following t in menu order, wrapping around.
func (t ChartType) Next() ChartType {
	all := AllChartTypes()
	for i, known := range all {
		if known == t {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// ParseChartType accepts a chart type name case-insensitively.
func ParseChartType(s string) (ChartType, error) {
	s = strings.TrimSpace(s)
	for _, known := range AllChartTypes() {
		if strings.EqualFold(string(known), s) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown chart type %q", s)
}
