package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/artxeweb/comparaelprecio-api/pkg/model"
)

// Canvas constants match the storefront's SVG chart.
const (
	chartWidth    = 800.0
	chartHeight   = 300.0
	chartPadding  = 40.0
	gridLineCount = 5
	maxDateLabels = 5
)

// BuildChart maps a price time series to plot coordinates for a line chart.
// It returns nil for an empty series, which the caller renders as an
// empty-state placeholder rather than an error. The transform is pure: the
// same input always yields the same output.
func BuildChart(series []model.PricePoint) *model.ChartGeometry {
	if len(series) == 0 {
		return nil
	}

	sorted := make([]model.PricePoint, len(series))
	copy(sorted, series)
	// Stable sort keeps the original relative order for equal dates.
	sort.SliceStable(sorted, func(i, j int) bool {
		return parseSeriesDate(sorted[i].Date).Before(parseSeriesDate(sorted[j].Date))
	})

	minPrice, maxPrice := sorted[0].Price, sorted[0].Price
	for _, p := range sorted[1:] {
		if p.Price < minPrice {
			minPrice = p.Price
		}
		if p.Price > maxPrice {
			maxPrice = p.Price
		}
	}
	priceRange := maxPrice - minPrice
	if priceRange == 0 {
		// All prices equal: every point collapses to the same vertical
		// position, which is the correct degenerate rendering.
		priceRange = 1
	}

	plotWidth := chartWidth - 2*chartPadding
	plotHeight := chartHeight - 2*chartPadding

	points := make([]model.ChartPoint, len(sorted))
	var path strings.Builder
	for i, p := range sorted {
		x := chartPadding
		if len(sorted) > 1 {
			x += float64(i) / float64(len(sorted)-1) * plotWidth
		}
		y := chartPadding + (maxPrice-p.Price)/priceRange*plotHeight
		points[i] = model.ChartPoint{X: x, Y: y, Date: p.Date, Price: p.Price}

		if i == 0 {
			fmt.Fprintf(&path, "M %g %g", x, y)
		} else {
			fmt.Fprintf(&path, " L %g %g", x, y)
		}
	}

	gridLines := make([]model.GridLine, gridLineCount)
	for i := 0; i < gridLineCount; i++ {
		ratio := float64(i) / float64(gridLineCount-1)
		price := minPrice + ratio*priceRange
		gridLines[i] = model.GridLine{
			Y:     chartPadding + (1-ratio)*plotHeight,
			Price: price,
			Label: fmt.Sprintf("€%.0f", price),
		}
	}

	stride := (len(points) + maxDateLabels - 1) / maxDateLabels
	var dateLabels []model.AxisLabel
	for i := 0; i < len(points); i += stride {
		dateLabels = append(dateLabels, model.AxisLabel{
			X:     points[i].X,
			Label: formatDateLabel(points[i].Date),
		})
	}

	return &model.ChartGeometry{
		Width:      chartWidth,
		Height:     chartHeight,
		Padding:    chartPadding,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Points:     points,
		Path:       path.String(),
		GridLines:  gridLines,
		DateLabels: dateLabels,
	}
}

var seriesDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseSeriesDate(s string) time.Time {
	for _, layout := range seriesDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}
	// Unparseable dates sort first and keep their input order.
	return time.Time{}
}

func formatDateLabel(s string) string {
	t := parseSeriesDate(s)
	if t.IsZero() {
		return s
	}
	return t.Format("2 Jan")
}
