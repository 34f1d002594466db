package util

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const WEEKLY_CHART_TITLE = "Weekly Calories"

// RenderWeeklyChart writes an HTML bar chart of the weekly series to w.
func RenderWeeklyChart(w io.Writer, series [7]float64) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: WEEKLY_CHART_TITLE,
			Width:     "800px",
			Height:    "280px",
		}),
		charts.WithTitleOpts(opts.Title{Title: WEEKLY_CHART_TITLE}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kcal"}),
	)

	items := make([]opts.BarData, 0, len(series))
	for _, v := range series {
		items = append(items, opts.BarData{Value: v})
	}
	bar.SetXAxis(WEEKDAY_LABELS[:]).
		AddSeries("Calories", items,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render weekly chart: %w", err)
	}
	return nil
}
