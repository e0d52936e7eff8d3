package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChart writes an HTML page with the hazard breakdown, the cycle
// comparison and the hazard log per cycle.
func (r *Report) RenderChart(w io.Writer) error {
	page := components.NewPage()
	page.AddCharts(
		r.breakdownChart(),
		r.comparisonChart(),
		r.timelineChart(),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func (r *Report) breakdownChart() *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Hazard breakdown",
			Subtitle: "log entries by subtype",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	data := make([]opts.BarData, 0, len(breakdownOrder))
	for _, key := range breakdownOrder {
		data = append(data, opts.BarData{Name: key, Value: r.DetailedAnalysis.HazardBreakdown[key]})
	}

	bar.SetXAxis(breakdownOrder).AddSeries("hazards", data)

	return bar
}

func (r *Report) comparisonChart() *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Execution comparison",
			Subtitle: fmt.Sprintf("CPI %.2f, speedup %.2fx", r.Metrics.CPI, r.Metrics.Speedup),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	c := r.Comparison
	bar.SetXAxis([]string{"Sequential", "Ideal pipelined", "Actual pipelined"}).
		AddSeries("cycles", []opts.BarData{
			{Value: c.Sequential},
			{Value: c.IdealPipelined},
			{Value: c.ActualPipelined},
		})

	return bar
}

func (r *Report) timelineChart() *charts.Line {
	cycles := r.Comparison.ActualPipelined
	resolved := make([]int, cycles+1)
	unresolved := make([]int, cycles+1)
	for _, h := range r.Hazards {
		if h.Cycle > cycles {
			continue
		}
		if h.Resolved {
			resolved[h.Cycle]++
		} else {
			unresolved[h.Cycle]++
		}
	}

	axis := make([]string, cycles+1)
	for i := range axis {
		axis[i] = fmt.Sprint(i)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Hazards per cycle"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(axis).
		AddSeries("unresolved", lineData(unresolved)).
		AddSeries("resolved", lineData(resolved))

	return line
}

func lineData(values []int) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}
