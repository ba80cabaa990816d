package startpage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight  = "320px"
	defaultHistoryLimit = 50
)

// PollRecord is one stored poll outcome.
type PollRecord struct {
	ServiceID  string `json:"serviceId"`
	Status     string `json:"status"`
	DurationMS int64  `json:"durationMs"`
	At         int64  `json:"at"`
}

// PollHistory returns the most recent poll records for a service, oldest first.
type PollHistory interface {
	History(ctx context.Context, serviceID string, limit int) ([]PollRecord, error)
}

// HistoryChartOption customizes the history chart.
type HistoryChartOption func(*HistoryChart)

// WithHistoryCache memoizes rendered charts.
func WithHistoryCache(cache RenderCache) HistoryChartOption {
	return func(c *HistoryChart) {
		c.cache = cache
	}
}

// WithHistoryTheme sets the go-echarts theme.
func WithHistoryTheme(theme string) HistoryChartOption {
	return func(c *HistoryChart) {
		if theme != "" {
			c.theme = theme
		}
	}
}

// WithHistoryLimit bounds the number of points plotted.
func WithHistoryLimit(limit int) HistoryChartOption {
	return func(c *HistoryChart) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// HistoryChart renders poll latency per service as an ECharts line chart.
type HistoryChart struct {
	history PollHistory
	cache   RenderCache
	theme   string
	limit   int
}

// NewHistoryChart builds a chart renderer over history.
func NewHistoryChart(history PollHistory, opts ...HistoryChartOption) *HistoryChart {
	c := &HistoryChart{
		history: history,
		theme:   types.ThemeWesteros,
		limit:   defaultHistoryLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Render returns the chart HTML for serviceID.
func (c *HistoryChart) Render(ctx context.Context, serviceID string) (string, error) {
	if c.history == nil {
		return "", errors.New("startpage: poll history not configured")
	}
	records, err := c.history.History(ctx, serviceID, c.limit)
	if err != nil {
		return "", fmt.Errorf("startpage: load poll history: %w", err)
	}
	renderFn := func() (string, error) {
		return c.render(serviceID, records)
	}
	if c.cache == nil {
		return renderFn()
	}
	key := serviceID + ":empty"
	if n := len(records); n > 0 {
		key = fmt.Sprintf("%s:%d:%d", serviceID, n, records[n-1].At)
	}
	return c.cache.GetOrRender(key, renderFn)
}

func (c *HistoryChart) render(serviceID string, records []PollRecord) (string, error) {
	xAxis := make([]string, len(records))
	latency := make([]opts.LineData, len(records))
	for i, rec := range records {
		xAxis[i] = fmt.Sprintf("#%d", i+1)
		latency[i] = opts.LineData{Name: rec.Status, Value: rec.DurationMS}
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: serviceID, Subtitle: "poll latency (ms)"}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  c.theme,
			Width:  "100%",
			Height: defaultChartHeight,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(xAxis)
	line.AddSeries("latency", latency)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return renderChart(line)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
