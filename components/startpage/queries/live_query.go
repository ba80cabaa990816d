package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-startpage/components/startpage"
)

// ErrNoLiveData reports a service without a running poller.
var ErrNoLiveData = errors.New("queries: service has no live data")

// ServiceInput addresses one service.
type ServiceInput struct {
	ServiceID string `json:"service_id"`
}

type liveService interface {
	Live(serviceID string) (startpage.LiveValue, bool)
}

// LiveQuery returns the latest poll state of a service.
type LiveQuery struct {
	service liveService
}

// NewLiveQuery builds the query.
func NewLiveQuery(service liveService) *LiveQuery {
	return &LiveQuery{service: service}
}

var _ gocommand.Querier[ServiceInput, startpage.LiveValue] = (*LiveQuery)(nil)

// Query returns ErrNoLiveData when the service is not polled.
func (q *LiveQuery) Query(_ context.Context, in ServiceInput) (startpage.LiveValue, error) {
	value, ok := q.service.Live(in.ServiceID)
	if !ok {
		return startpage.LiveValue{}, ErrNoLiveData
	}
	return value, nil
}

type historyRenderer interface {
	RenderHistory(ctx context.Context, serviceID string) (string, error)
}

// HistoryChartQuery renders the poll latency chart of a service.
type HistoryChartQuery struct {
	service historyRenderer
}

// NewHistoryChartQuery builds the query.
func NewHistoryChartQuery(service historyRenderer) *HistoryChartQuery {
	return &HistoryChartQuery{service: service}
}

var _ gocommand.Querier[ServiceInput, string] = (*HistoryChartQuery)(nil)

// Query returns chart HTML.
func (q *HistoryChartQuery) Query(ctx context.Context, in ServiceInput) (string, error) {
	return q.service.RenderHistory(ctx, in.ServiceID)
}

// WeatherResult is the weather widget payload.
type WeatherResult struct {
	Enabled bool                   `json:"enabled"`
	Weather *startpage.WeatherData `json:"weather,omitempty"`
}

// WeatherInput is the empty request for WeatherQuery.
type WeatherInput struct{}

type weatherService interface {
	Weather(ctx context.Context) (startpage.WeatherData, bool, error)
}

// WeatherQuery reads the weather widget.
type WeatherQuery struct {
	service weatherService
}

// NewWeatherQuery builds the query.
func NewWeatherQuery(service weatherService) *WeatherQuery {
	return &WeatherQuery{service: service}
}

var _ gocommand.Querier[WeatherInput, WeatherResult] = (*WeatherQuery)(nil)

// Query returns Enabled=false when the widget is turned off.
func (q *WeatherQuery) Query(ctx context.Context, _ WeatherInput) (WeatherResult, error) {
	data, enabled, err := q.service.Weather(ctx)
	if err != nil {
		return WeatherResult{}, err
	}
	if !enabled {
		return WeatherResult{}, nil
	}
	return WeatherResult{Enabled: true, Weather: &data}, nil
}
