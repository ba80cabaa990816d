package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/goliatone/go-startpage/components/startpage"
	"github.com/goliatone/go-startpage/components/startpage/poller"
)

const statusOK = "ok"

// LogSink records poll results in api_logs and serves them back as history.
type LogSink struct {
	sandbox *Sandbox
}

var (
	_ poller.Sink           = (*LogSink)(nil)
	_ startpage.PollHistory = (*LogSink)(nil)
)

// NewLogSink builds a sink over s.
func NewLogSink(s *Sandbox) *LogSink {
	return &LogSink{sandbox: s}
}

// Record stores result. Failures are logged and dropped.
func (l *LogSink) Record(ctx context.Context, result poller.Result) {
	row := APILog{
		ServiceID:  result.ServiceID,
		Endpoint:   result.Endpoint,
		Status:     statusOK,
		DurationMS: result.Duration.Milliseconds(),
		CreatedAt:  result.At.UTC(),
	}
	if result.Err != nil {
		row.Status = result.Err.Error()
	}
	if result.Document != nil {
		if data, err := json.Marshal(result.Document); err == nil {
			row.ResponseData = string(data)
		}
	}
	if err := l.insert(ctx, &row); err != nil {
		l.sandbox.opts.Logger.Warn("sandbox: record poll result failed",
			"service_id", result.ServiceID, "error", err)
	}
}

func (l *LogSink) insert(ctx context.Context, row *APILog) error {
	db, err := l.sandbox.DB(ctx)
	if err != nil {
		return err
	}
	l.sandbox.mu.Lock()
	defer l.sandbox.mu.Unlock()
	return db.Create(row).Error
}

// History returns the latest limit records for serviceID, oldest first.
func (l *LogSink) History(ctx context.Context, serviceID string, limit int) ([]startpage.PollRecord, error) {
	db, err := l.sandbox.DB(ctx)
	if err != nil {
		return nil, err
	}
	l.sandbox.mu.Lock()
	defer l.sandbox.mu.Unlock()
	var rows []APILog
	query := db.Where(map[string]any{"service_id": serviceID}).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("sandbox: history %s: %w", serviceID, err)
	}
	slices.Reverse(rows)
	return lo.Map(rows, func(row APILog, _ int) startpage.PollRecord {
		return startpage.PollRecord{
			ServiceID:  row.ServiceID,
			Status:     row.Status,
			DurationMS: row.DurationMS,
			At:         row.CreatedAt.UnixMilli(),
		}
	}), nil
}
