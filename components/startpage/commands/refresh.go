package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-startpage/components/startpage/poller"
)

// RefreshServiceInput forces an immediate poll. Result receives the new state.
type RefreshServiceInput struct {
	ServiceID string        `json:"service_id"`
	Result    *poller.State `json:"-"`
}

type refresher interface {
	Refresh(ctx context.Context, serviceID string) (poller.State, bool)
}

// RefreshServiceCommand bypasses the schedule of one service's poller.
type RefreshServiceCommand struct {
	pollers   refresher
	telemetry Telemetry
}

// NewRefreshServiceCommand builds the command.
func NewRefreshServiceCommand(pollers refresher, telemetry Telemetry) *RefreshServiceCommand {
	return &RefreshServiceCommand{pollers: pollers, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshServiceInput] = (*RefreshServiceCommand)(nil)

// Execute fetches now. Services without a poller report ErrNotFound.
func (c *RefreshServiceCommand) Execute(ctx context.Context, msg RefreshServiceInput) error {
	if c.pollers == nil {
		return errors.New("refresh command requires poller manager")
	}
	if msg.ServiceID == "" {
		return invalid("service id is required")
	}
	state, ok := c.pollers.Refresh(ctx, msg.ServiceID)
	if !ok {
		return ErrNotFound
	}
	if msg.Result != nil {
		*msg.Result = state
	}
	c.telemetry.Record(ctx, "startpage.command.service.refresh", map[string]any{
		"service_id": msg.ServiceID,
		"failed":     state.Error != "",
	})
	return nil
}
