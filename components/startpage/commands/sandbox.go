package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-startpage/pkg/sandbox"
)

// SandboxQueryInput runs SQL against the embedded database.
type SandboxQueryInput struct {
	SQL     string            `json:"sql"`
	Params  []any             `json:"params,omitempty"`
	Results *[]sandbox.Result `json:"-"`
}

type sandboxQuerier interface {
	Query(ctx context.Context, query string, params ...any) ([]sandbox.Result, error)
}

// SandboxQueryCommand wraps Sandbox.Query.
type SandboxQueryCommand struct {
	db        sandboxQuerier
	telemetry Telemetry
}

// NewSandboxQueryCommand builds the command.
func NewSandboxQueryCommand(db sandboxQuerier, telemetry Telemetry) *SandboxQueryCommand {
	return &SandboxQueryCommand{db: db, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SandboxQueryInput] = (*SandboxQueryCommand)(nil)

// Execute runs the query.
func (c *SandboxQueryCommand) Execute(ctx context.Context, msg SandboxQueryInput) error {
	if c.db == nil {
		return errors.New("sandbox query command requires database")
	}
	if strings.TrimSpace(msg.SQL) == "" {
		return invalid("sql is required")
	}
	results, err := c.db.Query(ctx, msg.SQL, msg.Params...)
	if err != nil {
		return err
	}
	if msg.Results != nil {
		*msg.Results = results
	}
	c.telemetry.Record(ctx, "startpage.command.sandbox.query", map[string]any{
		"result_sets": len(results),
	})
	return nil
}

// SandboxRunInput executes a statement against the embedded database.
type SandboxRunInput struct {
	SQL    string             `json:"sql"`
	Params []any              `json:"params,omitempty"`
	Result *sandbox.RunResult `json:"-"`
}

type sandboxRunner interface {
	Run(ctx context.Context, query string, params ...any) (sandbox.RunResult, error)
}

// SandboxRunCommand wraps Sandbox.Run.
type SandboxRunCommand struct {
	db        sandboxRunner
	telemetry Telemetry
}

// NewSandboxRunCommand builds the command.
func NewSandboxRunCommand(db sandboxRunner, telemetry Telemetry) *SandboxRunCommand {
	return &SandboxRunCommand{db: db, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SandboxRunInput] = (*SandboxRunCommand)(nil)

// Execute runs the statement.
func (c *SandboxRunCommand) Execute(ctx context.Context, msg SandboxRunInput) error {
	if c.db == nil {
		return errors.New("sandbox run command requires database")
	}
	if strings.TrimSpace(msg.SQL) == "" {
		return invalid("sql is required")
	}
	res, err := c.db.Run(ctx, msg.SQL, msg.Params...)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = res
	}
	c.telemetry.Record(ctx, "startpage.command.sandbox.run", map[string]any{
		"changes": res.Changes,
	})
	return nil
}
