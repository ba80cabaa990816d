package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goliatone/go-startpage/components/startpage"
	"github.com/goliatone/go-startpage/components/startpage/commands"
	"github.com/goliatone/go-startpage/components/startpage/poller"
	"github.com/goliatone/go-startpage/pkg/sandbox"
)

type searchCmd struct {
	Query string `arg:"" help:"Search text."`
	Web   bool   `help:"Print the configured engine's search URL instead of matching services."`
}

func (cmd *searchCmd) Run(ctx context.Context, g *Globals) error {
	e, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer e.close()
	controller := startpage.NewController(startpage.ControllerOptions{Source: e.store})

	if cmd.Web {
		target, err := controller.WebSearchURL(cmd.Query)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, target)
		return nil
	}
	matches := controller.SearchServices(cmd.Query)
	if len(matches) == 0 {
		fmt.Fprintln(os.Stderr, "no matching services")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tURL")
	for _, svc := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\n", svc.ID, svc.Name, svc.URL)
	}
	return w.Flush()
}

type pollCmd struct {
	ServiceID string        `arg:"" name:"service-id" help:"Service to poll."`
	Timeout   time.Duration `default:"10s" help:"Request timeout."`
}

func (cmd *pollCmd) Run(ctx context.Context, g *Globals) error {
	e, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer e.close()

	svc, ok := e.store.FindService(cmd.ServiceID)
	if !ok {
		return fmt.Errorf("startpage: unknown service %q", cmd.ServiceID)
	}
	if svc.APIConfig == nil || svc.APIConfig.Endpoint == "" {
		return fmt.Errorf("startpage: service %q has no apiConfig endpoint", cmd.ServiceID)
	}
	ctx, cancel := context.WithTimeout(ctx, cmd.Timeout)
	defer cancel()

	p := poller.New(*svc.APIConfig,
		poller.WithServiceID(svc.ID),
		poller.WithSink(sandbox.NewLogSink(e.db)),
		poller.WithLogger(e.logger),
	)
	state := p.Refresh(ctx)
	return printJSON(state.LiveValue())
}

type historyCmd struct {
	ServiceID string `arg:"" name:"service-id" help:"Service whose poll records to list."`
	Limit     int    `default:"20" help:"Maximum records."`
}

func (cmd *historyCmd) Run(ctx context.Context, g *Globals) error {
	e, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer e.close()

	records, err := sandbox.NewLogSink(e.db).History(ctx, cmd.ServiceID, cmd.Limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AT\tSTATUS\tDURATION")
	for _, rec := range records {
		at := time.UnixMilli(rec.At).Format(time.RFC3339)
		fmt.Fprintf(w, "%s\t%s\t%dms\n", at, rec.Status, rec.DurationMS)
	}
	return w.Flush()
}

type sqlCmd struct {
	Statement string   `arg:"" help:"SQL to execute."`
	Param     []string `short:"p" help:"Positional parameters (repeat the flag)."`
	Exec      bool     `help:"Report changed rows instead of returning a result set."`
}

func (cmd *sqlCmd) Run(ctx context.Context, g *Globals) error {
	e, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer e.close()

	params := make([]any, len(cmd.Param))
	for i, p := range cmd.Param {
		params[i] = p
	}
	if cmd.Exec {
		var result sandbox.RunResult
		run := commands.NewSandboxRunCommand(e.db, nil)
		if err := run.Execute(ctx, commands.SandboxRunInput{SQL: cmd.Statement, Params: params, Result: &result}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%d rows changed\n", result.Changes)
		return nil
	}
	var results []sandbox.Result
	query := commands.NewSandboxQueryCommand(e.db, nil)
	if err := query.Execute(ctx, commands.SandboxQueryInput{SQL: cmd.Statement, Params: params, Results: &results}); err != nil {
		return err
	}
	for _, result := range results {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, strings.ToUpper(strings.Join(result.Columns, "\t")))
		for _, row := range result.Values {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = fmt.Sprint(v)
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

type tablesCmd struct {
	Table string `arg:"" optional:"" help:"Describe this table's columns."`
}

func (cmd *tablesCmd) Run(ctx context.Context, g *Globals) error {
	e, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer e.close()

	if cmd.Table == "" {
		names, err := e.db.Tables(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(os.Stdout, name)
		}
		return nil
	}
	columns, err := e.db.Describe(ctx, cmd.Table)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return errors.New("startpage: no such table " + cmd.Table)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tTYPE\tNOT NULL\tPK")
	for _, col := range columns {
		fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", col.Name, col.Type, col.NotNull, col.PrimaryKey)
	}
	return w.Flush()
}

type pruneCmd struct {
	MaxAge time.Duration `name:"max-age" default:"168h" env:"STARTPAGE_LOG_RETENTION" help:"Delete api_logs rows older than this."`
}

func (cmd *pruneCmd) Run(ctx context.Context, g *Globals) error {
	e, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer e.close()
	removed, err := sandbox.NewRetention(e.db, sandbox.RetentionOptions{MaxAge: cmd.MaxAge}).Prune(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Pruned %d api_logs rows\n", removed)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
