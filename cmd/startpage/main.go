package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type cli struct {
	Globals

	Serve      serveCmd      `cmd:"" help:"Run the start page HTTP server with live polling."`
	Export     exportCmd     `cmd:"" help:"Write the current config as a YAML or JSON document."`
	Import     importCmd     `cmd:"" help:"Replace the config with a YAML or JSON document."`
	Validate   validateCmd   `cmd:"" help:"Check a config document without importing it."`
	Reset      resetCmd      `cmd:"" help:"Restore the default config."`
	AddService addServiceCmd `cmd:"" name:"add-service" help:"Append a service to a subcategory."`
	Search     searchCmd     `cmd:"" help:"Find services by name or description, or print a web search URL."`
	Poll       pollCmd       `cmd:"" help:"Fetch a service's remote field once and record it."`
	History    historyCmd    `cmd:"" help:"List recent poll records for a service."`
	SQL        sqlCmd        `cmd:"" name:"sql" help:"Run a statement against the embedded database."`
	Tables     tablesCmd     `cmd:"" help:"List embedded database tables, or the columns of one."`
	Prune      pruneCmd      `cmd:"" help:"Delete api_logs rows older than the retention window."`
}

func main() {
	_ = godotenv.Load()

	var app cli
	ctx := kong.Parse(&app,
		kong.Name("startpage"),
		kong.Description("Self-hosted start page: bookmarks, live service fields, and a SQL sandbox."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background(), &app.Globals)
	ctx.FatalIfErrorf(err)
}
