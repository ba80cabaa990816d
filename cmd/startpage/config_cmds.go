package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-startpage/components/startpage"
	"github.com/goliatone/go-startpage/components/startpage/commands"
)

type exportCmd struct {
	Output string `short:"o" default:"-" help:"Destination file, or - for stdout."`
	Format string `help:"Document format, yaml or json (defaults to the output extension, else yaml)."`
}

func (cmd *exportCmd) Run(ctx context.Context, g *Globals) error {
	e, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer e.close()

	format := cmd.Format
	if format == "" {
		format = formatFromPath(cmd.Output)
	}
	doc := startpage.NewDocument(e.store.Config())
	if cmd.Output == "-" {
		return startpage.EncodeDocument(os.Stdout, doc, format)
	}
	if err := os.MkdirAll(filepath.Dir(cmd.Output), 0o755); err != nil {
		return fmt.Errorf("startpage: mkdir %s: %w", filepath.Dir(cmd.Output), err)
	}
	file, err := os.Create(cmd.Output) //nolint:gosec
	if err != nil {
		return fmt.Errorf("startpage: create %s: %w", cmd.Output, err)
	}
	defer file.Close()
	if err := startpage.EncodeDocument(file, doc, format); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Exported %d services to %s\n", len(doc.Config.Services), cmd.Output)
	return nil
}

type importCmd struct {
	File string `arg:"" type:"existingfile" help:"Document to import."`
}

func (cmd *importCmd) Run(ctx context.Context, g *Globals) error {
	validator := startpage.NewJSONSchemaValidator()
	doc, err := startpage.ReadDocument(cmd.File, validator)
	if err != nil {
		return err
	}
	e, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer e.close()

	importer := commands.NewImportConfigCommand(e.store, validator, nil)
	if err := importer.Execute(ctx, commands.ImportConfigInput{Document: doc, ActorID: "cli"}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Imported %d categories, %d subcategories, %d services from %s\n",
		len(doc.Config.Categories), len(doc.Config.Subcategories), len(doc.Config.Services), cmd.File)
	return nil
}

type validateCmd struct {
	File string `arg:"" type:"existingfile" help:"Document to validate."`
}

func (cmd *validateCmd) Run(_ context.Context, _ *Globals) error {
	doc, err := startpage.ReadDocument(cmd.File, startpage.NewJSONSchemaValidator())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %s is valid (schema v%d, %d services)\n", cmd.File, doc.SchemaVersion, len(doc.Config.Services))
	return nil
}

type resetCmd struct {
	Yes bool `help:"Skip the confirmation prompt."`
}

func (cmd *resetCmd) Run(ctx context.Context, g *Globals) error {
	if !cmd.Yes && !confirm(os.Stdin, os.Stdout, "Replace the current config with the defaults?") {
		return fmt.Errorf("startpage: reset aborted")
	}
	e, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer e.close()
	if err := commands.NewResetConfigCommand(e.store, nil).Execute(ctx, commands.ResetConfigInput{ActorID: "cli"}); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "✓ Config reset to defaults")
	return nil
}

type addServiceCmd struct {
	Name        string `required:"" help:"Display name."`
	URL         string `name:"url" required:"" help:"Link target."`
	Subcategory string `required:"" help:"Owning subcategory id."`
	Icon        string `help:"Icon name (defaults to the kebab-cased name)."`
	Description string `help:"Optional description."`
	Endpoint    string `help:"Optional JSON endpoint to poll."`
	Field       string `help:"Dot path of the field to display from the endpoint."`
	Interval    int    `help:"Refresh interval in seconds."`
}

func (cmd *addServiceCmd) Run(ctx context.Context, g *Globals) error {
	e, err := g.open(ctx, nil)
	if err != nil {
		return err
	}
	defer e.close()

	input := startpage.ServiceInput{
		Name:        cmd.Name,
		URL:         cmd.URL,
		Icon:        cmd.Icon,
		Description: cmd.Description,
		Subcategory: cmd.Subcategory,
	}
	if input.Icon == "" {
		input.Icon = strcase.ToKebab(cmd.Name)
	}
	if cmd.Endpoint != "" {
		input.APIConfig = &startpage.APIConfig{
			Endpoint:        cmd.Endpoint,
			DisplayField:    cmd.Field,
			RefreshInterval: cmd.Interval,
		}
	}
	var created startpage.Service
	add := commands.NewAddServiceCommand(e.store, nil)
	if err := add.Execute(ctx, commands.AddServiceInput{Service: input, ActorID: "cli", Result: &created}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s (%s) to %s\n", created.Name, created.ID, created.Subcategory)
	return nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	var answer string
	if _, err := fmt.Fscanln(in, &answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
