package commands

import (
	"context"
	"errors"
	"slices"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-startpage/components/startpage"
)

var (
	knownEngines = []startpage.SearchEngine{
		startpage.SearchGoogle, startpage.SearchBing, startpage.SearchDuckDuckGo, startpage.SearchCustom,
	}
	knownThemes = []startpage.Theme{
		startpage.ThemeDefault, startpage.ThemeCartoon, startpage.ThemeWarm, startpage.ThemeAquaGold,
	}
)

// UpdateSettingsInput patches the top-level settings.
type UpdateSettingsInput struct {
	Patch   startpage.SettingsPatch `json:"patch"`
	ActorID string                  `json:"actor_id,omitempty"`
}

type settingsStore interface {
	UpdateSettings(ctx context.Context, patch startpage.SettingsPatch) error
}

// UpdateSettingsCommand wraps Store.UpdateSettings.
type UpdateSettingsCommand struct {
	store     settingsStore
	telemetry Telemetry
}

// NewUpdateSettingsCommand builds the command.
func NewUpdateSettingsCommand(store settingsStore, telemetry Telemetry) *UpdateSettingsCommand {
	return &UpdateSettingsCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateSettingsInput] = (*UpdateSettingsCommand)(nil)

// Execute validates enum values and merges the patch.
func (c *UpdateSettingsCommand) Execute(ctx context.Context, msg UpdateSettingsInput) error {
	if c.store == nil {
		return errors.New("update settings command requires store")
	}
	if engine, ok := msg.Patch.SearchEngine.Get(); ok && !slices.Contains(knownEngines, engine) {
		return invalid("unknown search engine %q", engine)
	}
	if theme, ok := msg.Patch.Theme.Get(); ok && !slices.Contains(knownThemes, theme) {
		return invalid("unknown theme %q", theme)
	}
	if err := c.store.UpdateSettings(withActor(ctx, msg.ActorID), msg.Patch); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "startpage.command.settings.update", map[string]any{
		"empty": msg.Patch.Empty(),
	})
	return nil
}

// ResetConfigInput restores the defaults.
type ResetConfigInput struct {
	ActorID string `json:"actor_id,omitempty"`
}

type resetStore interface {
	Reset(ctx context.Context) error
}

// ResetConfigCommand wraps Store.Reset.
type ResetConfigCommand struct {
	store     resetStore
	telemetry Telemetry
}

// NewResetConfigCommand builds the command.
func NewResetConfigCommand(store resetStore, telemetry Telemetry) *ResetConfigCommand {
	return &ResetConfigCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResetConfigInput] = (*ResetConfigCommand)(nil)

// Execute replaces the config with the defaults.
func (c *ResetConfigCommand) Execute(ctx context.Context, msg ResetConfigInput) error {
	if c.store == nil {
		return errors.New("reset command requires store")
	}
	if err := c.store.Reset(withActor(ctx, msg.ActorID)); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "startpage.command.config.reset", nil)
	return nil
}

// ImportConfigInput swaps in a whole document.
type ImportConfigInput struct {
	Document *startpage.Document `json:"document"`
	ActorID  string              `json:"actor_id,omitempty"`
}

type replaceStore interface {
	Replace(ctx context.Context, next startpage.DashboardConfig) error
}

// ImportConfigCommand validates a document and replaces the config with it.
type ImportConfigCommand struct {
	store     replaceStore
	validator startpage.ConfigValidator
	telemetry Telemetry
}

// NewImportConfigCommand builds the command. A nil validator only checks ids
// and references.
func NewImportConfigCommand(store replaceStore, validator startpage.ConfigValidator, telemetry Telemetry) *ImportConfigCommand {
	return &ImportConfigCommand{store: store, validator: validator, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ImportConfigInput] = (*ImportConfigCommand)(nil)

// Execute validates and installs the document.
func (c *ImportConfigCommand) Execute(ctx context.Context, msg ImportConfigInput) error {
	if c.store == nil {
		return errors.New("import command requires store")
	}
	if msg.Document == nil {
		return invalid("document is required")
	}
	if err := msg.Document.Validate(c.validator); err != nil {
		return invalid("%v", err)
	}
	if err := c.store.Replace(withActor(ctx, msg.ActorID), msg.Document.Config); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "startpage.command.config.import", map[string]any{
		"services":      len(msg.Document.Config.Services),
		"subcategories": len(msg.Document.Config.Subcategories),
		"categories":    len(msg.Document.Config.Categories),
		"source":        msg.Document.Source,
	})
	return nil
}
