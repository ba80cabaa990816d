package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-startpage/components/startpage"
	"github.com/goliatone/go-startpage/components/startpage/commands"
)

// ErrCommandUnavailable is returned when an executor has no commander wired
// for an operation.
var ErrCommandUnavailable = errors.New("httpapi: command not configured")

// Executor runs every mutation exposed over HTTP. Transports depend on this
// interface rather than on concrete commands.
type Executor interface {
	AddService(ctx context.Context, in commands.AddServiceInput) error
	UpdateService(ctx context.Context, in commands.UpdateServiceInput) error
	DeleteService(ctx context.Context, in commands.DeleteInput) error
	ReorderServices(ctx context.Context, in commands.ReorderServicesInput) error
	MoveService(ctx context.Context, in commands.MoveInput) error

	AddSubcategory(ctx context.Context, in commands.AddSubcategoryInput) error
	UpdateSubcategory(ctx context.Context, in commands.UpdateSubcategoryInput) error
	DeleteSubcategory(ctx context.Context, in commands.DeleteInput) error
	ReorderSubcategories(ctx context.Context, in commands.ReorderSubcategoriesInput) error
	MoveSubcategory(ctx context.Context, in commands.MoveInput) error

	AddCategory(ctx context.Context, in commands.AddCategoryInput) error
	UpdateCategory(ctx context.Context, in commands.UpdateCategoryInput) error
	DeleteCategory(ctx context.Context, in commands.DeleteInput) error
	ReorderCategories(ctx context.Context, in commands.ReorderCategoriesInput) error
	MoveCategory(ctx context.Context, in commands.MoveInput) error

	UpdateSettings(ctx context.Context, in commands.UpdateSettingsInput) error
	Reset(ctx context.Context, in commands.ResetConfigInput) error
	Import(ctx context.Context, in commands.ImportConfigInput) error

	RefreshService(ctx context.Context, in commands.RefreshServiceInput) error
	SandboxQuery(ctx context.Context, in commands.SandboxQueryInput) error
	SandboxRun(ctx context.Context, in commands.SandboxRunInput) error
}

// CommandExecutor adapts individual commanders to Executor. Nil commanders
// report ErrCommandUnavailable.
type CommandExecutor struct {
	AddServiceCommander      gocommand.Commander[commands.AddServiceInput]
	UpdateServiceCommander   gocommand.Commander[commands.UpdateServiceInput]
	DeleteServiceCommander   gocommand.Commander[commands.DeleteInput]
	ReorderServicesCommander gocommand.Commander[commands.ReorderServicesInput]
	MoveServiceCommander     gocommand.Commander[commands.MoveInput]

	AddSubcategoryCommander       gocommand.Commander[commands.AddSubcategoryInput]
	UpdateSubcategoryCommander    gocommand.Commander[commands.UpdateSubcategoryInput]
	DeleteSubcategoryCommander    gocommand.Commander[commands.DeleteInput]
	ReorderSubcategoriesCommander gocommand.Commander[commands.ReorderSubcategoriesInput]
	MoveSubcategoryCommander      gocommand.Commander[commands.MoveInput]

	AddCategoryCommander       gocommand.Commander[commands.AddCategoryInput]
	UpdateCategoryCommander    gocommand.Commander[commands.UpdateCategoryInput]
	DeleteCategoryCommander    gocommand.Commander[commands.DeleteInput]
	ReorderCategoriesCommander gocommand.Commander[commands.ReorderCategoriesInput]
	MoveCategoryCommander      gocommand.Commander[commands.MoveInput]

	UpdateSettingsCommander gocommand.Commander[commands.UpdateSettingsInput]
	ResetCommander          gocommand.Commander[commands.ResetConfigInput]
	ImportCommander         gocommand.Commander[commands.ImportConfigInput]

	RefreshCommander      gocommand.Commander[commands.RefreshServiceInput]
	SandboxQueryCommander gocommand.Commander[commands.SandboxQueryInput]
	SandboxRunCommander   gocommand.Commander[commands.SandboxRunInput]
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires every config command against store. Refresh and
// sandbox commanders are left for the caller.
func NewCommandExecutor(store *startpage.Store, validator startpage.ConfigValidator, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		AddServiceCommander:      commands.NewAddServiceCommand(store, telemetry),
		UpdateServiceCommander:   commands.NewUpdateServiceCommand(store, telemetry),
		DeleteServiceCommander:   commands.NewDeleteServiceCommand(store, telemetry),
		ReorderServicesCommander: commands.NewReorderServicesCommand(store, telemetry),
		MoveServiceCommander:     commands.NewMoveServiceCommand(store, telemetry),

		AddSubcategoryCommander:       commands.NewAddSubcategoryCommand(store, telemetry),
		UpdateSubcategoryCommander:    commands.NewUpdateSubcategoryCommand(store, telemetry),
		DeleteSubcategoryCommander:    commands.NewDeleteSubcategoryCommand(store, telemetry),
		ReorderSubcategoriesCommander: commands.NewReorderSubcategoriesCommand(store, telemetry),
		MoveSubcategoryCommander:      commands.NewMoveSubcategoryCommand(store, telemetry),

		AddCategoryCommander:       commands.NewAddCategoryCommand(store, telemetry),
		UpdateCategoryCommander:    commands.NewUpdateCategoryCommand(store, telemetry),
		DeleteCategoryCommander:    commands.NewDeleteCategoryCommand(store, telemetry),
		ReorderCategoriesCommander: commands.NewReorderCategoriesCommand(store, telemetry),
		MoveCategoryCommander:      commands.NewMoveCategoryCommand(store, telemetry),

		UpdateSettingsCommander: commands.NewUpdateSettingsCommand(store, telemetry),
		ResetCommander:          commands.NewResetConfigCommand(store, telemetry),
		ImportCommander:         commands.NewImportConfigCommand(store, validator, telemetry),
	}
}

func run[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return ErrCommandUnavailable
	}
	return cmd.Execute(ctx, msg)
}

func (e *CommandExecutor) AddService(ctx context.Context, in commands.AddServiceInput) error {
	return run(ctx, e.AddServiceCommander, in)
}

func (e *CommandExecutor) UpdateService(ctx context.Context, in commands.UpdateServiceInput) error {
	return run(ctx, e.UpdateServiceCommander, in)
}

func (e *CommandExecutor) DeleteService(ctx context.Context, in commands.DeleteInput) error {
	return run(ctx, e.DeleteServiceCommander, in)
}

func (e *CommandExecutor) ReorderServices(ctx context.Context, in commands.ReorderServicesInput) error {
	return run(ctx, e.ReorderServicesCommander, in)
}

func (e *CommandExecutor) MoveService(ctx context.Context, in commands.MoveInput) error {
	return run(ctx, e.MoveServiceCommander, in)
}

func (e *CommandExecutor) AddSubcategory(ctx context.Context, in commands.AddSubcategoryInput) error {
	return run(ctx, e.AddSubcategoryCommander, in)
}

func (e *CommandExecutor) UpdateSubcategory(ctx context.Context, in commands.UpdateSubcategoryInput) error {
	return run(ctx, e.UpdateSubcategoryCommander, in)
}

func (e *CommandExecutor) DeleteSubcategory(ctx context.Context, in commands.DeleteInput) error {
	return run(ctx, e.DeleteSubcategoryCommander, in)
}

func (e *CommandExecutor) ReorderSubcategories(ctx context.Context, in commands.ReorderSubcategoriesInput) error {
	return run(ctx, e.ReorderSubcategoriesCommander, in)
}

func (e *CommandExecutor) MoveSubcategory(ctx context.Context, in commands.MoveInput) error {
	return run(ctx, e.MoveSubcategoryCommander, in)
}

func (e *CommandExecutor) AddCategory(ctx context.Context, in commands.AddCategoryInput) error {
	return run(ctx, e.AddCategoryCommander, in)
}

func (e *CommandExecutor) UpdateCategory(ctx context.Context, in commands.UpdateCategoryInput) error {
	return run(ctx, e.UpdateCategoryCommander, in)
}

func (e *CommandExecutor) DeleteCategory(ctx context.Context, in commands.DeleteInput) error {
	return run(ctx, e.DeleteCategoryCommander, in)
}

func (e *CommandExecutor) ReorderCategories(ctx context.Context, in commands.ReorderCategoriesInput) error {
	return run(ctx, e.ReorderCategoriesCommander, in)
}

func (e *CommandExecutor) MoveCategory(ctx context.Context, in commands.MoveInput) error {
	return run(ctx, e.MoveCategoryCommander, in)
}

func (e *CommandExecutor) UpdateSettings(ctx context.Context, in commands.UpdateSettingsInput) error {
	return run(ctx, e.UpdateSettingsCommander, in)
}

func (e *CommandExecutor) Reset(ctx context.Context, in commands.ResetConfigInput) error {
	return run(ctx, e.ResetCommander, in)
}

func (e *CommandExecutor) Import(ctx context.Context, in commands.ImportConfigInput) error {
	return run(ctx, e.ImportCommander, in)
}

func (e *CommandExecutor) RefreshService(ctx context.Context, in commands.RefreshServiceInput) error {
	return run(ctx, e.RefreshCommander, in)
}

func (e *CommandExecutor) SandboxQuery(ctx context.Context, in commands.SandboxQueryInput) error {
	return run(ctx, e.SandboxQueryCommander, in)
}

func (e *CommandExecutor) SandboxRun(ctx context.Context, in commands.SandboxRunInput) error {
	return run(ctx, e.SandboxRunCommander, in)
}
