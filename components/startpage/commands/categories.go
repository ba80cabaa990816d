package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-startpage/components/startpage"
)

// AddCategoryInput carries a new category.
type AddCategoryInput struct {
	Category startpage.CategoryInput `json:"category"`
	ActorID  string                  `json:"actor_id,omitempty"`
	Result   *startpage.Category     `json:"-"`
}

type addCategoryStore interface {
	AddCategory(ctx context.Context, in startpage.CategoryInput) (startpage.Category, error)
}

// AddCategoryCommand wraps Store.AddCategory.
type AddCategoryCommand struct {
	store     addCategoryStore
	telemetry Telemetry
}

// NewAddCategoryCommand builds the command.
func NewAddCategoryCommand(store addCategoryStore, telemetry Telemetry) *AddCategoryCommand {
	return &AddCategoryCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddCategoryInput] = (*AddCategoryCommand)(nil)

// Execute validates and stores the category.
func (c *AddCategoryCommand) Execute(ctx context.Context, msg AddCategoryInput) error {
	if c.store == nil {
		return errors.New("add category command requires store")
	}
	if strings.TrimSpace(msg.Category.Name) == "" {
		return invalid("category name is required")
	}
	cat, err := c.store.AddCategory(withActor(ctx, msg.ActorID), msg.Category)
	if msg.Result != nil {
		*msg.Result = cat
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "startpage.command.category.add", map[string]any{
		"category_id": cat.ID,
	})
	return nil
}

// UpdateCategoryInput patches one category.
type UpdateCategoryInput struct {
	ID      string                  `json:"id"`
	Patch   startpage.CategoryPatch `json:"patch"`
	ActorID string                  `json:"actor_id,omitempty"`
}

type updateCategoryStore interface {
	UpdateCategory(ctx context.Context, id string, patch startpage.CategoryPatch) (bool, error)
}

// UpdateCategoryCommand wraps Store.UpdateCategory.
type UpdateCategoryCommand struct {
	store     updateCategoryStore
	telemetry Telemetry
}

// NewUpdateCategoryCommand builds the command.
func NewUpdateCategoryCommand(store updateCategoryStore, telemetry Telemetry) *UpdateCategoryCommand {
	return &UpdateCategoryCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateCategoryInput] = (*UpdateCategoryCommand)(nil)

// Execute applies the patch.
func (c *UpdateCategoryCommand) Execute(ctx context.Context, msg UpdateCategoryInput) error {
	if c.store == nil {
		return errors.New("update category command requires store")
	}
	if msg.ID == "" {
		return invalid("category id is required")
	}
	found, err := c.store.UpdateCategory(withActor(ctx, msg.ActorID), msg.ID, msg.Patch)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "startpage.command.category.update", map[string]any{
		"category_id": msg.ID,
		"found":       found,
	})
	return nil
}

type deleteCategoryStore interface {
	DeleteCategory(ctx context.Context, id string) (startpage.Cascade, error)
}

// DeleteCategoryCommand wraps Store.DeleteCategory, which cascades to the
// category's subcategories and their services.
type DeleteCategoryCommand struct {
	store     deleteCategoryStore
	telemetry Telemetry
}

// NewDeleteCategoryCommand builds the command.
func NewDeleteCategoryCommand(store deleteCategoryStore, telemetry Telemetry) *DeleteCategoryCommand {
	return &DeleteCategoryCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteInput] = (*DeleteCategoryCommand)(nil)

// Execute removes the category.
func (c *DeleteCategoryCommand) Execute(ctx context.Context, msg DeleteInput) error {
	if c.store == nil {
		return errors.New("delete category command requires store")
	}
	if msg.ID == "" {
		return invalid("category id is required")
	}
	removed, err := c.store.DeleteCategory(withActor(ctx, msg.ActorID), msg.ID)
	return finishDelete(ctx, c.telemetry, "startpage.command.category.delete", msg, removed, err)
}

// ReorderCategoriesInput replaces the category collection. When IDs is set the
// stored entities are arranged in that sequence and Categories is ignored.
type ReorderCategoriesInput struct {
	IDs        []string             `json:"ids,omitempty"`
	Categories []startpage.Category `json:"categories"`
	ActorID    string               `json:"actor_id,omitempty"`
}

type reorderCategoriesStore interface {
	ReorderCategories(ctx context.Context, categories []startpage.Category) error
	ArrangeCategories(ctx context.Context, ids []string) error
}

// ReorderCategoriesCommand wraps Store.ReorderCategories.
type ReorderCategoriesCommand struct {
	store     reorderCategoriesStore
	telemetry Telemetry
}

// NewReorderCategoriesCommand builds the command.
func NewReorderCategoriesCommand(store reorderCategoriesStore, telemetry Telemetry) *ReorderCategoriesCommand {
	return &ReorderCategoriesCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderCategoriesInput] = (*ReorderCategoriesCommand)(nil)

// Execute swaps in the new collection.
func (c *ReorderCategoriesCommand) Execute(ctx context.Context, msg ReorderCategoriesInput) error {
	if c.store == nil {
		return errors.New("reorder categories command requires store")
	}
	if len(msg.IDs) > 0 {
		if err := c.store.ArrangeCategories(withActor(ctx, msg.ActorID), msg.IDs); err != nil {
			return err
		}
		c.telemetry.Record(ctx, "startpage.command.category.reorder", map[string]any{
			"count": len(msg.IDs),
			"by_id": true,
		})
		return nil
	}
	if err := c.store.ReorderCategories(withActor(ctx, msg.ActorID), msg.Categories); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "startpage.command.category.reorder", map[string]any{
		"count": len(msg.Categories),
	})
	return nil
}

type moveCategoryStore interface {
	MoveCategory(ctx context.Context, movedID, targetID string) (bool, error)
}

// MoveCategoryCommand wraps Store.MoveCategory.
type MoveCategoryCommand struct {
	store     moveCategoryStore
	telemetry Telemetry
}

// NewMoveCategoryCommand builds the command.
func NewMoveCategoryCommand(store moveCategoryStore, telemetry Telemetry) *MoveCategoryCommand {
	return &MoveCategoryCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveInput] = (*MoveCategoryCommand)(nil)

// Execute reconciles the drag.
func (c *MoveCategoryCommand) Execute(ctx context.Context, msg MoveInput) error {
	if c.store == nil {
		return errors.New("move category command requires store")
	}
	if msg.MovedID == "" || msg.TargetID == "" {
		return invalid("movedId and targetId are required")
	}
	moved, err := c.store.MoveCategory(withActor(ctx, msg.ActorID), msg.MovedID, msg.TargetID)
	return finishMove(ctx, c.telemetry, "startpage.command.category.move", msg, moved, err)
}
