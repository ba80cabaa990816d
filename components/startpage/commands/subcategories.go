package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-startpage/components/startpage"
)

// AddSubcategoryInput carries a new subcategory.
type AddSubcategoryInput struct {
	Subcategory startpage.SubcategoryInput `json:"subcategory"`
	ActorID     string                     `json:"actor_id,omitempty"`
	Result      *startpage.Subcategory     `json:"-"`
}

type addSubcategoryStore interface {
	AddSubcategory(ctx context.Context, in startpage.SubcategoryInput) (startpage.Subcategory, error)
}

// AddSubcategoryCommand wraps Store.AddSubcategory.
type AddSubcategoryCommand struct {
	store     addSubcategoryStore
	telemetry Telemetry
}

// NewAddSubcategoryCommand builds the command.
func NewAddSubcategoryCommand(store addSubcategoryStore, telemetry Telemetry) *AddSubcategoryCommand {
	return &AddSubcategoryCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddSubcategoryInput] = (*AddSubcategoryCommand)(nil)

// Execute validates and stores the subcategory.
func (c *AddSubcategoryCommand) Execute(ctx context.Context, msg AddSubcategoryInput) error {
	if c.store == nil {
		return errors.New("add subcategory command requires store")
	}
	if strings.TrimSpace(msg.Subcategory.Name) == "" {
		return invalid("subcategory name is required")
	}
	if msg.Subcategory.CategoryID == "" {
		return invalid("subcategory categoryId is required")
	}
	sub, err := c.store.AddSubcategory(withActor(ctx, msg.ActorID), msg.Subcategory)
	if msg.Result != nil {
		*msg.Result = sub
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "startpage.command.subcategory.add", map[string]any{
		"subcategory_id": sub.ID,
		"category_id":    sub.CategoryID,
	})
	return nil
}

// UpdateSubcategoryInput patches one subcategory.
type UpdateSubcategoryInput struct {
	ID      string                     `json:"id"`
	Patch   startpage.SubcategoryPatch `json:"patch"`
	ActorID string                     `json:"actor_id,omitempty"`
}

type updateSubcategoryStore interface {
	UpdateSubcategory(ctx context.Context, id string, patch startpage.SubcategoryPatch) (bool, error)
}

// UpdateSubcategoryCommand wraps Store.UpdateSubcategory.
type UpdateSubcategoryCommand struct {
	store     updateSubcategoryStore
	telemetry Telemetry
}

// NewUpdateSubcategoryCommand builds the command.
func NewUpdateSubcategoryCommand(store updateSubcategoryStore, telemetry Telemetry) *UpdateSubcategoryCommand {
	return &UpdateSubcategoryCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateSubcategoryInput] = (*UpdateSubcategoryCommand)(nil)

// Execute applies the patch.
func (c *UpdateSubcategoryCommand) Execute(ctx context.Context, msg UpdateSubcategoryInput) error {
	if c.store == nil {
		return errors.New("update subcategory command requires store")
	}
	if msg.ID == "" {
		return invalid("subcategory id is required")
	}
	found, err := c.store.UpdateSubcategory(withActor(ctx, msg.ActorID), msg.ID, msg.Patch)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "startpage.command.subcategory.update", map[string]any{
		"subcategory_id": msg.ID,
		"found":          found,
	})
	return nil
}

type deleteSubcategoryStore interface {
	DeleteSubcategory(ctx context.Context, id string) (startpage.Cascade, error)
}

// DeleteSubcategoryCommand wraps Store.DeleteSubcategory, which cascades to
// the subcategory's services.
type DeleteSubcategoryCommand struct {
	store     deleteSubcategoryStore
	telemetry Telemetry
}

// NewDeleteSubcategoryCommand builds the command.
func NewDeleteSubcategoryCommand(store deleteSubcategoryStore, telemetry Telemetry) *DeleteSubcategoryCommand {
	return &DeleteSubcategoryCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteInput] = (*DeleteSubcategoryCommand)(nil)

// Execute removes the subcategory.
func (c *DeleteSubcategoryCommand) Execute(ctx context.Context, msg DeleteInput) error {
	if c.store == nil {
		return errors.New("delete subcategory command requires store")
	}
	if msg.ID == "" {
		return invalid("subcategory id is required")
	}
	removed, err := c.store.DeleteSubcategory(withActor(ctx, msg.ActorID), msg.ID)
	return finishDelete(ctx, c.telemetry, "startpage.command.subcategory.delete", msg, removed, err)
}

// ReorderSubcategoriesInput replaces the subcategory collection. When IDs is set the
// stored entities are arranged in that sequence and Subcategories is ignored.
type ReorderSubcategoriesInput struct {
	IDs           []string                `json:"ids,omitempty"`
	Subcategories []startpage.Subcategory `json:"subcategories"`
	ActorID       string                  `json:"actor_id,omitempty"`
}

type reorderSubcategoriesStore interface {
	ReorderSubcategories(ctx context.Context, subcategories []startpage.Subcategory) error
	ArrangeSubcategories(ctx context.Context, ids []string) error
}

// ReorderSubcategoriesCommand wraps Store.ReorderSubcategories.
type ReorderSubcategoriesCommand struct {
	store     reorderSubcategoriesStore
	telemetry Telemetry
}

// NewReorderSubcategoriesCommand builds the command.
func NewReorderSubcategoriesCommand(store reorderSubcategoriesStore, telemetry Telemetry) *ReorderSubcategoriesCommand {
	return &ReorderSubcategoriesCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderSubcategoriesInput] = (*ReorderSubcategoriesCommand)(nil)

// Execute swaps in the new collection.
func (c *ReorderSubcategoriesCommand) Execute(ctx context.Context, msg ReorderSubcategoriesInput) error {
	if c.store == nil {
		return errors.New("reorder subcategories command requires store")
	}
	if len(msg.IDs) > 0 {
		if err := c.store.ArrangeSubcategories(withActor(ctx, msg.ActorID), msg.IDs); err != nil {
			return err
		}
		c.telemetry.Record(ctx, "startpage.command.subcategory.reorder", map[string]any{
			"count": len(msg.IDs),
			"by_id": true,
		})
		return nil
	}
	if err := c.store.ReorderSubcategories(withActor(ctx, msg.ActorID), msg.Subcategories); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "startpage.command.subcategory.reorder", map[string]any{
		"count": len(msg.Subcategories),
	})
	return nil
}

type moveSubcategoryStore interface {
	MoveSubcategory(ctx context.Context, movedID, targetID string) (bool, error)
}

// MoveSubcategoryCommand wraps Store.MoveSubcategory.
type MoveSubcategoryCommand struct {
	store     moveSubcategoryStore
	telemetry Telemetry
}

// NewMoveSubcategoryCommand builds the command.
func NewMoveSubcategoryCommand(store moveSubcategoryStore, telemetry Telemetry) *MoveSubcategoryCommand {
	return &MoveSubcategoryCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveInput] = (*MoveSubcategoryCommand)(nil)

// Execute reconciles the drag.
func (c *MoveSubcategoryCommand) Execute(ctx context.Context, msg MoveInput) error {
	if c.store == nil {
		return errors.New("move subcategory command requires store")
	}
	if msg.MovedID == "" || msg.TargetID == "" {
		return invalid("movedId and targetId are required")
	}
	moved, err := c.store.MoveSubcategory(withActor(ctx, msg.ActorID), msg.MovedID, msg.TargetID)
	return finishMove(ctx, c.telemetry, "startpage.command.subcategory.move", msg, moved, err)
}
