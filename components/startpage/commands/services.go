package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-startpage/components/startpage"
)

// AddServiceInput carries a new service. Result receives the stored entity.
type AddServiceInput struct {
	Service startpage.ServiceInput `json:"service"`
	ActorID string                 `json:"actor_id,omitempty"`
	Result  *startpage.Service     `json:"-"`
}

type addServiceStore interface {
	AddService(ctx context.Context, in startpage.ServiceInput) (startpage.Service, error)
}

// AddServiceCommand wraps Store.AddService.
type AddServiceCommand struct {
	store     addServiceStore
	telemetry Telemetry
}

// NewAddServiceCommand builds the command.
func NewAddServiceCommand(store addServiceStore, telemetry Telemetry) *AddServiceCommand {
	return &AddServiceCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddServiceInput] = (*AddServiceCommand)(nil)

// Execute validates and stores the service.
func (c *AddServiceCommand) Execute(ctx context.Context, msg AddServiceInput) error {
	if c.store == nil {
		return errors.New("add service command requires store")
	}
	in := msg.Service
	if strings.TrimSpace(in.Name) == "" {
		return invalid("service name is required")
	}
	if strings.TrimSpace(in.URL) == "" {
		return invalid("service url is required")
	}
	if in.Subcategory == "" {
		return invalid("service subcategory is required")
	}
	if in.APIConfig != nil && in.APIConfig.Endpoint == "" {
		return invalid("apiConfig endpoint is required")
	}
	svc, err := c.store.AddService(withActor(ctx, msg.ActorID), in)
	if msg.Result != nil {
		*msg.Result = svc
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "startpage.command.service.add", map[string]any{
		"service_id":  svc.ID,
		"subcategory": svc.Subcategory,
		"polled":      svc.APIConfig != nil,
	})
	return nil
}

// UpdateServiceInput patches one service.
type UpdateServiceInput struct {
	ID      string                 `json:"id"`
	Patch   startpage.ServicePatch `json:"patch"`
	ActorID string                 `json:"actor_id,omitempty"`
}

type updateServiceStore interface {
	UpdateService(ctx context.Context, id string, patch startpage.ServicePatch) (bool, error)
}

// UpdateServiceCommand wraps Store.UpdateService. Unknown ids are a no-op.
type UpdateServiceCommand struct {
	store     updateServiceStore
	telemetry Telemetry
}

// NewUpdateServiceCommand builds the command.
func NewUpdateServiceCommand(store updateServiceStore, telemetry Telemetry) *UpdateServiceCommand {
	return &UpdateServiceCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateServiceInput] = (*UpdateServiceCommand)(nil)

// Execute applies the patch.
func (c *UpdateServiceCommand) Execute(ctx context.Context, msg UpdateServiceInput) error {
	if c.store == nil {
		return errors.New("update service command requires store")
	}
	if msg.ID == "" {
		return invalid("service id is required")
	}
	if name, ok := msg.Patch.Name.Get(); ok && strings.TrimSpace(name) == "" {
		return invalid("service name cannot be blank")
	}
	found, err := c.store.UpdateService(withActor(ctx, msg.ActorID), msg.ID, msg.Patch)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "startpage.command.service.update", map[string]any{
		"service_id": msg.ID,
		"found":      found,
	})
	return nil
}

// DeleteInput addresses one entity. Result receives the cascade.
type DeleteInput struct {
	ID      string             `json:"id"`
	ActorID string             `json:"actor_id,omitempty"`
	Result  *startpage.Cascade `json:"-"`
}

type deleteServiceStore interface {
	DeleteService(ctx context.Context, id string) (startpage.Cascade, error)
}

// DeleteServiceCommand wraps Store.DeleteService.
type DeleteServiceCommand struct {
	store     deleteServiceStore
	telemetry Telemetry
}

// NewDeleteServiceCommand builds the command.
func NewDeleteServiceCommand(store deleteServiceStore, telemetry Telemetry) *DeleteServiceCommand {
	return &DeleteServiceCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteInput] = (*DeleteServiceCommand)(nil)

// Execute removes the service.
func (c *DeleteServiceCommand) Execute(ctx context.Context, msg DeleteInput) error {
	if c.store == nil {
		return errors.New("delete service command requires store")
	}
	if msg.ID == "" {
		return invalid("service id is required")
	}
	removed, err := c.store.DeleteService(withActor(ctx, msg.ActorID), msg.ID)
	return finishDelete(ctx, c.telemetry, "startpage.command.service.delete", msg, removed, err)
}

// ReorderServicesInput replaces the service collection. When IDs is set the
// stored entities are arranged in that sequence and Services is ignored.
type ReorderServicesInput struct {
	IDs      []string            `json:"ids,omitempty"`
	Services []startpage.Service `json:"services"`
	ActorID  string              `json:"actor_id,omitempty"`
}

type reorderServicesStore interface {
	ReorderServices(ctx context.Context, services []startpage.Service) error
	ArrangeServices(ctx context.Context, ids []string) error
}

// ReorderServicesCommand wraps Store.ReorderServices.
type ReorderServicesCommand struct {
	store     reorderServicesStore
	telemetry Telemetry
}

// NewReorderServicesCommand builds the command.
func NewReorderServicesCommand(store reorderServicesStore, telemetry Telemetry) *ReorderServicesCommand {
	return &ReorderServicesCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderServicesInput] = (*ReorderServicesCommand)(nil)

// Execute swaps in the new collection.
func (c *ReorderServicesCommand) Execute(ctx context.Context, msg ReorderServicesInput) error {
	if c.store == nil {
		return errors.New("reorder services command requires store")
	}
	if len(msg.IDs) > 0 {
		if err := c.store.ArrangeServices(withActor(ctx, msg.ActorID), msg.IDs); err != nil {
			return err
		}
		c.telemetry.Record(ctx, "startpage.command.service.reorder", map[string]any{
			"count": len(msg.IDs),
			"by_id": true,
		})
		return nil
	}
	if err := c.store.ReorderServices(withActor(ctx, msg.ActorID), msg.Services); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "startpage.command.service.reorder", map[string]any{
		"count": len(msg.Services),
	})
	return nil
}

// MoveInput is a drag of MovedID onto TargetID. Moved reports whether the
// order changed.
type MoveInput struct {
	MovedID  string `json:"movedId"`
	TargetID string `json:"targetId"`
	ActorID  string `json:"actor_id,omitempty"`
	Moved    *bool  `json:"-"`
}

type moveServiceStore interface {
	MoveService(ctx context.Context, movedID, targetID string) (bool, error)
}

// MoveServiceCommand wraps Store.MoveService.
type MoveServiceCommand struct {
	store     moveServiceStore
	telemetry Telemetry
}

// NewMoveServiceCommand builds the command.
func NewMoveServiceCommand(store moveServiceStore, telemetry Telemetry) *MoveServiceCommand {
	return &MoveServiceCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveInput] = (*MoveServiceCommand)(nil)

// Execute reconciles the drag.
func (c *MoveServiceCommand) Execute(ctx context.Context, msg MoveInput) error {
	if c.store == nil {
		return errors.New("move service command requires store")
	}
	if msg.MovedID == "" || msg.TargetID == "" {
		return invalid("movedId and targetId are required")
	}
	moved, err := c.store.MoveService(withActor(ctx, msg.ActorID), msg.MovedID, msg.TargetID)
	return finishMove(ctx, c.telemetry, "startpage.command.service.move", msg, moved, err)
}

func finishDelete(ctx context.Context, telemetry Telemetry, event string, msg DeleteInput, removed startpage.Cascade, err error) error {
	if msg.Result != nil {
		*msg.Result = removed
	}
	if err != nil {
		return err
	}
	telemetry.Record(ctx, event, map[string]any{
		"id":      msg.ID,
		"removed": removed.Count(),
	})
	return nil
}

func finishMove(ctx context.Context, telemetry Telemetry, event string, msg MoveInput, moved bool, err error) error {
	if msg.Moved != nil {
		*msg.Moved = moved
	}
	if err != nil {
		return err
	}
	telemetry.Record(ctx, event, map[string]any{
		"moved_id":  msg.MovedID,
		"target_id": msg.TargetID,
		"moved":     moved,
	})
	return nil
}

func withActor(ctx context.Context, actorID string) context.Context {
	if actorID == "" {
		return ctx
	}
	return startpage.ContextWithActor(ctx, actorID)
}
