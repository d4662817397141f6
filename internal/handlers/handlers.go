// Package handlers implements the event handlers (C7, spec §4.6): one per
// queue role, each receiving an eventsv1 message already decoded by
// internal/consumer, mapping it to a domain input, and invoking the domain
// service facade. Handlers never propagate
// errors to the consumer pool: they log at error and return nil, so that
// per spec §4.5 step 5 every delivery whose payload decoded is acked.
//
// Grounded on _examples/original_source/listeners/src/rabbit/{role,permission_override,server,channel}/handler.rs,
// translated from tracing spans + Result<(), Infallible> to zerolog child
// loggers + an always-nil Go error return.
package handlers

import (
	"context"

	"github.com/rs/zerolog"

	eventsv1 "github.com/beep-industries/authz-events/eventsv1"

	"github.com/beep-industries/authz-projector/internal/authzsvc"
	"github.com/beep-industries/authz-projector/internal/projection/override"
)

// Handlers owns a handle to the domain service facade and a logger; its
// methods are the event handler set wired to queues in cmd/projector.
type Handlers struct {
	svc *authzsvc.Service
	log zerolog.Logger
}

// New returns a Handlers bound to svc, logging under component=handlers.
func New(svc *authzsvc.Service, log zerolog.Logger) *Handlers {
	return &Handlers{svc: svc, log: log.With().Str("component", "handlers").Logger()}
}

// CreateServer handles server.create.
func (h *Handlers) CreateServer(ctx context.Context, evt *eventsv1.CreateServer) error {
	log := h.log.With().Str("queue", "server.create").Str("server_id", evt.GetServerId()).Logger()
	log.Info().Str("owner_id", evt.GetOwnerId()).Msg("received")

	if err := h.svc.Server.Create(ctx, evt.GetServerId(), evt.GetOwnerId()); err != nil {
		log.Error().Err(err).Msg("failed to create server")
	}
	return nil
}

// DeleteServer handles server.delete.
func (h *Handlers) DeleteServer(ctx context.Context, evt *eventsv1.DeleteServer) error {
	log := h.log.With().Str("queue", "server.delete").Str("server_id", evt.GetServerId()).Logger()
	log.Info().Msg("received")

	if err := h.svc.Server.Delete(ctx, evt.GetServerId()); err != nil {
		log.Error().Err(err).Msg("failed to delete server")
	}
	return nil
}

// CreateChannel handles channel.create.
func (h *Handlers) CreateChannel(ctx context.Context, evt *eventsv1.CreateChannel) error {
	log := h.log.With().Str("queue", "channel.create").Str("channel_id", evt.GetChannelId()).Logger()
	log.Info().Str("server_id", evt.GetServerId()).Msg("received")

	if err := h.svc.Channel.Create(ctx, evt.GetChannelId(), evt.GetServerId()); err != nil {
		log.Error().Err(err).Msg("failed to create channel")
	}
	return nil
}

// DeleteChannel handles channel.delete.
func (h *Handlers) DeleteChannel(ctx context.Context, evt *eventsv1.DeleteChannel) error {
	log := h.log.With().Str("queue", "channel.delete").Str("channel_id", evt.GetChannelId()).Logger()
	log.Info().Msg("received")

	if err := h.svc.Channel.Delete(ctx, evt.GetChannelId()); err != nil {
		log.Error().Err(err).Msg("failed to delete channel")
	}
	return nil
}

// UpsertRole handles role.upsert.
func (h *Handlers) UpsertRole(ctx context.Context, evt *eventsv1.UpsertRole) error {
	log := h.log.With().Str("queue", "role.upsert").Str("role_id", evt.GetRoleId()).Logger()
	log.Info().Str("server_id", evt.GetServerId()).Uint64("permissions_bitmask", evt.GetPermissionsBitmask()).Msg("received")

	if err := h.svc.Role.Create(ctx, evt.GetRoleId(), evt.GetServerId(), evt.GetPermissionsBitmask()); err != nil {
		log.Error().Err(err).Msg("failed to upsert role")
	}
	return nil
}

// DeleteRole handles role.delete.
func (h *Handlers) DeleteRole(ctx context.Context, evt *eventsv1.DeleteRole) error {
	log := h.log.With().Str("queue", "role.delete").Str("role_id", evt.GetRoleId()).Logger()
	log.Info().Msg("received")

	if err := h.svc.Role.Delete(ctx, evt.GetRoleId()); err != nil {
		log.Error().Err(err).Msg("failed to delete role")
	}
	return nil
}

// MemberAssignedToRole handles role.member_added.
func (h *Handlers) MemberAssignedToRole(ctx context.Context, evt *eventsv1.MemberAssignedToRole) error {
	log := h.log.With().Str("queue", "role.member_added").Str("role_id", evt.GetRoleId()).Str("user_id", evt.GetUserId()).Logger()
	log.Info().Msg("received")

	if err := h.svc.Role.AssignMember(ctx, evt.GetUserId(), evt.GetRoleId()); err != nil {
		log.Error().Err(err).Msg("failed to assign member to role")
	}
	return nil
}

// MemberRemovedFromRole handles role.member_removed.
func (h *Handlers) MemberRemovedFromRole(ctx context.Context, evt *eventsv1.MemberRemovedFromRole) error {
	log := h.log.With().Str("queue", "role.member_removed").Str("role_id", evt.GetRoleId()).Str("user_id", evt.GetUserId()).Logger()
	log.Info().Msg("received")

	if err := h.svc.Role.RemoveMember(ctx, evt.GetUserId(), evt.GetRoleId()); err != nil {
		log.Error().Err(err).Msg("failed to remove member from role")
	}
	return nil
}

// UpsertPermissionOverride handles override.upsert. A missing oneof target
// is a semantic drop: logged at warn, handler still returns nil (spec §7).
func (h *Handlers) UpsertPermissionOverride(ctx context.Context, evt *eventsv1.UpsertPermissionOverride) error {
	log := h.log.With().Str("queue", "override.upsert").Str("override_id", evt.GetOverrideId()).Str("channel_id", evt.GetChannelId()).Logger()

	isAllow := evt.GetAction() == eventsv1.OverrideAction_OVERRIDE_ACTION_ALLOW
	log.Info().Uint64("permission_bitmask", evt.GetPermissionBitmask()).Bool("is_allow", isAllow).Msg("received")

	target := overrideTarget(evt)
	if target == nil {
		log.Warn().Msg("no target specified in permission override, skipping")
		return nil
	}

	if err := h.svc.Override.Create(ctx, evt.GetOverrideId(), evt.GetChannelId(), evt.GetPermissionBitmask(), isAllow, target); err != nil {
		log.Error().Err(err).Msg("failed to upsert permission override")
	}
	return nil
}

func overrideTarget(evt *eventsv1.UpsertPermissionOverride) *override.Target {
	switch t := evt.GetTarget().(type) {
	case *eventsv1.UpsertPermissionOverride_UserId:
		return &override.Target{Kind: override.TargetUser, ID: t.UserId}
	case *eventsv1.UpsertPermissionOverride_RoleId:
		return &override.Target{Kind: override.TargetRole, ID: t.RoleId}
	default:
		return nil
	}
}

// DeletePermissionOverride handles override.delete. Only override_id is
// available on the wire; the repository's delete path is filter-based and
// needs nothing else (spec §4.3.4/§9).
func (h *Handlers) DeletePermissionOverride(ctx context.Context, evt *eventsv1.DeletePermissionOverride) error {
	log := h.log.With().Str("queue", "override.delete").Str("override_id", evt.GetOverrideId()).Logger()
	log.Info().Msg("received")

	if err := h.svc.Override.Delete(ctx, evt.GetOverrideId()); err != nil {
		log.Error().Err(err).Msg("failed to delete permission override")
	}
	return nil
}
