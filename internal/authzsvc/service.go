// Package authzsvc is the domain service facade (C5, spec §4.4): a single
// value owning one handle to each of the four projection repositories. Its
// methods forward 1-to-1 to the repositories, adding structured logging and
// nothing else — it exists to give handlers a small, named entry point
// independent of repository construction, grounded in the Rust source's
// domain/role/service.rs Service<S,C,R,P> facade.
package authzsvc

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/beep-industries/authz-projector/internal/projection/channel"
	"github.com/beep-industries/authz-projector/internal/projection/override"
	"github.com/beep-industries/authz-projector/internal/projection/role"
	"github.com/beep-industries/authz-projector/internal/projection/server"
)

// ServerService is the facade's view of server operations.
type ServerService struct {
	repo *server.Repository
	log  zerolog.Logger
}

func (s *ServerService) Create(ctx context.Context, serverID, ownerID string) error {
	s.log.Debug().Str("server_id", serverID).Msg("service.server.create")
	return s.repo.Create(ctx, serverID, ownerID)
}

func (s *ServerService) Delete(ctx context.Context, serverID string) error {
	s.log.Debug().Str("server_id", serverID).Msg("service.server.delete")
	return s.repo.Delete(ctx, serverID)
}

// ChannelService is the facade's view of channel operations.
type ChannelService struct {
	repo *channel.Repository
	log  zerolog.Logger
}

func (c *ChannelService) Create(ctx context.Context, channelID, serverID string) error {
	c.log.Debug().Str("channel_id", channelID).Msg("service.channel.create")
	return c.repo.Create(ctx, channelID, serverID)
}

func (c *ChannelService) Delete(ctx context.Context, channelID string) error {
	c.log.Debug().Str("channel_id", channelID).Msg("service.channel.delete")
	return c.repo.Delete(ctx, channelID)
}

// RoleService is the facade's view of role operations.
type RoleService struct {
	repo *role.Repository
	log  zerolog.Logger
}

func (r *RoleService) Create(ctx context.Context, roleID, serverID string, bitmask uint64) error {
	r.log.Debug().Str("role_id", roleID).Msg("service.role.create")
	return r.repo.Upsert(ctx, roleID, serverID, bitmask)
}

func (r *RoleService) Delete(ctx context.Context, roleID string) error {
	r.log.Debug().Str("role_id", roleID).Msg("service.role.delete")
	return r.repo.Delete(ctx, roleID)
}

func (r *RoleService) AssignMember(ctx context.Context, userID, roleID string) error {
	r.log.Debug().Str("role_id", roleID).Str("user_id", userID).Msg("service.role.assign_member")
	return r.repo.AssignMember(ctx, userID, roleID)
}

func (r *RoleService) RemoveMember(ctx context.Context, userID, roleID string) error {
	r.log.Debug().Str("role_id", roleID).Str("user_id", userID).Msg("service.role.remove_member")
	return r.repo.RemoveMember(ctx, userID, roleID)
}

// OverrideService is the facade's view of permission-override operations.
type OverrideService struct {
	repo *override.Repository
	log  zerolog.Logger
}

func (o *OverrideService) Create(ctx context.Context, overrideID, channelID string, bitmask uint64, isAllow bool, target *override.Target) error {
	o.log.Debug().Str("override_id", overrideID).Msg("service.override.create")
	return o.repo.Create(ctx, overrideID, channelID, bitmask, isAllow, target)
}

func (o *OverrideService) Delete(ctx context.Context, overrideID string) error {
	o.log.Debug().Str("override_id", overrideID).Msg("service.override.delete")
	return o.repo.Delete(ctx, overrideID)
}

// Service is the domain facade: one handle per entity kind.
type Service struct {
	Server   *ServerService
	Channel  *ChannelService
	Role     *RoleService
	Override *OverrideService
}

// New builds a Service over the four given repositories, each logging under
// component=service.<entity>.
func New(serverRepo *server.Repository, channelRepo *channel.Repository, roleRepo *role.Repository, overrideRepo *override.Repository, log zerolog.Logger) *Service {
	return &Service{
		Server:   &ServerService{repo: serverRepo, log: log.With().Str("component", "service.server").Logger()},
		Channel:  &ChannelService{repo: channelRepo, log: log.With().Str("component", "service.channel").Logger()},
		Role:     &RoleService{repo: roleRepo, log: log.With().Str("component", "service.role").Logger()},
		Override: &OverrideService{repo: overrideRepo, log: log.With().Str("component", "service.override").Logger()},
	}
}
