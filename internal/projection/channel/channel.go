// Package channel implements the channel projection repository (C4, spec
// §4.3.2): translating CreateChannel/DeleteChannel domain events into
// relation-store tuples.
package channel

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/beep-industries/authz-projector/internal/relstore"
	"github.com/beep-industries/authz-projector/internal/tuple"
)

// Error wraps a channel-projection failure, mirroring the Rust source's
// ChannelError::*{msg} enum-of-structs shape (spec §4.8/§7).
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Msg, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Repository projects channel lifecycle events into the relation store.
type Repository struct {
	store relstore.Client
	log   zerolog.Logger
}

// New returns a Repository backed by store.
func New(store relstore.Client, log zerolog.Logger) *Repository {
	return &Repository{store: store, log: log.With().Str("component", "projection.channel").Logger()}
}

// Create projects channel:<channelID>#server@server:<serverID> via a
// single create_relationship call (spec §4.3.2).
func (r *Repository) Create(ctx context.Context, channelID, serverID string) error {
	t := tuple.New("channel", channelID, "server", tuple.Subject("server", serverID))
	if err := r.store.CreateRelationship(ctx, t); err != nil {
		return &Error{Msg: "create channel", Err: err}
	}
	r.log.Info().Str("channel_id", channelID).Str("server_id", serverID).Msg("channel projected")
	return nil
}

// Delete removes every tuple whose resource is this channel (spec §4.3.2).
func (r *Repository) Delete(ctx context.Context, channelID string) error {
	filter := tuple.Filter{ResourceType: "channel", ResourceID: channelID}
	if err := r.store.FilteredDelete(ctx, filter); err != nil {
		return &Error{Msg: "delete channel", Err: err}
	}
	r.log.Info().Str("channel_id", channelID).Msg("channel de-projected")
	return nil
}
