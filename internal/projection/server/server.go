// Package server implements the server projection repository (C4, spec
// §4.3.1): translating CreateServer/DeleteServer domain events into
// relation-store tuples.
package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/beep-industries/authz-projector/internal/relstore"
	"github.com/beep-industries/authz-projector/internal/tuple"
)

// Error wraps a server-projection failure with a short message, mirroring
// the Rust source's ServerError::CreateServerError{msg}/DeleteServerError{msg}
// enum-of-structs shape (spec §4.8/§7).
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Msg, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Repository projects server lifecycle events into the relation store.
type Repository struct {
	store relstore.Client
	log   zerolog.Logger
}

// New returns a Repository backed by store, logging under the
// component=projection.server field.
func New(store relstore.Client, log zerolog.Logger) *Repository {
	return &Repository{store: store, log: log.With().Str("component", "projection.server").Logger()}
}

// Create projects server:<serverID>#owner@user:<ownerID> via a single
// create_relationship call (spec §4.3.1).
func (r *Repository) Create(ctx context.Context, serverID, ownerID string) error {
	t := tuple.New("server", serverID, "owner", tuple.Subject("user", ownerID))
	if err := r.store.CreateRelationship(ctx, t); err != nil {
		return &Error{Msg: "create server", Err: err}
	}
	r.log.Info().Str("server_id", serverID).Str("owner_id", ownerID).Msg("server projected")
	return nil
}

// Delete removes every tuple whose RESOURCE is this server. Tuples that
// reference the server as subject (e.g. channel:C#server@server:S) are
// left intact: per spec §4.3.1/§9 this intentionally does not cascade —
// channel and role deletion are expected to arrive as their own events.
func (r *Repository) Delete(ctx context.Context, serverID string) error {
	filter := tuple.Filter{ResourceType: "server", ResourceID: serverID}
	if err := r.store.FilteredDelete(ctx, filter); err != nil {
		return &Error{Msg: "delete server", Err: err}
	}
	r.log.Info().Str("server_id", serverID).Msg("server de-projected")
	return nil
}
