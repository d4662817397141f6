// Package role implements the role projection repository (C4, spec
// §4.3.3) — the non-trivial case: role permission upserts are
// replacement-semantic (I4), implemented as a filtered-delete-then-bulk-
// touch rather than a diff, because the relation store offers a
// single-call filtered delete and the bitmask set is always small.
package role

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/beep-industries/authz-projector/internal/catalog"
	"github.com/beep-industries/authz-projector/internal/relstore"
	"github.com/beep-industries/authz-projector/internal/tuple"
)

// Error wraps a role-projection failure, mirroring the Rust source's
// RoleError::*{msg} enum-of-structs shape (spec §4.8/§7).
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Msg, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

func membershipFilter(roleID string) tuple.Filter {
	return tuple.Filter{
		ResourceType: "server",
		Subject: &tuple.SubjectFilter{
			SubjectType: "role",
			SubjectID:   roleID,
			Relation:    "member",
		},
	}
}

// Repository projects role lifecycle and membership events into the
// relation store.
type Repository struct {
	store relstore.Client
	log   zerolog.Logger
}

// New returns a Repository backed by store.
func New(store relstore.Client, log zerolog.Logger) *Repository {
	return &Repository{store: store, log: log.With().Str("component", "projection.role").Logger()}
}

// Upsert replaces the server-scope permission tuples projected from this
// role with exactly the set derived from bitmask (I4), regardless of
// whether the role previously existed.
func (r *Repository) Upsert(ctx context.Context, roleID, serverID string, bitmask uint64) error {
	// 1. Replace step: drop every existing tuple this role projected as a
	// server-scope member, so a shrinking bitmask doesn't leave stragglers.
	if err := r.store.FilteredDelete(ctx, membershipFilter(roleID)); err != nil {
		return &Error{Msg: "clear existing role permissions", Err: err}
	}

	// 2. Build the replacement batch.
	roleTuple := tuple.New("role", roleID, "server", tuple.Subject("server", serverID))
	batch := []tuple.Update{tuple.Touch(roleTuple)}

	for _, display := range catalog.ParseBitmask(bitmask) {
		relation, ok := catalog.ServerRelation(display)
		if !ok {
			r.log.Warn().Str("role_id", roleID).Str("permission", display).Msg("unknown permission name, dropping")
			continue
		}
		batch = append(batch, tuple.Touch(tuple.New("server", serverID, relation, tuple.SubjectWithRelation("role", roleID, "member"))))
	}

	// 3 & 4. A single write_relationships call covers both cases: when the
	// batch holds only the base role#server tuple (no valid bits set) it
	// degrades to exactly the touch_relationship call spec §4.3.3 step 4
	// asks for.
	if err := r.store.WriteRelationships(ctx, batch); err != nil {
		return &Error{Msg: "write role permissions", Err: err}
	}

	r.log.Info().Str("role_id", roleID).Str("server_id", serverID).Uint64("bitmask", bitmask).Msg("role projected")
	return nil
}

// Delete removes role-as-resource tuples and the server-scope permission
// tuples this role projected.
func (r *Repository) Delete(ctx context.Context, roleID string) error {
	if err := r.store.FilteredDelete(ctx, tuple.Filter{ResourceType: "role", ResourceID: roleID}); err != nil {
		return &Error{Msg: "delete role resource tuples", Err: err}
	}
	if err := r.store.FilteredDelete(ctx, membershipFilter(roleID)); err != nil {
		return &Error{Msg: "delete role permission tuples", Err: err}
	}
	r.log.Info().Str("role_id", roleID).Msg("role de-projected")
	return nil
}

// AssignMember grants userID membership in roleID.
func (r *Repository) AssignMember(ctx context.Context, userID, roleID string) error {
	t := tuple.New("role", roleID, "member", tuple.Subject("user", userID))
	if err := r.store.CreateRelationship(ctx, t); err != nil {
		return &Error{Msg: "assign member to role", Err: err}
	}
	r.log.Info().Str("role_id", roleID).Str("user_id", userID).Msg("member assigned")
	return nil
}

// RemoveMember revokes userID's membership in roleID.
func (r *Repository) RemoveMember(ctx context.Context, userID, roleID string) error {
	t := tuple.New("role", roleID, "member", tuple.Subject("user", userID))
	if err := r.store.DeleteRelationship(ctx, t); err != nil {
		return &Error{Msg: "remove member from role", Err: err}
	}
	r.log.Info().Str("role_id", roleID).Str("user_id", userID).Msg("member removed")
	return nil
}
