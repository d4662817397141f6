// Package override implements the permission-override projection
// repository (C4, spec §4.3.4). A permission override factors a per-channel
// grant or deny into the relation graph through an intermediary
// permission_override:<id> object (I6, spec §9) rather than writing
// per-permission tuples straight to the target, so checks remain relation
// traversals instead of bitmask arithmetic.
package override

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/beep-industries/authz-projector/internal/catalog"
	"github.com/beep-industries/authz-projector/internal/relstore"
	"github.com/beep-industries/authz-projector/internal/tuple"
)

// Error wraps a permission-override projection failure, mirroring the Rust
// source's PermissionOverrideError::*{msg} enum-of-structs shape (spec
// §4.8/§7).
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Msg, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// TargetKind distinguishes the two members of the override target oneof.
type TargetKind int

const (
	TargetUser TargetKind = iota
	TargetRole
)

// Target is the subject an override applies to: either a user directly, or
// every member of a role.
type Target struct {
	Kind TargetKind
	ID   string
}

// subject returns the SubjectRef for this target: a bare user:<id>, or
// role:<id>#member.
func (t Target) subject() tuple.SubjectRef {
	if t.Kind == TargetRole {
		return tuple.SubjectWithRelation("role", t.ID, "member")
	}
	return tuple.Subject("user", t.ID)
}

// Repository projects permission-override lifecycle events into the
// relation store.
type Repository struct {
	store relstore.Client
	log   zerolog.Logger
}

// New returns a Repository backed by store.
func New(store relstore.Client, log zerolog.Logger) *Repository {
	return &Repository{store: store, log: log.With().Str("component", "projection.override").Logger()}
}

func directionRelation(isAllow bool) string {
	if isAllow {
		return "granted_to"
	}
	return "denied_to"
}

// Create projects overrideID's channel link, its grant/deny direction to
// target, and one channel tuple per channel-scope bit set in bitmask.
// target == nil means the event carried no oneof target: a semantic drop,
// logged and returned as nil error per spec §7's "semantic drops" taxonomy
// — the delivery is well-formed and intentionally a no-op.
func (r *Repository) Create(ctx context.Context, overrideID, channelID string, bitmask uint64, isAllow bool, target *Target) error {
	if target == nil {
		r.log.Warn().Str("override_id", overrideID).Msg("permission override event carried no target, dropping")
		return nil
	}

	channelLink := tuple.New("permission_override", overrideID, "channel", tuple.Subject("channel", channelID))
	if err := r.store.CreateRelationship(ctx, channelLink); err != nil {
		return &Error{Msg: "link override to channel", Err: err}
	}

	direction := directionRelation(isAllow)
	directionTuple := tuple.New("permission_override", overrideID, direction, target.subject())
	if err := r.store.CreateRelationship(ctx, directionTuple); err != nil {
		return &Error{Msg: "link override to target", Err: err}
	}

	overrideSubject := tuple.SubjectWithRelation("permission_override", overrideID, direction)

	var batch []tuple.Update
	for _, display := range catalog.ParseBitmask(bitmask) {
		relation, ok := catalog.ChannelRelation(display, isAllow)
		if !ok {
			r.log.Warn().Str("override_id", overrideID).Str("permission", display).Msg("non-channel-scope bit in override bitmask, dropping")
			continue
		}
		batch = append(batch, tuple.Create(tuple.New("channel", channelID, relation, overrideSubject)))
	}

	if len(batch) == 0 {
		r.log.Warn().Str("override_id", overrideID).Msg("no channel-scope bits set, no channel tuples written")
		return nil
	}

	if err := r.store.WriteRelationships(ctx, batch); err != nil {
		return &Error{Msg: "write override channel tuples", Err: err}
	}

	r.log.Info().Str("override_id", overrideID).Str("channel_id", channelID).Bool("is_allow", isAllow).Msg("permission override projected")
	return nil
}

// Delete removes every tuple containing permission_override:<overrideID>
// in either position, using only filtered deletes: this stays correct even
// if an in-memory parameter cache (not used here; see DESIGN.md) is empty
// after a restart (spec §9 restart-safety).
func (r *Repository) Delete(ctx context.Context, overrideID string) error {
	if err := r.store.FilteredDelete(ctx, tuple.Filter{
		ResourceType: "permission_override",
		ResourceID:   overrideID,
	}); err != nil {
		return &Error{Msg: "delete override resource tuples", Err: err}
	}

	if err := r.store.FilteredDelete(ctx, tuple.Filter{
		ResourceType: "channel",
		Subject: &tuple.SubjectFilter{
			SubjectType: "permission_override",
			SubjectID:   overrideID,
		},
	}); err != nil {
		return &Error{Msg: "delete override channel tuples", Err: err}
	}

	r.log.Info().Str("override_id", overrideID).Msg("permission override de-projected")
	return nil
}
