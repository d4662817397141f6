package handlers

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	eventsv1 "github.com/beep-industries/authz-events/eventsv1"

	"github.com/beep-industries/authz-projector/internal/authzsvc"
	"github.com/beep-industries/authz-projector/internal/projection/channel"
	"github.com/beep-industries/authz-projector/internal/projection/override"
	"github.com/beep-industries/authz-projector/internal/projection/role"
	"github.com/beep-industries/authz-projector/internal/projection/server"
	"github.com/beep-industries/authz-projector/internal/relstore/relstoretest"
	"github.com/beep-industries/authz-projector/internal/tuple"
)

func newTestHandlers(store *relstoretest.Fake) *Handlers {
	log := zerolog.Nop()
	svc := authzsvc.New(
		server.New(store, log),
		channel.New(store, log),
		role.New(store, log),
		override.New(store, log),
		log,
	)
	return New(svc, log)
}

func TestCreateServerProjectsOwnerTuple(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	h := newTestHandlers(store)

	err := h.CreateServer(context.Background(), &eventsv1.CreateServer{ServerId: "srv_1", OwnerId: "user_1"})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	want := tuple.New("server", "srv_1", "owner", tuple.Subject("user", "user_1"))
	if !store.Has(want) {
		t.Errorf("expected tuple %+v", want)
	}
}

func TestHandlerNeverPropagatesRepositoryErrors(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	store.FailNext = "relation store unavailable"
	h := newTestHandlers(store)

	err := h.CreateServer(context.Background(), &eventsv1.CreateServer{ServerId: "srv_1", OwnerId: "user_1"})
	if err != nil {
		t.Fatalf("handler must swallow repository errors and return nil, got %v", err)
	}
}

func TestUpsertPermissionOverrideWithUserTarget(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	h := newTestHandlers(store)

	evt := &eventsv1.UpsertPermissionOverride{
		OverrideId:        "ov1",
		ChannelId:         "c1",
		PermissionBitmask: 0xC0,
		Action:            eventsv1.OverrideAction_OVERRIDE_ACTION_ALLOW,
		Target:            &eventsv1.UpsertPermissionOverride_UserId{UserId: "u1"},
	}

	if err := h.UpsertPermissionOverride(context.Background(), evt); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	want := tuple.New("permission_override", "ov1", "granted_to", tuple.Subject("user", "u1"))
	if !store.Has(want) {
		t.Errorf("expected tuple %+v", want)
	}
}

func TestUpsertPermissionOverrideWithNoTargetIsSemanticDrop(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	h := newTestHandlers(store)

	evt := &eventsv1.UpsertPermissionOverride{
		OverrideId:        "ov2",
		ChannelId:         "c1",
		PermissionBitmask: 0x40,
		Action:            eventsv1.OverrideAction_OVERRIDE_ACTION_ALLOW,
	}

	if err := h.UpsertPermissionOverride(context.Background(), evt); err != nil {
		t.Fatalf("expected nil error for a semantic drop, got %v", err)
	}
	if len(store.Tuples()) != 0 {
		t.Errorf("expected no tuples written for a targetless override, got %d", len(store.Tuples()))
	}
}

func TestDeletePermissionOverrideUsesOnlyOverrideID(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	h := newTestHandlers(store)

	seed := tuple.New("permission_override", "ov1", "channel", tuple.Subject("channel", "c1"))
	if err := store.CreateRelationship(context.Background(), seed); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := h.DeletePermissionOverride(context.Background(), &eventsv1.DeletePermissionOverride{OverrideId: "ov1"}); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if store.Has(seed) {
		t.Error("expected override tuple to be removed")
	}
}
