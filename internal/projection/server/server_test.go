package server

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/beep-industries/authz-projector/internal/relstore/relstoretest"
	"github.com/beep-industries/authz-projector/internal/tuple"
)

func TestCreateProjectsOwnerTuple(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	repo := New(store, zerolog.Nop())

	if err := repo.Create(context.Background(), "srv_1", "user_1"); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	want := tuple.New("server", "srv_1", "owner", tuple.Subject("user", "user_1"))
	if !store.Has(want) {
		t.Errorf("expected tuple %+v to be present", want)
	}
}

func TestDeleteOnlyRemovesServerAsResource(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	repo := New(store, zerolog.Nop())

	ownerTuple := tuple.New("server", "srv_1", "owner", tuple.Subject("user", "user_1"))
	channelTuple := tuple.New("channel", "chan_1", "server", tuple.Subject("server", "srv_1"))
	if err := store.WriteRelationships(context.Background(), []tuple.Update{
		tuple.Touch(ownerTuple),
		tuple.Touch(channelTuple),
	}); err != nil {
		t.Fatalf("seed write failed: %v", err)
	}

	if err := repo.Delete(context.Background(), "srv_1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if store.Has(ownerTuple) {
		t.Error("expected server#owner tuple to be removed")
	}
	if !store.Has(channelTuple) {
		t.Error("expected channel#server@server tuple to survive — server delete does not cascade")
	}
}

func TestCreateWrapsStoreFailure(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	store.FailNext = "boom"
	repo := New(store, zerolog.Nop())

	err := repo.Create(context.Background(), "srv_1", "user_1")
	if err == nil {
		t.Fatal("expected error")
	}
	var projErr *Error
	if !errors.As(err, &projErr) {
		t.Fatalf("expected *server.Error, got %T", err)
	}
}
