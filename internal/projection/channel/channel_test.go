package channel

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/beep-industries/authz-projector/internal/relstore/relstoretest"
	"github.com/beep-industries/authz-projector/internal/tuple"
)

func TestCreateProjectsServerTuple(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	repo := New(store, zerolog.Nop())

	if err := repo.Create(context.Background(), "chan_1", "srv_1"); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	want := tuple.New("channel", "chan_1", "server", tuple.Subject("server", "srv_1"))
	if !store.Has(want) {
		t.Errorf("expected tuple %+v to be present", want)
	}
}

func TestDeleteRemovesChannelAsResource(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	repo := New(store, zerolog.Nop())

	channelTuple := tuple.New("channel", "chan_1", "server", tuple.Subject("server", "srv_1"))
	viewTuple := tuple.New("channel", "chan_1", "view_channel_grant", tuple.SubjectWithRelation("permission_override", "ov1", "granted_to"))
	if err := store.WriteRelationships(context.Background(), []tuple.Update{
		tuple.Touch(channelTuple),
		tuple.Touch(viewTuple),
	}); err != nil {
		t.Fatalf("seed write failed: %v", err)
	}

	if err := repo.Delete(context.Background(), "chan_1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if store.Has(channelTuple) || store.Has(viewTuple) {
		t.Error("expected every tuple with channel:chan_1 as resource to be removed")
	}
}
