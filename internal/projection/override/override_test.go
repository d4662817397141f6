package override

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/beep-industries/authz-projector/internal/relstore/relstoretest"
	"github.com/beep-industries/authz-projector/internal/tuple"
)

// TestCreateGrantOnUser pins spec §8 scenario 3.
func TestCreateGrantOnUser(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	repo := New(store, zerolog.Nop())

	target := &Target{Kind: TargetUser, ID: "u1"}
	if err := repo.Create(context.Background(), "ov1", "c1", 0xC0, true, target); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	want := []tuple.Tuple{
		tuple.New("permission_override", "ov1", "channel", tuple.Subject("channel", "c1")),
		tuple.New("permission_override", "ov1", "granted_to", tuple.Subject("user", "u1")),
		tuple.New("channel", "c1", "view_channel_grant", tuple.SubjectWithRelation("permission_override", "ov1", "granted_to")),
		tuple.New("channel", "c1", "send_message_grant", tuple.SubjectWithRelation("permission_override", "ov1", "granted_to")),
	}
	for _, tt := range want {
		if !store.Has(tt) {
			t.Errorf("expected tuple %+v", tt)
		}
	}
}

// TestCreateDenyOnRoleWithMixedBits pins spec §8 scenario 4: bitmask 0x83 is
// admin|manage|send_message — only send_message is channel-scope, the other
// two are dropped with a warning.
func TestCreateDenyOnRoleWithMixedBits(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	repo := New(store, zerolog.Nop())

	target := &Target{Kind: TargetRole, ID: "rolX"}
	if err := repo.Create(context.Background(), "ovN", "c1", 0x83, false, target); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	deniedTo := tuple.New("permission_override", "ovN", "denied_to", tuple.SubjectWithRelation("role", "rolX", "member"))
	if !store.Has(deniedTo) {
		t.Errorf("expected %+v", deniedTo)
	}

	sendMessageDeny := tuple.New("channel", "c1", "send_message_deny", tuple.SubjectWithRelation("permission_override", "ovN", "denied_to"))
	if !store.Has(sendMessageDeny) {
		t.Errorf("expected %+v", sendMessageDeny)
	}

	var channelTuples int
	for _, tt := range store.Tuples() {
		if tt.Resource.Type == "channel" {
			channelTuples++
		}
	}
	if channelTuples != 1 {
		t.Errorf("expected exactly one channel tuple, got %d", channelTuples)
	}
}

func TestCreateWithNoTargetIsSemanticDrop(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	repo := New(store, zerolog.Nop())

	if err := repo.Create(context.Background(), "ov2", "c1", 0x40, true, nil); err != nil {
		t.Fatalf("expected nil error for a semantic drop, got %v", err)
	}
	if len(store.Tuples()) != 0 {
		t.Errorf("expected no tuples written, got %d", len(store.Tuples()))
	}
}

func TestCreateWithNoChannelScopeBitsWritesNoChannelTuples(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	repo := New(store, zerolog.Nop())

	target := &Target{Kind: TargetUser, ID: "u1"}
	if err := repo.Create(context.Background(), "ov3", "c1", 0x1, true, target); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	for _, tt := range store.Tuples() {
		if tt.Resource.Type == "channel" {
			t.Errorf("expected no channel tuples, found %+v", tt)
		}
	}
}

// TestDeleteTotality pins P6: after create then delete, both filtered
// deletes together remove every tuple containing permission_override:O in
// either position.
func TestDeleteTotality(t *testing.T) {
	t.Parallel()

	store := relstoretest.New()
	repo := New(store, zerolog.Nop())
	ctx := context.Background()

	target := &Target{Kind: TargetUser, ID: "u1"}
	if err := repo.Create(ctx, "ov1", "c1", 0xC0, true, target); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(store.Tuples()) == 0 {
		t.Fatal("expected tuples after create")
	}

	if err := repo.Delete(ctx, "ov1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	for _, tt := range store.Tuples() {
		if tt.Resource.Type == "permission_override" && tt.Resource.ID == "ov1" {
			t.Errorf("unexpected surviving override-resource tuple: %+v", tt)
		}
		if tt.Subject.Object.Type == "permission_override" && tt.Subject.Object.ID == "ov1" {
			t.Errorf("unexpected surviving override-subject tuple: %+v", tt)
		}
	}
}
