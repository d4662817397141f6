// Package relstore wraps the SpiceDB/AuthZed-compatible relation store (C3)
// behind a small surface the projection repositories depend on: connect,
// single-tuple create/touch/delete, bulk write, filtered delete, and
// filtered read. It translates internal/tuple values into authzed-go's
// protobuf request/response types and back.
package relstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	authzed "github.com/authzed/authzed-go/v1"
	"github.com/authzed/grpcutil"
	pb "github.com/authzed/authzed-go/proto/authzed/api/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/beep-industries/authz-projector/internal/tuple"
)

// Client is the relation-store contract the projection repositories depend
// on. relstore.Dial returns the concrete authzed-go-backed implementation;
// relstoretest provides an in-memory fake of the same interface for tests.
type Client interface {
	CreateRelationship(ctx context.Context, t tuple.Tuple) error
	TouchRelationship(ctx context.Context, t tuple.Tuple) error
	DeleteRelationship(ctx context.Context, t tuple.Tuple) error
	WriteRelationships(ctx context.Context, updates []tuple.Update) error
	FilteredDelete(ctx context.Context, filter tuple.Filter) error
	ReadRelationships(ctx context.Context, filter tuple.Filter) ([]tuple.Tuple, error)
}

// authzedClient is the Client implementation backed by a real authzed-go
// gRPC connection.
type authzedClient struct {
	perms *authzed.Client
}

// Dial connects to a relation store at endpoint. If endpoint lacks a
// scheme, "http://" is prepended, matching spec §4.2. If bearerToken is
// non-empty, every outgoing request carries an authorization: Bearer
// header. Independently of the token, insecureTransport selects plaintext
// (insecure) transport credentials, suitable for a local/dev SpiceDB
// instance (see --authzed-insecure in SPEC_FULL.md §6.3). When
// insecureTransport is false no transport credentials are added: Dial does
// not configure TLS.
func Dial(endpoint, bearerToken string, insecureTransport bool) (Client, error) {
	normalized := endpoint
	if !strings.Contains(normalized, "://") {
		normalized = "http://" + normalized
	}

	var opts []grpc.DialOption
	if bearerToken != "" {
		opts = append(opts, grpcutil.WithInsecureBearerToken(bearerToken))
	}
	if insecureTransport {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	client, err := authzed.NewClient(normalized, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect relation store at %s: %w", normalized, err)
	}
	return &authzedClient{perms: client}, nil
}

func (c *authzedClient) CreateRelationship(ctx context.Context, t tuple.Tuple) error {
	return c.WriteRelationships(ctx, []tuple.Update{tuple.Create(t)})
}

func (c *authzedClient) TouchRelationship(ctx context.Context, t tuple.Tuple) error {
	return c.WriteRelationships(ctx, []tuple.Update{tuple.Touch(t)})
}

func (c *authzedClient) DeleteRelationship(ctx context.Context, t tuple.Tuple) error {
	return c.WriteRelationships(ctx, []tuple.Update{tuple.Delete(t)})
}

// WriteRelationships submits updates as a single atomic batch, preferred
// over N single writes wherever the caller has more than one update ready
// (spec §4.2 contract note; used by role upsert and multi-permission
// override creation).
func (c *authzedClient) WriteRelationships(ctx context.Context, updates []tuple.Update) error {
	if len(updates) == 0 {
		return nil
	}

	pbUpdates := make([]*pb.RelationshipUpdate, 0, len(updates))
	for _, u := range updates {
		pbUpdates = append(pbUpdates, toPBUpdate(u))
	}

	_, err := c.perms.WriteRelationships(ctx, &pb.WriteRelationshipsRequest{Updates: pbUpdates})
	if err != nil {
		return fmt.Errorf("write relationships: %w", err)
	}
	return nil
}

func (c *authzedClient) FilteredDelete(ctx context.Context, filter tuple.Filter) error {
	_, err := c.perms.DeleteRelationships(ctx, &pb.DeleteRelationshipsRequest{
		RelationshipFilter: toPBFilter(filter),
	})
	if err != nil {
		return fmt.Errorf("filtered delete: %w", err)
	}
	return nil
}

// ReadRelationships streams every tuple matching filter and collects it
// into a slice; the relation store paginates internally, the caller sees a
// single call (spec §4.2: "server streams, consumer collects fully").
func (c *authzedClient) ReadRelationships(ctx context.Context, filter tuple.Filter) ([]tuple.Tuple, error) {
	stream, err := c.perms.ReadRelationships(ctx, &pb.ReadRelationshipsRequest{
		RelationshipFilter: toPBFilter(filter),
	})
	if err != nil {
		return nil, fmt.Errorf("read relationships: %w", err)
	}

	var results []tuple.Tuple
	for {
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read relationships stream: %w", err)
		}
		results = append(results, fromPBRelationship(resp.Relationship))
	}
	return results, nil
}

func toPBUpdate(u tuple.Update) *pb.RelationshipUpdate {
	var op pb.RelationshipUpdate_Operation
	switch u.Op {
	case tuple.OpCreate:
		op = pb.RelationshipUpdate_OPERATION_CREATE
	case tuple.OpTouch:
		op = pb.RelationshipUpdate_OPERATION_TOUCH
	case tuple.OpDelete:
		op = pb.RelationshipUpdate_OPERATION_DELETE
	}
	return &pb.RelationshipUpdate{
		Operation:    op,
		Relationship: toPBRelationship(u.Tuple),
	}
}

func toPBRelationship(t tuple.Tuple) *pb.Relationship {
	return &pb.Relationship{
		Resource: toPBObjectRef(t.Resource),
		Relation: t.Relation,
		Subject:  toPBSubjectRef(t.Subject),
	}
}

func toPBObjectRef(o tuple.ObjectRef) *pb.ObjectReference {
	return &pb.ObjectReference{ObjectType: o.Type, ObjectId: o.ID}
}

func toPBSubjectRef(s tuple.SubjectRef) *pb.SubjectReference {
	return &pb.SubjectReference{
		Object:           toPBObjectRef(s.Object),
		OptionalRelation: s.Relation,
	}
}

func toPBFilter(f tuple.Filter) *pb.RelationshipFilter {
	pbf := &pb.RelationshipFilter{
		ResourceType:       f.ResourceType,
		OptionalResourceId: f.ResourceID,
		OptionalRelation:   f.Relation,
	}
	if f.Subject != nil {
		pbf.OptionalSubjectFilter = &pb.SubjectFilter{
			SubjectType:       f.Subject.SubjectType,
			OptionalSubjectId: f.Subject.SubjectID,
		}
		if f.Subject.Relation != "" {
			pbf.OptionalSubjectFilter.OptionalRelation = &pb.SubjectFilter_RelationFilter{
				Relation: f.Subject.Relation,
			}
		}
	}
	return pbf
}

func fromPBRelationship(r *pb.Relationship) tuple.Tuple {
	t := tuple.Tuple{
		Resource: tuple.ObjectRef{Type: r.Resource.ObjectType, ID: r.Resource.ObjectId},
		Relation: r.Relation,
		Subject: tuple.SubjectRef{
			Object: tuple.ObjectRef{Type: r.Subject.Object.ObjectType, ID: r.Subject.Object.ObjectId},
		},
	}
	if r.Subject.OptionalRelation != "" {
		t.Subject.Relation = r.Subject.OptionalRelation
	}
	return t
}
