// Package tuple defines the relation-tuple model used throughout the
// projector (C2, spec §3.3): object/subject references, tuples, the update
// operations applied to them, and the filters used for bulk reads/deletes.
// It has no dependency on the relation-store wire format; internal/relstore
// is responsible for translating these into authzed-go's protobuf types.
package tuple

// Op is the operation applied to a tuple in a write batch.
type Op int

const (
	// OpCreate fails if the tuple already exists.
	OpCreate Op = iota + 1
	// OpTouch upserts the tuple, succeeding whether or not it already exists.
	OpTouch
	// OpDelete removes the exact tuple.
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "CREATE"
	case OpTouch:
		return "TOUCH"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// ObjectRef identifies a resource or subject object by its type and id.
type ObjectRef struct {
	Type string
	ID   string
}

// SubjectRef identifies the subject of a tuple: an object, optionally
// narrowed to one of that object's relations (e.g. "role:r1#member" rather
// than bare "role:r1").
type SubjectRef struct {
	Object   ObjectRef
	Relation string // optional; "" means the bare object
}

// Subject builds a SubjectRef with no relation narrowing.
func Subject(objectType, objectID string) SubjectRef {
	return SubjectRef{Object: ObjectRef{Type: objectType, ID: objectID}}
}

// SubjectWithRelation builds a SubjectRef narrowed to a subject relation,
// e.g. SubjectWithRelation("role", roleID, "member") for "role:r1#member".
func SubjectWithRelation(objectType, objectID, relation string) SubjectRef {
	return SubjectRef{Object: ObjectRef{Type: objectType, ID: objectID}, Relation: relation}
}

// Tuple is a single relationship: resource#relation@subject.
type Tuple struct {
	Resource ObjectRef
	Relation string
	Subject  SubjectRef
}

// New builds a Tuple with a bare-object resource.
func New(resourceType, resourceID, relation string, subject SubjectRef) Tuple {
	return Tuple{
		Resource: ObjectRef{Type: resourceType, ID: resourceID},
		Relation: relation,
		Subject:  subject,
	}
}

// Update pairs a tuple with the operation to apply to it in a batch write.
type Update struct {
	Op    Op
	Tuple Tuple
}

// Touch builds an Update with OpTouch.
func Touch(t Tuple) Update { return Update{Op: OpTouch, Tuple: t} }

// Create builds an Update with OpCreate.
func Create(t Tuple) Update { return Update{Op: OpCreate, Tuple: t} }

// Delete builds an Update with OpDelete.
func Delete(t Tuple) Update { return Update{Op: OpDelete, Tuple: t} }

// SubjectFilter narrows a Filter to tuples whose subject matches.
type SubjectFilter struct {
	SubjectType string
	SubjectID   string // optional; "" means any id
	Relation    string // optional; "" means any relation
}

// Filter targets a resource type with optional resource id, optional
// relation, and an optional subject filter. Used by filtered_delete and
// read_relationships.
type Filter struct {
	ResourceType string
	ResourceID   string // optional; "" means any id
	Relation     string // optional; "" means any relation
	Subject      *SubjectFilter
}
