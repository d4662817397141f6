// Package relstoretest provides an in-memory fake of relstore.Client for
// unit tests, grounded in the Rust source's hand-rolled Mock*Repository
// test doubles (_examples/original_source/core/src/domain/role/service.rs)
// which track call counts and the last input under a mutex rather than
// pulling in a mocking framework — the teacher's own tests use the same
// no-framework, hand-rolled-fake style (stdlib testing, no testify).
package relstoretest

import (
	"context"
	"fmt"
	"sync"

	"github.com/beep-industries/authz-projector/internal/tuple"
)

// Call records one write/delete/read invocation against the fake, in the
// order it was received, for assertions like "exactly these two
// filtered-deletes happened, in this order".
type Call struct {
	Method  string // "Create", "Touch", "Delete", "Write", "FilteredDelete", "Read"
	Updates []tuple.Update // populated for Write; a single-element Touch/Create/Delete for those methods
	Filter  *tuple.Filter  // populated for FilteredDelete/Read
}

// Fake is an in-memory relstore.Client. Tuples are stored in a slice rather
// than a set: duplicate CREATE/TOUCH of the same tuple coalesce exactly the
// way a real TOUCH would, but a bug that issues two conflicting writes is
// still observable via Calls.
type Fake struct {
	mu      sync.Mutex
	tuples  []tuple.Tuple
	Calls   []Call
	FailNext string // if set, the next call returns this as an error message and is cleared
}

// New returns an empty fake store.
func New() *Fake {
	return &Fake{}
}

func (f *Fake) takeFailure() error {
	if f.FailNext == "" {
		return nil
	}
	err := fmt.Errorf("%s", f.FailNext)
	f.FailNext = ""
	return err
}

func (f *Fake) CreateRelationship(_ context.Context, t tuple.Tuple) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "Create", Updates: []tuple.Update{tuple.Create(t)}})
	if err := f.takeFailure(); err != nil {
		return err
	}
	f.upsertLocked(t)
	return nil
}

func (f *Fake) TouchRelationship(_ context.Context, t tuple.Tuple) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "Touch", Updates: []tuple.Update{tuple.Touch(t)}})
	if err := f.takeFailure(); err != nil {
		return err
	}
	f.upsertLocked(t)
	return nil
}

func (f *Fake) DeleteRelationship(_ context.Context, t tuple.Tuple) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "Delete", Updates: []tuple.Update{tuple.Delete(t)}})
	if err := f.takeFailure(); err != nil {
		return err
	}
	f.removeLocked(func(existing tuple.Tuple) bool { return existing == t })
	return nil
}

func (f *Fake) WriteRelationships(_ context.Context, updates []tuple.Update) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Method: "Write", Updates: updates})
	if err := f.takeFailure(); err != nil {
		return err
	}
	for _, u := range updates {
		switch u.Op {
		case tuple.OpCreate, tuple.OpTouch:
			f.upsertLocked(u.Tuple)
		case tuple.OpDelete:
			t := u.Tuple
			f.removeLocked(func(existing tuple.Tuple) bool { return existing == t })
		}
	}
	return nil
}

func (f *Fake) FilteredDelete(_ context.Context, filter tuple.Filter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ff := filter
	f.Calls = append(f.Calls, Call{Method: "FilteredDelete", Filter: &ff})
	if err := f.takeFailure(); err != nil {
		return err
	}
	f.removeLocked(func(existing tuple.Tuple) bool { return matches(existing, filter) })
	return nil
}

func (f *Fake) ReadRelationships(_ context.Context, filter tuple.Filter) ([]tuple.Tuple, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ff := filter
	f.Calls = append(f.Calls, Call{Method: "Read", Filter: &ff})
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	var out []tuple.Tuple
	for _, t := range f.tuples {
		if matches(t, filter) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Tuples returns a snapshot of every tuple currently held, for assertions
// against the end state of a test scenario.
func (f *Fake) Tuples() []tuple.Tuple {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]tuple.Tuple, len(f.tuples))
	copy(out, f.tuples)
	return out
}

// Has reports whether t is currently present.
func (f *Fake) Has(t tuple.Tuple) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tuples {
		if existing == t {
			return true
		}
	}
	return false
}

func (f *Fake) upsertLocked(t tuple.Tuple) {
	for _, existing := range f.tuples {
		if existing == t {
			return
		}
	}
	f.tuples = append(f.tuples, t)
}

func (f *Fake) removeLocked(match func(tuple.Tuple) bool) {
	kept := f.tuples[:0]
	for _, existing := range f.tuples {
		if !match(existing) {
			kept = append(kept, existing)
		}
	}
	f.tuples = kept
}

func matches(t tuple.Tuple, filter tuple.Filter) bool {
	if filter.ResourceType != "" && t.Resource.Type != filter.ResourceType {
		return false
	}
	if filter.ResourceID != "" && t.Resource.ID != filter.ResourceID {
		return false
	}
	if filter.Relation != "" && t.Relation != filter.Relation {
		return false
	}
	if filter.Subject != nil {
		sf := filter.Subject
		if sf.SubjectType != "" && t.Subject.Object.Type != sf.SubjectType {
			return false
		}
		if sf.SubjectID != "" && t.Subject.Object.ID != sf.SubjectID {
			return false
		}
		if sf.Relation != "" && t.Subject.Relation != sf.Relation {
			return false
		}
	}
	return true
}
