// Package consumer implements the type-erased consumer pool (C6, spec
// §4.5): a registry from queue name to a (message type, handler) pair,
// where the handler is invoked once per decoded delivery and the registry
// itself stays ignorant of which concrete message type each queue carries.
//
// Grounded on _examples/original_source/listeners/src/rabbit/consumers/pool.rs's
// ConsumerSpawner<S> trait + TypedConsumerSpawner<S,M,H> + Consumers<S>
// registry. Rust erases the concrete (S,M) type pair behind a trait object
// (`Box<dyn ConsumerSpawner<S>>`) with PhantomData carrying the type
// parameters; Go has no trait objects, but it has first-class generics and
// interfaces, so the same erasure falls out of a generic typedSpawner[M]
// satisfying a non-generic Spawner interface — one instantiation per
// registered queue, stored behind the common interface.
package consumer

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/proto"

	"github.com/beep-industries/authz-projector/internal/broker"
)

// Consumer is the subset of *broker.Conn the pool needs: it is an interface
// rather than a concrete type so tests can substitute a fake broker.
type Consumer interface {
	Consume(queueName string) (<-chan amqp.Delivery, error)
}

var _ Consumer = (*broker.Conn)(nil)

// Spawner is the type-erased capability each registered queue exposes: it
// knows its own queue name and how to run its consume loop, without the
// registry needing to know its message type.
type Spawner interface {
	QueueName() string
	Spawn(ctx context.Context, conn Consumer, log zerolog.Logger) error
}

// Handler processes one decoded message. Handlers are expected to log and
// return nil on internal failure rather than propagate (spec §7): once a
// payload has decoded, the pool's ack discipline treats a non-nil return
// as the only no-ack case (an undecodable payload is never acked either).
type Handler[M proto.Message] func(ctx context.Context, msg M) error

type typedSpawner[M proto.Message] struct {
	queueName  string
	newMessage func() M
	handler    Handler[M]
}

func (s *typedSpawner[M]) QueueName() string { return s.queueName }

func (s *typedSpawner[M]) Spawn(ctx context.Context, conn Consumer, log zerolog.Logger) error {
	deliveries, err := conn.Consume(s.queueName)
	if err != nil {
		return fmt.Errorf("open consumer for queue %s: %w", s.queueName, err)
	}

	log = log.With().Str("queue", s.queueName).Logger()
	log.Info().Msg("consumer started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("consumer stopping, context cancelled")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				log.Warn().Msg("delivery channel closed, consumer stopping")
				return nil
			}
			s.handleOne(ctx, d, log)
		}
	}
}

func (s *typedSpawner[M]) handleOne(ctx context.Context, d amqp.Delivery, log zerolog.Logger) {
	msg := s.newMessage()
	if err := proto.Unmarshal(d.Body, msg); err != nil {
		log.Error().Err(err).Msg("failed to decode delivery, skipping without ack")
		return
	}

	if err := s.handler(ctx, msg); err != nil {
		log.Error().Err(err).Msg("handler failed, skipping without ack")
		return
	}

	if err := d.Ack(false); err != nil {
		log.Error().Err(err).Msg("failed to ack delivery")
	}
}

// Add registers a handler for queueName under Registry r. A subsequent Add
// for the same queueName is a no-op: first registration wins, matching
// pool.rs's Consumers::add using entry().or_insert().
func Add[M proto.Message](r *Registry, queueName string, newMessage func() M, handler Handler[M]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.spawners[queueName]; exists {
		return
	}
	r.spawners[queueName] = &typedSpawner[M]{queueName: queueName, newMessage: newMessage, handler: handler}
}

// Registry is a type-erased map from queue name to its registered spawner.
type Registry struct {
	mu       sync.Mutex
	spawners map[string]Spawner
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{spawners: make(map[string]Spawner)}
}

// Merge unions other into r, first-registration-wins on duplicate queue
// names (spec §4.5 merge contract).
func (r *Registry) Merge(other *Registry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	other.mu.Lock()
	defer other.mu.Unlock()

	for name, spawner := range other.spawners {
		if _, exists := r.spawners[name]; !exists {
			r.spawners[name] = spawner
		}
	}
}

// Count returns the number of registered queues.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spawners)
}

// Has reports whether queueName is registered.
func (r *Registry) Has(queueName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.spawners[queueName]
	return ok
}

// Start spawns one goroutine per registered queue and blocks until every
// one returns (spec §4.5: in steady state, that only happens on broker
// disconnect or ctx cancellation — this call does not return in normal
// operation).
func (r *Registry) Start(ctx context.Context, conn Consumer, log zerolog.Logger) error {
	r.mu.Lock()
	spawners := make([]Spawner, 0, len(r.spawners))
	for _, s := range r.spawners {
		spawners = append(spawners, s)
	}
	r.mu.Unlock()

	var wg sync.WaitGroup
	errs := make(chan error, len(spawners))

	for _, s := range spawners {
		wg.Add(1)
		go func(s Spawner) {
			defer wg.Done()
			if err := s.Spawn(ctx, conn, log); err != nil {
				errs <- fmt.Errorf("consumer %s: %w", s.QueueName(), err)
			}
		}(s)
	}

	wg.Wait()
	close(errs)

	var firstErr error
	for err := range errs {
		if firstErr == nil {
			firstErr = err
		}
		log.Error().Err(err).Msg("consumer exited with error")
	}
	return firstErr
}
