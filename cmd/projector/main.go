package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	eventsv1 "github.com/beep-industries/authz-events/eventsv1"

	"github.com/beep-industries/authz-projector/internal/authzsvc"
	"github.com/beep-industries/authz-projector/internal/broker"
	"github.com/beep-industries/authz-projector/internal/config"
	"github.com/beep-industries/authz-projector/internal/consumer"
	"github.com/beep-industries/authz-projector/internal/diagnostics"
	"github.com/beep-industries/authz-projector/internal/handlers"
	"github.com/beep-industries/authz-projector/internal/logging"
	"github.com/beep-industries/authz-projector/internal/projection/channel"
	"github.com/beep-industries/authz-projector/internal/projection/override"
	"github.com/beep-industries/authz-projector/internal/projection/role"
	"github.com/beep-industries/authz-projector/internal/projection/server"
	"github.com/beep-industries/authz-projector/internal/queueconfig"
	"github.com/beep-industries/authz-projector/internal/relstore"
)

// Build metadata injected via ldflags at compile time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("projector stopped")
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Env)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("commit", commit).
		Str("env", cfg.Env).
		Msg("starting authz projector")

	status := diagnostics.New()

	queues, err := queueconfig.Load(cfg.QueueConfigPath)
	if err != nil {
		return fmt.Errorf("load queue config: %w", err)
	}

	conn, err := broker.Dial(cfg.RabbitURI, cfg.RabbitConsumerTagSuffix)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()
	status.Set(diagnostics.ComponentBroker, true)
	logger.Info().Msg("broker connected")

	store, err := relstore.Dial(cfg.AuthzedEndpoint, cfg.AuthzedToken, cfg.AuthzedInsecure)
	if err != nil {
		return fmt.Errorf("dial relation store: %w", err)
	}
	status.Set(diagnostics.ComponentRelStore, true)
	logger.Info().Msg("relation store connected")

	svc := authzsvc.New(
		server.New(store, logger),
		channel.New(store, logger),
		role.New(store, logger),
		override.New(store, logger),
		logger,
	)
	h := handlers.New(svc, logger)

	registry := buildRegistry(h, queues)
	logger.Info().Int("queue_count", registry.Count()).Msg("handlers registered")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	status.Set(diagnostics.ComponentConsumers, true)
	logger.Info().
		Bool("ready", status.AllReady(diagnostics.ComponentBroker, diagnostics.ComponentRelStore, diagnostics.ComponentConsumers)).
		Msg("startup complete")
	go func() { done <- registry.Start(ctx, conn, logger) }()

	select {
	case err := <-done:
		return err
	case <-quit:
		logger.Info().Msg("shutdown signal received")
		cancel()
	}

	select {
	case err := <-done:
		return err
	case <-time.After(cfg.ShutdownGrace):
		logger.Warn().Dur("grace", cfg.ShutdownGrace).Msg("shutdown grace period elapsed, forcing broker close")
		conn.Close()
		return <-done
	}
}

// buildRegistry wires every handler to its configured queue name, matching
// the ten queue roles spec §4.5 names.
func buildRegistry(h *handlers.Handlers, q *queueconfig.Config) *consumer.Registry {
	r := consumer.NewRegistry()

	consumer.Add(r, q.Server.CreateServer, func() *eventsv1.CreateServer { return &eventsv1.CreateServer{} }, h.CreateServer)
	consumer.Add(r, q.Server.DeleteServer, func() *eventsv1.DeleteServer { return &eventsv1.DeleteServer{} }, h.DeleteServer)

	consumer.Add(r, q.Channel.CreateChannel, func() *eventsv1.CreateChannel { return &eventsv1.CreateChannel{} }, h.CreateChannel)
	consumer.Add(r, q.Channel.DeleteChannel, func() *eventsv1.DeleteChannel { return &eventsv1.DeleteChannel{} }, h.DeleteChannel)

	consumer.Add(r, q.Role.UpsertRole, func() *eventsv1.UpsertRole { return &eventsv1.UpsertRole{} }, h.UpsertRole)
	consumer.Add(r, q.Role.DeleteRole, func() *eventsv1.DeleteRole { return &eventsv1.DeleteRole{} }, h.DeleteRole)
	consumer.Add(r, q.Role.MemberAssignedToRole, func() *eventsv1.MemberAssignedToRole { return &eventsv1.MemberAssignedToRole{} }, h.MemberAssignedToRole)
	consumer.Add(r, q.Role.MemberRemovedFromRole, func() *eventsv1.MemberRemovedFromRole { return &eventsv1.MemberRemovedFromRole{} }, h.MemberRemovedFromRole)

	consumer.Add(r, q.PermissionOverride.UpsertPermissionOverride, func() *eventsv1.UpsertPermissionOverride { return &eventsv1.UpsertPermissionOverride{} }, h.UpsertPermissionOverride)
	consumer.Add(r, q.PermissionOverride.DeletePermissionOverride, func() *eventsv1.DeletePermissionOverride { return &eventsv1.DeletePermissionOverride{} }, h.DeletePermissionOverride)

	return r
}
