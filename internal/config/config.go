// Package config loads the projector's configuration (C9, SPEC_FULL.md
// §6.3): command-line flags with environment-variable-derived defaults,
// validated once at startup. Grounded in the teacher's
// internal/config.Config: a typed struct built by a parser that
// accumulates errors so every invalid value is reported at once, plus a
// separate validate() pass for semantic range checks.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the projector's fully resolved, validated configuration.
type Config struct {
	RabbitURI               string
	RabbitConsumerTagSuffix string
	AuthzedEndpoint         string
	AuthzedToken            string
	AuthzedInsecure         bool
	QueueConfigPath         string
	LogLevel                string
	Env                     string // "development" or "production"
	ShutdownGrace           time.Duration
}

// IsDevelopment returns true when running in development mode, matching
// the teacher's Config.IsDevelopment() idiom.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// errCollector accumulates env-parse errors so Load reports every invalid
// value in one pass, mirroring the teacher's parser.errs accumulation.
type errCollector struct {
	errs []error
}

func (e *errCollector) envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid value for %s: %q (expected boolean)", key, v))
		return fallback
	}
	return b
}

func (e *errCollector) envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid value for %s: %q (expected duration like \"5s\")", key, v))
		return fallback
	}
	return d
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load parses args (typically os.Args[1:]) against flags whose defaults
// are sourced from the matching environment variable, so an explicit flag
// always wins, an env var wins over the built-in default, and the
// built-in default applies otherwise.
func Load(args []string) (*Config, error) {
	ec := &errCollector{}

	fs := flag.NewFlagSet("authz-projector", flag.ContinueOnError)

	rabbitURI := fs.String("rabbit-uri", envStr("RABBIT_URI", "localhost"), "broker URI")
	rabbitTagSuffix := fs.String("rabbit-consumer-tag-suffix", envStr("RABBIT_CONSUMER_TAG_SUFFIX", "default"), "suffix appended to <queue>- for consumer-tag uniqueness")
	authzedEndpoint := fs.String("authzed-endpoint", envStr("AUTHZED_ENDPOINT", "localhost:50051"), "relation-store host:port")
	authzedToken := fs.String("authzed-token", envStr("AUTHZED_TOKEN", ""), "relation-store bearer token; empty disables the auth header")
	authzedInsecure := fs.Bool("authzed-insecure", ec.envBool("AUTHZED_INSECURE", true), "dial the relation store without TLS")
	queueConfigPath := fs.String("queue-config-path", envStr("QUEUE_CONFIG_PATH", "config/queues.json"), "path to the queue-name mapping JSON file")
	logLevel := fs.String("log-level", envStr("LOG_LEVEL", "info"), "zerolog level: debug, info, warn, error")
	env := fs.String("env", envStr("APP_ENV", "production"), "development switches to a console log writer")
	shutdownGrace := fs.Duration("shutdown-grace", ec.envDuration("SHUTDOWN_GRACE", 5*time.Second), "upper bound on waiting for consumers to stop during shutdown before the broker connection is force-closed")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if len(ec.errs) > 0 {
		return nil, errors.Join(ec.errs...)
	}

	cfg := &Config{
		RabbitURI:               *rabbitURI,
		RabbitConsumerTagSuffix: *rabbitTagSuffix,
		AuthzedEndpoint:         *authzedEndpoint,
		AuthzedToken:            *authzedToken,
		AuthzedInsecure:         *authzedInsecure,
		QueueConfigPath:         *queueConfigPath,
		LogLevel:                *logLevel,
		Env:                     *env,
		ShutdownGrace:           *shutdownGrace,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.RabbitURI == "" {
		errs = append(errs, fmt.Errorf("rabbit-uri must not be empty"))
	}
	if c.AuthzedEndpoint == "" {
		errs = append(errs, fmt.Errorf("authzed-endpoint must not be empty"))
	}
	if c.QueueConfigPath == "" {
		errs = append(errs, fmt.Errorf("queue-config-path must not be empty"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log-level must be one of debug, info, warn, error, got %q", c.LogLevel))
	}
	if c.ShutdownGrace < time.Second {
		errs = append(errs, fmt.Errorf("shutdown-grace must be at least 1s"))
	}

	return errors.Join(errs...)
}
