package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.RabbitURI != "localhost" {
		t.Errorf("RabbitURI = %q, want localhost", cfg.RabbitURI)
	}
	if cfg.RabbitConsumerTagSuffix != "default" {
		t.Errorf("RabbitConsumerTagSuffix = %q, want default", cfg.RabbitConsumerTagSuffix)
	}
	if cfg.AuthzedEndpoint != "localhost:50051" {
		t.Errorf("AuthzedEndpoint = %q, want localhost:50051", cfg.AuthzedEndpoint)
	}
	if cfg.AuthzedToken != "" {
		t.Errorf("AuthzedToken = %q, want empty", cfg.AuthzedToken)
	}
	if !cfg.AuthzedInsecure {
		t.Error("AuthzedInsecure should default to true")
	}
	if cfg.QueueConfigPath != "config/queues.json" {
		t.Errorf("QueueConfigPath = %q, want config/queues.json", cfg.QueueConfigPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.IsDevelopment() {
		t.Error("default env should not be development")
	}
	if cfg.ShutdownGrace.Seconds() != 5 {
		t.Errorf("ShutdownGrace = %v, want 5s", cfg.ShutdownGrace)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RABBIT_URI", "rabbit.internal:5672")
	t.Setenv("AUTHZED_ENDPOINT", "spicedb.internal:50051")
	t.Setenv("AUTHZED_INSECURE", "false")
	t.Setenv("APP_ENV", "development")
	t.Setenv("SHUTDOWN_GRACE", "10s")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.RabbitURI != "rabbit.internal:5672" {
		t.Errorf("RabbitURI = %q, want env override", cfg.RabbitURI)
	}
	if cfg.AuthzedEndpoint != "spicedb.internal:50051" {
		t.Errorf("AuthzedEndpoint = %q, want env override", cfg.AuthzedEndpoint)
	}
	if cfg.AuthzedInsecure {
		t.Error("AuthzedInsecure should be false from env override")
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development mode from APP_ENV override")
	}
	if cfg.ShutdownGrace.Seconds() != 10 {
		t.Errorf("ShutdownGrace = %v, want 10s", cfg.ShutdownGrace)
	}
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	t.Setenv("RABBIT_URI", "rabbit.internal:5672")

	cfg, err := Load([]string{"--rabbit-uri", "flag-wins:5672"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.RabbitURI != "flag-wins:5672" {
		t.Errorf("RabbitURI = %q, want flag override to win over env", cfg.RabbitURI)
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	_, err := Load([]string{"--log-level", "verbose"})
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestLoadRejectsShutdownGraceBelowOneSecond(t *testing.T) {
	_, err := Load([]string{"--shutdown-grace", "100ms"})
	if err == nil {
		t.Fatal("expected error for shutdown-grace below 1s")
	}
}

func TestLoadRejectsInvalidBoolEnv(t *testing.T) {
	t.Setenv("AUTHZED_INSECURE", "not-a-bool")

	_, err := Load(nil)
	if err == nil {
		t.Fatal("expected error for invalid AUTHZED_INSECURE value")
	}
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	_, err := Load([]string{"--rabbit-uri", "", "--authzed-endpoint", "", "--queue-config-path", ""})
	if err == nil {
		t.Fatal("expected validation error for empty required fields")
	}
}
