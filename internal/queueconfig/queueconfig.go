// Package queueconfig loads the mapping from handler role to concrete
// broker queue name (C11, SPEC_FULL.md §6.3). Grounded in the teacher's
// internal/onboarding.LoadDocuments: read a JSON manifest, unmarshal, fail
// startup hard on any error. Unlike that manifest, a missing file here is
// not a valid empty state — every one of the ten queue names is required,
// so there is no fallback to defaults.
package queueconfig

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config names the broker queue backing each event the projector consumes.
type Config struct {
	Server struct {
		CreateServer string `json:"create_server"`
		DeleteServer string `json:"delete_server"`
	} `json:"server"`
	Channel struct {
		CreateChannel string `json:"create_channel"`
		DeleteChannel string `json:"delete_channel"`
	} `json:"channel"`
	Role struct {
		UpsertRole           string `json:"upsert_role"`
		DeleteRole           string `json:"delete_role"`
		MemberAssignedToRole string `json:"member_assigned_to_role"`
		MemberRemovedFromRole string `json:"member_removed_from_role"`
	} `json:"role"`
	PermissionOverride struct {
		UpsertPermissionOverride string `json:"upsert_permission_override"`
		DeletePermissionOverride string `json:"delete_permission_override"`
	} `json:"permission_override"`
}

// Load reads and validates the queue-name manifest at path. Every field
// must be non-empty: a partially specified manifest is a startup error,
// never silently filled in with a default queue name.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read queue config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse queue config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	fields := map[string]string{
		"server.create_server":                        c.Server.CreateServer,
		"server.delete_server":                        c.Server.DeleteServer,
		"channel.create_channel":                       c.Channel.CreateChannel,
		"channel.delete_channel":                       c.Channel.DeleteChannel,
		"role.upsert_role":                             c.Role.UpsertRole,
		"role.delete_role":                             c.Role.DeleteRole,
		"role.member_assigned_to_role":                 c.Role.MemberAssignedToRole,
		"role.member_removed_from_role":                c.Role.MemberRemovedFromRole,
		"permission_override.upsert_permission_override": c.PermissionOverride.UpsertPermissionOverride,
		"permission_override.delete_permission_override": c.PermissionOverride.DeletePermissionOverride,
	}
	for name, value := range fields {
		if value == "" {
			return fmt.Errorf("queue config: %s must not be empty", name)
		}
	}
	return nil
}
