// Package catalog holds the fixed permission bitmask table (C1) and the pure
// translations between a display name, its bit, its channel-scope flag, and
// the relation names it projects to in the relation store.
package catalog

// Permission describes one entry of the fixed catalog.
type Permission struct {
	Display        string
	Bit            uint64
	ChannelScope   bool   // true for the five channel-scope permissions
	ServerRelation string // total over every display; used by role upsert
}

// catalog is the fixed, ordered permission table (spec §3.2). Order matters:
// ParseBitmask iterates it in this order, so its output is deterministic
// regardless of map iteration, and independent of the order bits were set in
// the source bitmask.
var catalog = []Permission{
	{Display: "admin", Bit: 0x001, ServerRelation: "administrator"},
	{Display: "manage", Bit: 0x002, ServerRelation: "server_manager"},
	{Display: "manage_role", Bit: 0x004, ServerRelation: "role_manager"},
	{Display: "create_invitation", Bit: 0x008, ServerRelation: "invitation_creator"},
	{Display: "manage_channels", Bit: 0x010, ServerRelation: "channel_manager"},
	{Display: "manage_webhooks", Bit: 0x020, ChannelScope: true, ServerRelation: "webhook_manager"},
	{Display: "view_channel", Bit: 0x040, ChannelScope: true, ServerRelation: "channel_viewer"},
	{Display: "send_message", Bit: 0x080, ChannelScope: true, ServerRelation: "message_sender"},
	{Display: "manage_nicknames", Bit: 0x100, ServerRelation: "nickname_manager"},
	{Display: "change_nickname", Bit: 0x200, ServerRelation: "nickname_changer"},
	{Display: "manage_message", Bit: 0x400, ChannelScope: true, ServerRelation: "message_manager"},
	{Display: "attach_files", Bit: 0x800, ChannelScope: true, ServerRelation: "file_attacher"},
}

var byDisplay = func() map[string]Permission {
	m := make(map[string]Permission, len(catalog))
	for _, p := range catalog {
		m[p.Display] = p
	}
	return m
}()

// All returns the fixed catalog in insertion order. Callers must not mutate
// the returned slice.
func All() []Permission {
	return catalog
}

// ParseBitmask returns, in catalog insertion order, the display names of
// every bit set in bits. Bits with no corresponding catalog entry are
// silently ignored; the caller is responsible for logging that at debug.
func ParseBitmask(bits uint64) []string {
	var displays []string
	for _, p := range catalog {
		if bits&p.Bit != 0 {
			displays = append(displays, p.Display)
		}
	}
	return displays
}

// ServerRelation returns the server relation name for display. It is total
// over every catalog entry, not just the server-scope ones: role upsert
// projects a server relation for every permission bit set, channel-scope or
// not.
func ServerRelation(display string) (string, bool) {
	p, ok := byDisplay[display]
	if !ok {
		return "", false
	}
	return p.ServerRelation, true
}

// ChannelRelation returns the channel-scope relation name for display under
// the given grant/deny direction, or ok=false if display is unknown or is
// not a channel-scope permission.
func ChannelRelation(display string, isAllow bool) (string, bool) {
	p, ok := byDisplay[display]
	if !ok || !p.ChannelScope {
		return "", false
	}
	if isAllow {
		return display + "_grant", true
	}
	return display + "_deny", true
}

// IsChannelScope reports whether display names a channel-scope permission.
func IsChannelScope(display string) bool {
	p, ok := byDisplay[display]
	return ok && p.ChannelScope
}
