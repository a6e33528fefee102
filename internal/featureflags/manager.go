// Package featureflags evaluates rollout flags parsed from configuration.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Manager evaluates feature flags defined in a comma-separated key=value
// list, e.g. "related_posts=on,reading_stats=25%,legacy_feed=off".
type Manager struct {
	flags map[string]string
}

// NewManager parses a flag list. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	flags := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		flags[key] = value
	}
	return &Manager{flags: flags}
}

// Enabled reports whether a flag is on for the given user. Supported values
// are on/true/1, off/false/0, and "N%" for a deterministic per-user rollout.
// Unknown flags are off; EnabledOr chooses the fallback explicitly.
func (m *Manager) Enabled(name string, userID uint) bool {
	return m.EnabledOr(name, userID, false)
}

// EnabledOr evaluates a flag, returning fallback when the flag is not
// configured at all. Features that ship enabled use a true fallback so an
// empty flag list means "everything on".
func (m *Manager) EnabledOr(name string, userID uint, fallback bool) bool {
	if m == nil {
		return fallback
	}
	value, ok := m.flags[normalize(name)]
	if !ok {
		return fallback
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if pct, found := strings.CutSuffix(value, "%"); found {
		n, err := strconv.Atoi(pct)
		switch {
		case err != nil || n <= 0:
			return false
		case n >= 100:
			return true
		case userID == 0:
			// Anonymous traffic has no stable bucket.
			return false
		}
		return bucket(name, userID) < n
	}
	return false
}

// Raw returns a copy of the configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot evaluates every configured flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// bucket maps a (flag, user) pair to a stable 0-99 value.
func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name)))
	_, _ = h.Write([]byte(":" + strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
