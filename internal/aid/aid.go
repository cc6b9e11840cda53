// Package aid mints atomic identifiers (AIDs): short, prefix-tagged strings
// that identify domain entities. An AID looks like "g-x7k2m9q1" where the
// prefix names the entity type and the body is a configurable mix of
// timestamp, counter, and random fragments.
package aid

import (
	"context"
	"crypto/rand"
	"fmt"
	"regexp"
	"time"
)

// alphabet is the base36 character set used for all id fragments.
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// counterWidth is the number of base36 characters the counter fragment
// occupies. The counter wraps modulo 36^counterWidth.
const counterWidth = 3

// timestampWidth is the number of base36 characters of the unix-second
// timestamp kept in the timestamp fragment (least significant first).
const timestampWidth = 4

// aidPattern matches the AID wire format: a single-letter prefix, a dash,
// and at least four body characters.
var aidPattern = regexp.MustCompile(`^[a-z]-[a-z0-9-]{4,}$`)

// entityTypes maps each registered prefix to its human-readable entity type.
var entityTypes = map[string]string{
	"g": "goal",
	"d": "document",
	"f": "file",
	"a": "api",
	"s": "script",
	"p": "prompt",
}

// Config controls id composition.
type Config struct {
	// MaxRetries bounds GenerateUnique attempts per call.
	MaxRetries int
	// IDLength is the total id length including prefix and dash.
	IDLength int
	// UseTimestamp prepends a base36 unix-second fragment to the body,
	// trading compactness for rough temporal ordering.
	UseTimestamp bool
	// UseCounter appends a per-prefix monotonic counter fragment.
	// The counter wraps modulo 36^3 so the fragment width is fixed.
	UseCounter bool
}

// DefaultConfig returns the compact profile: 8-character ids, no timestamp
// or counter fragments, 10 uniqueness retries.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 10,
		IDLength:   8,
	}
}

// RetryExhaustedError reports that GenerateUnique ran out of attempts.
type RetryExhaustedError struct {
	Prefix   string
	Attempts int
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("exhausted %d attempts generating unique id for prefix %q", e.Attempts, e.Prefix)
}

// Generator mints AIDs. It owns a per-prefix counter map and a set of ids
// already minted this session; both are instance-scoped. A Generator is not
// safe for concurrent use; callers needing that must synchronize externally.
type Generator struct {
	cfg      Config
	counters map[string]uint64
	seen     map[string]struct{}
	now      func() time.Time
}

// NewGenerator creates a Generator with the given config. Zero-value knobs
// fall back to the defaults.
func NewGenerator(cfg Config) *Generator {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 10
	}
	if cfg.IDLength <= 0 {
		cfg.IDLength = 8
	}
	return &Generator{
		cfg:      cfg,
		counters: make(map[string]uint64),
		seen:     make(map[string]struct{}),
		now:      time.Now,
	}
}

// Generate assembles a candidate id for the given prefix. The body is
// timestamp fragment + counter fragment + random fill, truncated to the
// configured total length when composition overflows.
func (g *Generator) Generate(prefix string) (string, error) {
	if _, ok := entityTypes[prefix]; !ok {
		return "", fmt.Errorf("unknown aid prefix %q", prefix)
	}

	bodyLen := g.cfg.IDLength - len(prefix) - 1
	if bodyLen < 4 {
		bodyLen = 4
	}

	body := ""
	if g.cfg.UseTimestamp {
		body += encodeBase36(uint64(g.now().Unix()), timestampWidth)
	}
	if g.cfg.UseCounter {
		g.counters[prefix]++
		body += encodeBase36(g.counters[prefix], counterWidth)
	}
	if len(body) < bodyLen {
		fill, err := randomBase36(bodyLen - len(body))
		if err != nil {
			return "", fmt.Errorf("failed to generate random fill: %w", err)
		}
		body += fill
	}
	if len(body) > bodyLen {
		body = body[:bodyLen]
	}

	return prefix + "-" + body, nil
}

// GenerateUnique mints a candidate confirmed unique both within this session
// and by the caller-supplied probe. It retries up to MaxRetries times,
// skipping session-seen candidates without consuming the probe.
func (g *Generator) GenerateUnique(ctx context.Context, prefix string, isUnique func(context.Context, string) (bool, error)) (string, error) {
	if _, ok := entityTypes[prefix]; !ok {
		return "", fmt.Errorf("unknown aid prefix %q", prefix)
	}

	for attempt := 0; attempt < g.cfg.MaxRetries; attempt++ {
		candidate, err := g.Generate(prefix)
		if err != nil {
			return "", err
		}
		if _, dup := g.seen[candidate]; dup {
			continue
		}
		unique, err := isUnique(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("uniqueness check failed: %w", err)
		}
		if !unique {
			continue
		}
		g.seen[candidate] = struct{}{}
		return candidate, nil
	}

	return "", &RetryExhaustedError{Prefix: prefix, Attempts: g.cfg.MaxRetries}
}

// IsValidAID reports whether s matches the AID wire format.
func IsValidAID(s string) bool {
	return aidPattern.MatchString(s)
}

// EntityType returns the human-readable entity type for a registered prefix.
func EntityType(prefix string) (string, bool) {
	t, ok := entityTypes[prefix]
	return t, ok
}

// Prefixes returns the registered prefix set.
func Prefixes() []string {
	out := make([]string, 0, len(entityTypes))
	for p := range entityTypes {
		out = append(out, p)
	}
	return out
}

// encodeBase36 renders v modulo 36^width as a zero-padded base36 string.
func encodeBase36(v uint64, width int) string {
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = alphabet[v%36]
		v /= 36
	}
	return string(buf)
}

// randomBase36 returns n cryptographically random base36 characters.
func randomBase36(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	for i, b := range raw {
		buf[i] = alphabet[int(b)%36]
	}
	return string(buf), nil
}
