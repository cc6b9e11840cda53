package aid

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"
)

func alwaysUnique(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func TestGenerate_Format(t *testing.T) {
	g := NewGenerator(DefaultConfig())

	for _, prefix := range []string{"g", "d", "f", "a", "s", "p"} {
		id, err := g.Generate(prefix)
		if err != nil {
			t.Fatalf("Generate(%q) failed: %v", prefix, err)
		}
		if len(id) != 8 {
			t.Errorf("expected 8-char id, got %q (%d chars)", id, len(id))
		}
		if !IsValidAID(id) {
			t.Errorf("generated id %q does not match wire format", id)
		}
		if !strings.HasPrefix(id, prefix+"-") {
			t.Errorf("expected prefix %q, got %q", prefix, id)
		}
	}
}

func TestGenerate_UnknownPrefix(t *testing.T) {
	g := NewGenerator(DefaultConfig())

	if _, err := g.Generate("z"); err == nil {
		t.Error("expected error for unregistered prefix")
	}
	if _, err := g.Generate(""); err == nil {
		t.Error("expected error for empty prefix")
	}
}

func TestGenerateUnique_MatchesPrefixPattern(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	ctx := context.Background()

	for _, prefix := range []string{"g", "d", "f", "a", "s", "p"} {
		id, err := g.GenerateUnique(ctx, prefix, alwaysUnique)
		if err != nil {
			t.Fatalf("GenerateUnique(%q) failed: %v", prefix, err)
		}
		pattern := regexp.MustCompile("^" + prefix + `-[a-z0-9-]{4,}$`)
		if !pattern.MatchString(id) {
			t.Errorf("id %q does not match ^%s-[a-z0-9-]{4,}$", id, prefix)
		}
	}
}

func TestGenerateUnique_NoSessionDuplicates(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id, err := g.GenerateUnique(ctx, "g", alwaysUnique)
		if err != nil {
			t.Fatalf("GenerateUnique failed on iteration %d: %v", i, err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q returned within one session", id)
		}
		seen[id] = true
	}
}

func TestGenerateUnique_RetryExhausted(t *testing.T) {
	g := NewGenerator(Config{MaxRetries: 3, IDLength: 8})
	ctx := context.Background()

	neverUnique := func(_ context.Context, _ string) (bool, error) {
		return false, nil
	}

	_, err := g.GenerateUnique(ctx, "g", neverUnique)
	if err == nil {
		t.Fatal("expected retry exhaustion error")
	}

	var exhausted *RetryExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *RetryExhaustedError, got %T: %v", err, err)
	}
	if exhausted.Prefix != "g" {
		t.Errorf("expected prefix 'g' in error, got %q", exhausted.Prefix)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("expected 3 attempts in error, got %d", exhausted.Attempts)
	}
}

func TestGenerateUnique_UnknownPrefixSkipsRetryLoop(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	ctx := context.Background()

	calls := 0
	probe := func(_ context.Context, _ string) (bool, error) {
		calls++
		return true, nil
	}

	if _, err := g.GenerateUnique(ctx, "z", probe); err == nil {
		t.Fatal("expected error for unregistered prefix")
	}
	if calls != 0 {
		t.Errorf("uniqueness probe should not run for invalid prefix, ran %d times", calls)
	}
}

func TestGenerateUnique_ProbeError(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	ctx := context.Background()

	probeErr := errors.New("store unavailable")
	probe := func(_ context.Context, _ string) (bool, error) {
		return false, probeErr
	}

	_, err := g.GenerateUnique(ctx, "g", probe)
	if !errors.Is(err, probeErr) {
		t.Fatalf("expected wrapped probe error, got %v", err)
	}
}

func TestGenerate_CounterFragmentWraps(t *testing.T) {
	g := NewGenerator(Config{MaxRetries: 10, IDLength: 8, UseCounter: true})
	// Force the counter past the wrap point: 36^3 = 46656.
	g.counters["g"] = 46655

	id, err := g.Generate("g")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	// Counter is now 46656, which wraps to 000.
	if !strings.HasPrefix(id, "g-000") {
		t.Errorf("expected wrapped counter fragment 000, got %q", id)
	}
	if len(id) != 8 {
		t.Errorf("expected fixed 8-char id after wrap, got %q", id)
	}
}

func TestGenerate_TimestampAndCounterTruncation(t *testing.T) {
	g := NewGenerator(Config{MaxRetries: 10, IDLength: 8, UseTimestamp: true, UseCounter: true})
	g.now = func() time.Time { return time.Unix(1700000000, 0) }

	// Timestamp (4) + counter (3) = 7 chars against a 6-char body: must truncate.
	id, err := g.Generate("g")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(id) != 8 {
		t.Errorf("expected composition truncated to 8 chars, got %q (%d)", id, len(id))
	}
	if !IsValidAID(id) {
		t.Errorf("truncated id %q does not match wire format", id)
	}
}

func TestGenerate_TimestampOrdering(t *testing.T) {
	g := NewGenerator(Config{MaxRetries: 10, IDLength: 12, UseTimestamp: true})

	g.now = func() time.Time { return time.Unix(1700000000, 0) }
	a, _ := g.Generate("g")
	g.now = func() time.Time { return time.Unix(1700003600, 0) }
	b, _ := g.Generate("g")

	if a[:6] == b[:6] {
		t.Errorf("expected differing timestamp fragments, got %q and %q", a, b)
	}
}

func TestIsValidAID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"g-x7k2m9", true},
		{"d-abcd", true},
		{"p-1234-56", true},
		{"g-abc", false},      // body too short
		{"gg-abcdef", false},  // multi-char prefix
		{"G-abcdef", false},   // uppercase prefix
		{"g_abcdef", false},   // wrong separator
		{"g-ABCDEF", false},   // uppercase body
		{"", false},
		{"g-", false},
	}

	for _, tt := range tests {
		if got := IsValidAID(tt.id); got != tt.valid {
			t.Errorf("IsValidAID(%q) = %v, want %v", tt.id, got, tt.valid)
		}
	}
}

func TestEntityType(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
		ok     bool
	}{
		{"g", "goal", true},
		{"d", "document", true},
		{"f", "file", true},
		{"a", "api", true},
		{"s", "script", true},
		{"p", "prompt", true},
		{"z", "", false},
	}

	for _, tt := range tests {
		got, ok := EntityType(tt.prefix)
		if got != tt.want || ok != tt.ok {
			t.Errorf("EntityType(%q) = (%q, %v), want (%q, %v)", tt.prefix, got, ok, tt.want, tt.ok)
		}
	}
}
