package shortcode_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/shortcode"
)

// memoryCodes is a concurrency-safe set standing in for the link table.
type memoryCodes struct {
	mu    sync.Mutex
	codes map[string]bool
	calls int
}

func (m *memoryCodes) exists(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.codes[code], nil
}

func (m *memoryCodes) add(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code] = true
}

func TestGenerate_DefaultShape(t *testing.T) {
	store := &memoryCodes{codes: map[string]bool{}}
	gen := shortcode.NewGenerator(0, store.exists)

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)

	assert.Len(t, code, shortcode.DefaultLength)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(shortcode.Alphabet, r), "unexpected rune %q", r)
	}
}

func TestGenerate_RetriesOnCollision(t *testing.T) {
	collisions := 3
	calls := 0
	exists := func(context.Context, string) (bool, error) {
		calls++
		return calls <= collisions, nil
	}

	code, err := shortcode.NewGenerator(6, exists).Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, collisions+1, calls)
}

func TestGenerate_UniqueAcrossManyCreates(t *testing.T) {
	store := &memoryCodes{codes: map[string]bool{}}
	// Two-character codes force frequent collisions.
	gen := shortcode.NewGenerator(2, store.exists)

	const n = 500
	for range n {
		code, err := gen.Generate(context.Background())
		require.NoError(t, err)
		require.False(t, store.codes[code], "generator returned taken code %q", code)
		store.add(code)
	}
	assert.Len(t, store.codes, n)
}

func TestGenerate_PropagatesStoreError(t *testing.T) {
	boom := errors.New("connection refused")
	gen := shortcode.NewGenerator(6, func(context.Context, string) (bool, error) { return false, boom })

	_, err := gen.Generate(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestGenerate_StopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	gen := shortcode.NewGenerator(6, func(context.Context, string) (bool, error) {
		calls++
		if calls == 10 {
			cancel()
		}
		return true, nil
	})

	_, err := gen.Generate(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestValid(t *testing.T) {
	tests := map[string]bool{
		"promo1":                true,
		"Spring_Sale-2026":      true,
		"":                      false,
		"has space":             false,
		"slash/inside":          false,
		"query?x=1":             false,
		strings.Repeat("a", 64): true,
		strings.Repeat("a", 65): false,
	}
	for slug, want := range tests {
		assert.Equal(t, want, shortcode.Valid(slug), "Valid(%q)", slug)
	}
}

func TestIsReserved(t *testing.T) {
	for _, code := range []string{"admin", "api", "bulk", "docs", "health", "analytics", "favicon.ico", "metrics", "robots.txt"} {
		assert.True(t, shortcode.IsReserved(code), "%q should be reserved", code)
	}
	for _, code := range []string{"abc123", "Admin", "apis", ""} {
		assert.False(t, shortcode.IsReserved(code), "%q should not be reserved", code)
	}
}
