// Package shortcode generates random short codes and validates custom slugs.
package shortcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
)

// Alphabet is the 62 characters codes are drawn from.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength gives 62^6 (about 56.8 billion) codes.
const DefaultLength = 6

// MaxSlugLength bounds caller-supplied slugs.
const MaxSlugLength = 64

var (
	alphabetSize = big.NewInt(int64(len(Alphabet)))
	slugPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ExistsFunc reports whether code is already used by any link.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generator draws codes and checks them against the link store.
type Generator struct {
	length int
	exists ExistsFunc
}

// NewGenerator returns a Generator for codes of length characters.
// A non-positive length uses DefaultLength.
func NewGenerator(length int, exists ExistsFunc) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length, exists: exists}
}

// Generate returns a code not in use at the moment of the check. It retries
// on collision until ctx ends. The store's unique constraint still decides
// races between concurrent creators.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("generate short code: %w", err)
		}

		code, err := Random(g.length)
		if err != nil {
			return "", err
		}

		taken, err := g.exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check short code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
}

// Random returns n characters drawn uniformly from Alphabet.
func Random(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("short code length must be positive")
	}

	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		buf[i] = Alphabet[idx.Int64()]
	}
	return string(buf), nil
}

// Valid reports whether slug may be used as a custom short code.
func Valid(slug string) bool {
	return len(slug) <= MaxSlugLength && slugPattern.MatchString(slug)
}
