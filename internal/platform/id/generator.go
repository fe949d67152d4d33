package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator emits hex-encoded random IDs of a fixed byte width.
type RandomGenerator struct {
	size int
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{size: 16}
}

// NewSuffixGenerator emits 4-byte IDs, short enough to append to
// timestamped names such as run manifests.
func NewSuffixGenerator() *RandomGenerator {
	return &RandomGenerator{size: 4}
}

func (g *RandomGenerator) NewID() (string, error) {
	size := g.size
	if size <= 0 {
		size = 16
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// PrefixedGenerator namespaces another generator's output, e.g. run_<hex>.
type PrefixedGenerator struct {
	prefix string
	inner  Generator
}

func NewPrefixedGenerator(prefix string, inner Generator) *PrefixedGenerator {
	if inner == nil {
		inner = NewRandomGenerator()
	}
	return &PrefixedGenerator{
		prefix: strings.TrimSpace(prefix),
		inner:  inner,
	}
}

func (g *PrefixedGenerator) NewID() (string, error) {
	id, err := g.inner.NewID()
	if err != nil {
		return "", err
	}
	if g.prefix == "" {
		return id, nil
	}

	return g.prefix + "_" + id, nil
}
