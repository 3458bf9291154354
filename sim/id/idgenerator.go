// Package id generates identifiers for timers, loops and sessions.
package id

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator can generate IDs.
type Generator interface {
	// Generate returns an ID that the generator has never returned before.
	Generate() string
}

// NewSequentialGenerator returns a generator that counts up from 1. Its IDs
// are deterministic and strictly increasing.
func NewSequentialGenerator() Generator {
	return &sequentialGenerator{}
}

// NewPrefixedGenerator returns a sequential generator whose IDs carry the
// given prefix, such as "native-1", "native-2".
func NewPrefixedGenerator(prefix string) Generator {
	return &sequentialGenerator{prefix: prefix}
}

// NewParallelGenerator returns a generator backed by xid. IDs are globally
// unique and sortable by creation time, but not deterministic.
func NewParallelGenerator() Generator {
	return parallelGenerator{}
}

type sequentialGenerator struct {
	prefix string
	nextID atomic.Uint64
}

func (g *sequentialGenerator) Generate() string {
	idNumber := g.nextID.Add(1)

	return g.prefix + strconv.FormatUint(idNumber, 10)
}

type parallelGenerator struct{}

func (parallelGenerator) Generate() string {
	return xid.New().String()
}
