package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const runIDTimeLayout = "20060102T150405Z"

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// RunIDGenerator issues IDs that sort by start time, e.g. "20240305T101500Z-9f86d081".
type RunIDGenerator struct {
	now func() time.Time
}

func NewRunIDGenerator() *RunIDGenerator {
	return &RunIDGenerator{now: time.Now}
}

func (g *RunIDGenerator) NewID() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	now := time.Now
	if g != nil && g.now != nil {
		now = g.now
	}
	return now().UTC().Format(runIDTimeLayout) + "-" + hex.EncodeToString(buf), nil
}
