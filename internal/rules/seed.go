package rules

import (
	"hash/fnv"
	"strconv"
	"time"
)

// SeedFrom derives a randomizer seed from user input. Integers are used
// as-is, any other text is hashed. An empty string selects an arbitrary seed.
func SeedFrom(s string) int64 {
	if s == "" {
		return ArbitrarySeed()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}

// ArbitrarySeed returns a seed that differs between runs.
func ArbitrarySeed() int64 {
	return time.Now().UnixNano()
}

// Seed returns the seed for a run, the command line seed takes precedence
// over the configured default seed.
func (r Rules) Seed(override string) int64 {
	if override != "" {
		return SeedFrom(override)
	}
	return SeedFrom(r.DefaultSeed)
}
