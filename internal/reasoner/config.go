package reasoner

import "time"

// BlockingStrategy selects how the tableaux engine recognizes an infinite
// model and stops expanding it, per spec.md §4.4.4.
type BlockingStrategy int

const (
	// SubsetBlocking blocks a node whose label is a subset of an ancestor's.
	SubsetBlocking BlockingStrategy = iota
	// EqualityBlocking requires the labels to match exactly.
	EqualityBlocking
)

// Config tunes the tableaux engine and the simple reasoner built on top of
// it, per spec.md §4.4.6.
type Config struct {
	MaxDepth         int
	Timeout          time.Duration
	Blocking         BlockingStrategy
	EnableParallel   bool
	MaxConcurrency   int
	DecisionCacheMax int
}

// DefaultConfig mirrors the Rust original's ReasoningConfig::default.
func DefaultConfig() Config {
	return Config{
		MaxDepth:         1000,
		Timeout:          30 * time.Second,
		Blocking:         SubsetBlocking,
		EnableParallel:   false,
		MaxConcurrency:   4,
		DecisionCacheMax: 10_000,
	}
}
