package sync

import (
	"fmt"
)

const (
	// DefaultFrom is the height of the root header when none is configured.
	DefaultFrom = 1000
	// DefaultTo is the last height to sync when none is configured.
	DefaultTo = 2000
	// DefaultConfirmationDepth is the amount of blocks on top of a header for it to be
	// considered confirmed.
	DefaultConfirmationDepth = 6
)

type Options func(*Parameters)

// Parameters is the set of parameters that must be configured for the syncer.
type Parameters struct {
	// From is the height of the root header, the chain is built on top of it.
	From uint64
	// To is the last height to sync.
	To uint64
	// Step is the amount of headers requested per call. Zero picks it automatically.
	Step uint64
	// Parallel splits the range across all sources and fetches from them concurrently.
	// Otherwise only the first source is asked for the whole range.
	Parallel bool
	// Checkpoints is the amount of hashes sampled from the longest chain and validated
	// after it is built.
	Checkpoints int
	// TrustedCheckpoints are hashes known in advance the longest chain must agree with.
	TrustedCheckpoints []Checkpoint
	// ConfirmationDepth is passed to the chain and used to report confirmed headers.
	ConfirmationDepth uint64
	// Label names the chain in logs.
	Label string
}

// DefaultParameters returns the default params to configure the syncer.
func DefaultParameters() Parameters {
	return Parameters{
		From:              DefaultFrom,
		To:                DefaultTo,
		Checkpoints:       DefaultCheckpoints,
		ConfirmationDepth: DefaultConfirmationDepth,
		Label:             "main",
	}
}

func (p *Parameters) Validate() error {
	if p.To < p.From {
		return &RangeError{
			Range:  Range{From: p.From + 1, To: p.To + 1},
			Reason: fmt.Sprintf("last height %d is below the root height %d", p.To, p.From),
		}
	}
	if p.Checkpoints < 0 {
		return fmt.Errorf("sync: invalid amount of checkpoints: %d", p.Checkpoints)
	}
	if p.Label == "" {
		return fmt.Errorf("sync: empty chain label")
	}
	return nil
}

// Range returns the heights synced on top of the root.
func (p *Parameters) Range() Range {
	return Range{From: p.From + 1, To: p.To + 1}
}

// WithRange sets the root height and the last height to sync.
func WithRange(from, to uint64) Options {
	return func(p *Parameters) {
		p.From, p.To = from, to
	}
}

// WithStep sets the amount of headers requested per call.
func WithStep(step uint64) Options {
	return func(p *Parameters) {
		p.Step = step
	}
}

// WithParallel toggles fetching from all sources at once.
func WithParallel(parallel bool) Options {
	return func(p *Parameters) {
		p.Parallel = parallel
	}
}

// WithCheckpoints sets the amount of sampled checkpoints.
func WithCheckpoints(n int) Options {
	return func(p *Parameters) {
		p.Checkpoints = n
	}
}

// WithTrustedCheckpoints sets checkpoints the longest chain must agree with.
func WithTrustedCheckpoints(cps ...Checkpoint) Options {
	return func(p *Parameters) {
		p.TrustedCheckpoints = append(p.TrustedCheckpoints, cps...)
	}
}

// WithConfirmationDepth sets the depth at which headers count as confirmed.
func WithConfirmationDepth(depth uint64) Options {
	return func(p *Parameters) {
		p.ConfirmationDepth = depth
	}
}

// WithLabel names the synced chain.
func WithLabel(label string) Options {
	return func(p *Parameters) {
		p.Label = label
	}
}
