package sync

import (
	"errors"
	"fmt"
	"strings"

	"github.com/celestiaorg/headersync/header"
)

var (
	// ErrNoSources is returned when a sync is attempted without any source.
	ErrNoSources = errors.New("sync: no sources")
	// ErrGenesisMismatch is returned when a source reports another genesis than the
	// source the root was fetched from.
	ErrGenesisMismatch = errors.New("sync: genesis mismatch")
	// ErrShortBatch is returned when a source replies with another amount of headers
	// than requested.
	ErrShortBatch = errors.New("sync: unexpected amount of headers")
	// ErrOverlap is returned when chunks given for assembly cover the same heights.
	ErrOverlap = errors.New("sync: overlapping chunks")
)

// FetchError is returned when a remote call to a source fails.
type FetchError struct {
	Source string
	Op     string
	Range  Range
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("sync: %s %s from %s: %v", e.Op, e.Range, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RangeError is returned for degenerate or inconsistent ranges, before any network call.
type RangeError struct {
	Range   Range
	Sources int
	Reason  string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("sync: invalid range [%d:%d) over %d source(s): %s",
		e.Range.From, e.Range.To, e.Sources, e.Reason)
}

// GapError reports heights missing from an assembled HeaderStore.
type GapError struct {
	Gaps []Range
}

func (e *GapError) Error() string {
	gaps := make([]string, len(e.Gaps))
	for i, g := range e.Gaps {
		gaps[i] = g.String()
	}
	return fmt.Sprintf("sync: header store has %d gap(s): %s", len(e.Gaps), strings.Join(gaps, ", "))
}

// ValidationError reports checkpoints not found in the longest chain.
// It flags a sync as suspect, but is not fatal.
type ValidationError struct {
	// Missing are sampled checkpoint hashes absent from the longest chain.
	Missing []header.Hash
	// Mismatched are trusted checkpoints that disagree with the longest chain.
	Mismatched []Checkpoint
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sync: checkpoint validation failed: %d missing, %d mismatched",
		len(e.Missing), len(e.Mismatched))
}
