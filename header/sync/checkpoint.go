package sync

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/celestiaorg/headersync/chain"
	"github.com/celestiaorg/headersync/header"
)

// DefaultCheckpoints is the amount of hashes sampled from the longest chain.
const DefaultCheckpoints = 2

// Checkpoint is a hash expected at a given height.
type Checkpoint struct {
	Height uint64
	Hash   header.Hash
}

// ParseCheckpoint parses a checkpoint in the "height:hash" form.
func ParseCheckpoint(s string) (Checkpoint, error) {
	height, hash, ok := strings.Cut(s, ":")
	if !ok {
		return Checkpoint{}, fmt.Errorf("sync: checkpoint %q must be in the height:hash form", s)
	}
	h, err := strconv.ParseUint(height, 10, 64)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("sync: checkpoint %q: invalid height: %w", s, err)
	}
	parsed, err := header.ParseHash(hash)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("sync: checkpoint %q: %w", s, err)
	}
	return Checkpoint{Height: h, Hash: parsed}, nil
}

func (c Checkpoint) String() string {
	return fmt.Sprintf("%d:%s", c.Height, c.Hash)
}

// SampleCheckpoints draws k distinct hashes uniformly at random from the chain.
// If the chain is shorter than k, every hash is returned in random order.
func SampleCheckpoints(entries []chain.Entry, k int, rnd *rand.Rand) []header.Hash {
	n := len(entries)
	k = min(k, n)
	if k <= 0 {
		return nil
	}

	// partial Fisher-Yates over a sparse permutation of the indexes
	swapped := make(map[int]int, k*2)
	at := func(i int) int {
		if v, ok := swapped[i]; ok {
			return v
		}
		return i
	}

	out := make([]header.Hash, k)
	for i := range out {
		j := i + rnd.IntN(n-i)
		vi, vj := at(i), at(j)
		swapped[i], swapped[j] = vj, vi
		out[i] = entries[vj].Hash
	}
	return out
}

// ValidateCheckpoints checks every checkpoint is still part of the chain.
// Checkpoints sampled from the same chain state only prove it was not truncated in
// between. They cannot detect a self-consistent but wrong chain, for that trusted
// checkpoints from an independent origin are needed.
func ValidateCheckpoints(entries []chain.Entry, checkpoints []header.Hash) error {
	have := make(map[header.Hash]struct{}, len(entries))
	for _, e := range entries {
		have[e.Hash] = struct{}{}
	}

	var missing []header.Hash
	for _, cp := range checkpoints {
		if _, ok := have[cp]; !ok {
			missing = append(missing, cp)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// ValidateTrusted checks the chain agrees with independently known checkpoints.
// Checkpoints outside the chain's height span are skipped and returned.
func ValidateTrusted(entries []chain.Entry, trusted []Checkpoint) (skipped []Checkpoint, err error) {
	if len(entries) == 0 {
		return trusted, nil
	}

	base := entries[0].Height
	var mismatched []Checkpoint
	for _, cp := range trusted {
		if cp.Height < base || cp.Height-base >= uint64(len(entries)) {
			skipped = append(skipped, cp)
			continue
		}
		if entries[cp.Height-base].Hash != cp.Hash {
			mismatched = append(mismatched, cp)
		}
	}
	if len(mismatched) > 0 {
		return skipped, &ValidationError{Mismatched: mismatched}
	}
	return skipped, nil
}
