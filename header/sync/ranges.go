package sync

import "fmt"

// MaxStep caps the amount of headers requested in a single call.
const MaxStep = 2000

// Range is a half-open [From:To) interval of heights.
type Range struct {
	From, To uint64
}

// Len returns the amount of heights in the range.
func (r Range) Len() uint64 {
	if r.To <= r.From {
		return 0
	}
	return r.To - r.From
}

// Empty reports whether the range holds no heights.
func (r Range) Empty() bool {
	return r.Len() == 0
}

func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.From, r.To)
}

// Validate checks the range is not inverted.
func (r Range) Validate() error {
	if r.To < r.From {
		return &RangeError{Range: r, Reason: "end is below start"}
	}
	return nil
}

// Assignment is the sub-range a single source is responsible for.
type Assignment struct {
	// Source is the index of the source in the list given to Partition.
	Source int
	Range  Range
	// Step is the amount of headers requested per call.
	Step uint64
}

// Partition divides r across the given amount of sources. Every source gets
// len(r)/sources heights, and the last one also absorbs the remainder, so the
// assignments tile r exactly. A zero step is resolved to min(len(r)/sources, MaxStep).
// Zero sources fall back to a single assignment covering the whole range.
func Partition(r Range, sources int, step uint64) ([]Assignment, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if sources < 0 {
		return nil, &RangeError{Range: r, Sources: sources, Reason: "negative amount of sources"}
	}
	if sources == 0 {
		return []Assignment{{Range: r, Step: resolveStep(step, r.Len(), r.Len())}}, nil
	}

	total := r.Len()
	heightDelta := total / uint64(sources)
	extra := total % uint64(sources)
	step = resolveStep(step, heightDelta, total)

	out := make([]Assignment, sources)
	for i := range out {
		from := r.From + uint64(i)*heightDelta
		to := from + heightDelta
		if i == sources-1 {
			to += extra
		}
		out[i] = Assignment{Source: i, Range: Range{From: from, To: to}, Step: step}
	}
	return out, nil
}

// resolveStep turns the "auto" zero step into min(heightDelta, MaxStep). When there are
// fewer heights than sources heightDelta is zero, and the whole span is used instead.
func resolveStep(step, heightDelta, total uint64) uint64 {
	if step != 0 {
		return step
	}
	step = min(heightDelta, MaxStep)
	if step == 0 {
		step = min(total, MaxStep)
	}
	return max(step, 1)
}

// Tile splits r into consecutive chunks of step heights. If step does not divide the
// range, a final shorter chunk carries the remainder. A step covering the whole range
// yields a single chunk and an empty range yields none. A zero step means MaxStep.
func Tile(r Range, step uint64) []Range {
	total := r.Len()
	if total == 0 {
		return nil
	}
	if step == 0 {
		step = MaxStep
	}
	if step >= total {
		return []Range{r}
	}

	out := make([]Range, 0, total/step+1)
	from := r.From
	for ; from+step <= r.To; from += step {
		out = append(out, Range{From: from, To: from + step})
	}
	if remainder := total % step; remainder != 0 {
		out = append(out, Range{From: from, To: from + remainder})
	}
	return out
}
