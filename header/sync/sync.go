package sync

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	logging "github.com/ipfs/go-log/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/celestiaorg/headersync/chain"
	"github.com/celestiaorg/headersync/header"
	"github.com/celestiaorg/headersync/libs/utils"
	"github.com/celestiaorg/headersync/source"
)

var (
	log    = logging.Logger("header/sync")
	tracer = otel.Tracer("header/sync")
)

// Phase is a step of a sync run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetchingRoot
	PhaseBuildingChain
	PhaseValidating
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetchingRoot:
		return "fetching-root"
	case PhaseBuildingChain:
		return "building-chain"
	case PhaseValidating:
		return "validating"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Exporter receives the assembled HeaderStore of a finished sync.
type Exporter interface {
	Export(ctx context.Context, entries []StoreEntry) error
}

// Syncer builds a header chain on top of a root header by fetching a height range
// from one or more sources.
//
// A run goes through the following phases:
//  1. FetchingRoot: the root header is requested by its height, re-rooted and used
//     to create the chain. The network genesis is requested along.
//  2. BuildingChain: the range above the root is either fetched from the first
//     source alone, or partitioned across all sources and fetched concurrently.
//     Every source is told the addresses of the others, so it avoids asking them.
//  3. Validating: chunks are flattened into a HeaderStore checked for gaps, and
//     checkpoints sampled from the longest chain are checked against it.
//
// Any failed fetch fails the whole run. Gaps and failed checkpoints do not, they
// flag the Result as suspect instead.
type Syncer struct {
	sources []source.Source

	Params *Parameters

	clock    clock.Clock
	rnd      *rand.Rand
	exporter Exporter
	metrics  *metrics

	// stateLk protects state which represents the current or latest run
	stateLk sync.RWMutex
	state   State
	// fetched counts the headers received during the current run
	fetched atomic.Uint64
}

// NewSyncer creates a new instance of Syncer.
func NewSyncer(sources []source.Source, opts ...Options) (*Syncer, error) {
	params := DefaultParameters()
	for _, opt := range opts {
		opt(&params)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Syncer{
		sources: sources,
		Params:  &params,
		clock:   clock.New(),
		rnd:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec
	}, nil
}

// WithMetrics enables metrics collection for the Syncer.
func (s *Syncer) WithMetrics() error {
	m, err := newMetrics()
	if err != nil {
		return err
	}
	s.metrics = m
	return nil
}

// SetExporter sets where the HeaderStore of a finished run is written to.
func (s *Syncer) SetExporter(e Exporter) {
	s.exporter = e
}

// State collects all the information about a sync run.
type State struct {
	ID                   uint64 // incrementing ID of a run
	Phase                Phase
	FromHeight, ToHeight uint64 // the root and the last height to sync
	Fetched              uint64 // amount of headers received from sources
	Height               uint64 // height of the longest chain tip once built
	Start, End           time.Time
	Error                error // the error that failed the run
}

// Finished returns true if the run is over, either way.
func (s State) Finished() bool {
	return s.Phase == PhaseDone || s.Phase == PhaseFailed
}

// Duration returns the duration of the run.
func (s State) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// State reports state of the current (if in progress), or last run (if finished).
func (s *Syncer) State() State {
	s.stateLk.RLock()
	state := s.state
	s.stateLk.RUnlock()
	state.Fetched = s.fetched.Load()
	return state
}

// Result is the outcome of a run that got to validation.
type Result struct {
	State State
	Root  *header.RootHeader
	// Chain is the longest chain, root first.
	Chain []chain.Entry
	Stats ChainStats
	Store *HeaderStore
	// Checkpoints are the hashes sampled from Chain.
	Checkpoints []header.Hash
	// Gap is a *GapError when the HeaderStore does not cover the whole range.
	Gap error
	// Validation is a *ValidationError when checkpoints are not matched by Chain.
	Validation error
	// Export is the error of writing the HeaderStore out, if any.
	Export error
}

// Suspect reports whether the run completed with gaps or failed checkpoints.
func (r *Result) Suspect() bool {
	return r.Gap != nil || r.Validation != nil
}

// Run performs a single sync run. It returns an error only if the run failed, the
// Result has to be checked for Suspect otherwise.
func (s *Syncer) Run(ctx context.Context) (_ *Result, err error) {
	ctx, span := tracer.Start(ctx, "sync/run", trace.WithAttributes(
		attribute.Int64("from", int64(s.Params.From)),
		attribute.Int64("to", int64(s.Params.To)),
		attribute.Bool("parallel", s.Params.Parallel),
		attribute.Int("sources", len(s.sources)),
	))
	defer func() {
		utils.SetStatusAndEnd(span, err)
	}()

	s.begin()
	assignments, err := s.plan()
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.setPhase(PhaseFetchingRoot)
	root, genesis, err := s.fetchRoot(ctx, s.sources[0])
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	c, err := chain.New(s.Params.Label, s.Params.ConfirmationDepth, root)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	asm := NewAssembler(c)

	s.setPhase(PhaseBuildingChain)
	f := &fetcher{
		genesis:  genesis,
		clock:    s.clock,
		metrics:  s.metrics,
		progress: func(n int) { s.fetched.Add(uint64(n)) },
	}
	chunks, err := s.build(ctx, f, asm, assignments)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.setPhase(PhaseValidating)
	res := &Result{Root: root}
	if err := s.validate(ctx, asm, chunks, res); err != nil {
		return nil, s.fail(ctx, err)
	}

	s.done(ctx, res)
	return res, nil
}

// plan partitions the range across sources, before any request is made.
func (s *Syncer) plan() ([]Assignment, error) {
	r := s.Params.Range()
	if len(s.sources) == 0 {
		if s.Params.Parallel {
			return nil, &RangeError{Range: r, Reason: "no sources to partition the range across"}
		}
		return nil, ErrNoSources
	}
	if !s.Params.Parallel {
		return Partition(r, 0, s.Params.Step)
	}
	return Partition(r, len(s.sources), s.Params.Step)
}

// fetchRoot resolves the root header by its height and the network genesis hash.
func (s *Syncer) fetchRoot(ctx context.Context, src source.Source) (*header.RootHeader, header.Hash, error) {
	from := s.Params.From
	r := Range{From: from, To: from + 1}

	hash, err := src.GetBlockHash(ctx, from)
	if err != nil {
		s.metrics.observeFailure(ctx, src.Address(), "GetBlockHash")
		return nil, header.Hash{}, &FetchError{Source: src.Address(), Op: "GetBlockHash", Range: r, Err: err}
	}
	h, err := src.GetBlockHeader(ctx, hash)
	if err != nil {
		s.metrics.observeFailure(ctx, src.Address(), "GetBlockHeader")
		return nil, header.Hash{}, &FetchError{Source: src.Address(), Op: "GetBlockHeader", Range: r, Err: err}
	}
	if h.Hash != hash {
		return nil, header.Hash{}, &FetchError{
			Source: src.Address(),
			Op:     "GetBlockHeader",
			Range:  r,
			Err:    fmt.Errorf("requested header %s, got %s", hash, h.Hash),
		}
	}
	root, err := header.NewRoot(h, from)
	if err != nil {
		return nil, header.Hash{}, err
	}

	genesis := hash
	if from != 0 {
		genesis, err = src.GetBlockHash(ctx, 0)
		if err != nil {
			s.metrics.observeFailure(ctx, src.Address(), "GetBlockHash")
			return nil, header.Hash{}, &FetchError{
				Source: src.Address(),
				Op:     "GetBlockHash",
				Range:  Range{From: 0, To: 1},
				Err:    err,
			}
		}
	}

	log.Infow("fetched root",
		"height", from,
		"hash", root.Hash,
		"bits", fmt.Sprintf("%#08x", root.CompactBits),
		"genesis", genesis,
	)
	return root, genesis, nil
}

// build fetches every assignment and inserts the results into the chain. All the fetches
// have to succeed, the first failure cancels the others.
func (s *Syncer) build(
	ctx context.Context,
	f *fetcher,
	asm *Assembler,
	assignments []Assignment,
) ([]Chunk, error) {
	chunks := make([]Chunk, len(assignments))
	fetch := func(ctx context.Context, i int) error {
		a := assignments[i]
		if a.Range.Empty() {
			return nil
		}
		src := s.sources[a.Source]
		start := s.clock.Now()
		chunk, err := f.fetchRange(ctx, src, a.Range, a.Step, s.excluded(a.Source))
		if err != nil {
			return err
		}
		added := asm.AddChunk(chunk)
		chunks[i] = chunk
		log.Infow("source done",
			"source", src.Address(),
			"range", a.Range,
			"step", a.Step,
			"headers", len(chunk.Items),
			"connected", added,
			"took", s.clock.Since(start),
		)
		return nil
	}

	if !s.Params.Parallel {
		for i := range assignments {
			if err := fetch(ctx, i); err != nil {
				return nil, err
			}
		}
		return chunks, nil
	}

	errg, ctx := errgroup.WithContext(ctx)
	for i := range assignments {
		errg.Go(func() error {
			return fetch(ctx, i)
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// excluded lists the addresses of every source besides the i-th one.
func (s *Syncer) excluded(i int) []string {
	out := make([]string, 0, len(s.sources)-1)
	for j, src := range s.sources {
		if j != i {
			out = append(out, src.Address())
		}
	}
	return out
}

// validate assembles the HeaderStore and checks the longest chain against checkpoints.
func (s *Syncer) validate(ctx context.Context, asm *Assembler, chunks []Chunk, res *Result) error {
	store, err := Assemble(chunks)
	var gapErr *GapError
	if err != nil && !errors.As(err, &gapErr) {
		return err
	}
	res.Store = store
	if err := store.Cover(s.Params.Range()); err != nil {
		errors.As(err, &gapErr)
		res.Gap = err
		s.metrics.observeGaps(ctx, len(gapErr.Gaps))
		log.Warnw("header store has gaps", "gaps", gapErr.Gaps)
	}

	if s.exporter != nil {
		if err := s.exporter.Export(ctx, store.Entries()); err != nil {
			res.Export = err
			log.Errorw("exporting header store", "err", err)
		}
	}

	res.Chain = asm.LongestChain()
	res.Stats = asm.Stats()
	res.Checkpoints = SampleCheckpoints(res.Chain, s.Params.Checkpoints, s.rnd)

	verr := &ValidationError{}
	if err := ValidateCheckpoints(asm.LongestChain(), res.Checkpoints); err != nil {
		errors.As(err, &verr)
	}
	skipped, err := ValidateTrusted(res.Chain, s.Params.TrustedCheckpoints)
	if len(skipped) > 0 {
		log.Warnw("trusted checkpoints outside of the synced range", "checkpoints", skipped)
	}
	var trustedErr *ValidationError
	if errors.As(err, &trustedErr) {
		verr.Mismatched = trustedErr.Mismatched
	}
	if failed := len(verr.Missing) + len(verr.Mismatched); failed > 0 {
		res.Validation = verr
		s.metrics.observeCheckpointFailures(ctx, failed)
	}
	return nil
}

func (s *Syncer) begin() {
	s.fetched.Store(0)
	s.stateLk.Lock()
	s.state = State{
		ID:         s.state.ID + 1,
		Phase:      PhaseIdle,
		FromHeight: s.Params.From,
		ToHeight:   s.Params.To,
		Start:      s.clock.Now(),
	}
	s.stateLk.Unlock()

	log.Infow("sync started",
		"from", s.Params.From,
		"to", s.Params.To,
		"step", s.Params.Step,
		"parallel", s.Params.Parallel,
		"sources", len(s.sources),
	)
}

func (s *Syncer) setPhase(p Phase) {
	s.stateLk.Lock()
	s.state.Phase = p
	s.stateLk.Unlock()
	log.Debugw("sync phase", "phase", p)
}

func (s *Syncer) fail(ctx context.Context, err error) error {
	s.stateLk.Lock()
	failedIn := s.state.Phase
	s.state.Phase = PhaseFailed
	s.state.Error = err
	s.state.End = s.clock.Now()
	state := s.state
	s.stateLk.Unlock()

	s.metrics.observeSync(ctx, PhaseFailed, state.Duration())
	log.Errorw("sync failed",
		"phase", failedIn,
		"fetched", s.fetched.Load(),
		"took", state.Duration(),
		"err", err,
	)
	return err
}

func (s *Syncer) done(ctx context.Context, res *Result) {
	s.stateLk.Lock()
	s.state.Phase = PhaseDone
	s.state.Height = res.Stats.Height
	s.state.End = s.clock.Now()
	state := s.state
	s.stateLk.Unlock()

	state.Fetched = s.fetched.Load()
	res.State = state
	s.metrics.observeSync(ctx, PhaseDone, state.Duration())

	log.Infow("sync finished",
		"from", state.FromHeight,
		"to", state.ToHeight,
		"fetched", state.Fetched,
		"chain_length", len(res.Chain),
		"store_length", res.Store.Len(),
		"orphans", res.Stats.Orphans,
		"reorgs", res.Stats.Reorgs,
		"checkpoints", res.Checkpoints,
		"valid", res.Validation == nil,
		"contiguous", res.Gap == nil,
		"took", state.Duration(),
	)
}
