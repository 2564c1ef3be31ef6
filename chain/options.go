package chain

import "fmt"

// Option is a functional option for Chain.
type Option func(*Parameters)

// Parameters configure a Chain.
type Parameters struct {
	// OrphanLimit bounds the number of headers kept while their parent is unknown.
	// The least recently added orphans are dropped first.
	OrphanLimit int
}

// DefaultParameters returns the default Chain parameters.
func DefaultParameters() Parameters {
	return Parameters{
		OrphanLimit: 1 << 16,
	}
}

// Validate checks the parameters are sane.
func (p *Parameters) Validate() error {
	if p.OrphanLimit <= 0 {
		return fmt.Errorf("chain: invalid orphan limit: %d", p.OrphanLimit)
	}
	return nil
}

// WithOrphanLimit sets the maximum amount of buffered orphan headers.
func WithOrphanLimit(limit int) Option {
	return func(p *Parameters) {
		p.OrphanLimit = limit
	}
}
