package store

import (
	"fmt"
)

// Option is the functional option that is applied to the exporter instance
// to configure its parameters.
type Option func(*Parameters)

// Parameters is the set of parameters that must be configured for the exporter.
type Parameters struct {
	// WriteBatchSize defines the size of the batched header write.
	// Headers are written in batches not to thrash the underlying Datastore with writes.
	WriteBatchSize int
}

// DefaultParameters returns the default params to configure the exporter.
func DefaultParameters() Parameters {
	return Parameters{
		WriteBatchSize: 2048,
	}
}

const errSuffix = "value should be positive and non-zero"

func (p *Parameters) Validate() error {
	if p.WriteBatchSize <= 0 {
		return fmt.Errorf("invalid write batch size:%s", errSuffix)
	}
	return nil
}

// WithWriteBatchSize is a functional option that configures the
// `WriteBatchSize` parameter.
func WithWriteBatchSize(size int) Option {
	return func(p *Parameters) {
		p.WriteBatchSize = size
	}
}
