package headertest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/headersync/header"
)

func TestGeneratorLinks(t *testing.T) {
	gen := NewGenerator(1)
	headers := gen.GenHeaders(50)
	require.Len(t, headers, 50)

	assert.True(t, headers[0].PrevHash.IsZero())
	for i := 1; i < len(headers); i++ {
		assert.Equal(t, headers[i-1].Hash, headers[i].PrevHash)
		require.NoError(t, headers[i].Validate())
	}
	assert.Equal(t, uint64(49), gen.Height())
}

func TestGeneratorDeterministic(t *testing.T) {
	a, b := NewGenerator(7), NewGenerator(7)
	a.GenUpTo(20)
	b.GenUpTo(20)
	assert.Equal(t, a.Headers(), b.Headers())

	c := NewGenerator(8)
	c.GenUpTo(20)
	assert.NotEqual(t, a.Head().Hash, c.Head().Hash)
}

func TestGeneratorRange(t *testing.T) {
	gen := NewGenerator(1)
	gen.GenUpTo(30)

	r := gen.Range(10, 20)
	require.Len(t, r, 10)
	assert.Equal(t, gen.Headers()[10], r[0])
	assert.Empty(t, gen.Range(20, 10))
	assert.Len(t, gen.Range(25, 100), 6)
}

func TestFork(t *testing.T) {
	gen := NewGenerator(1)
	gen.GenUpTo(10)
	parent := gen.Headers()[5]

	fork := Fork(parent, 5, 3, 99)
	require.Len(t, fork, 3)
	assert.Equal(t, parent.Hash, fork[0].PrevHash)
	assert.NotEqual(t, gen.Headers()[6].Hash, fork[0].Hash)
	assert.Equal(t, Hash(fork[2]), fork[2].Hash)

	var zero header.Hash
	assert.NotEqual(t, zero, RandHash())
}
