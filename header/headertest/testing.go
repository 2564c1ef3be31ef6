package headertest

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	mrand "math/rand"
	"sync"

	"github.com/celestiaorg/headersync/header"
)

// DefaultBits is the compact difficulty target put on generated headers.
const DefaultBits = "1d00ffff"

const (
	genesisTime = int64(1231006505)
	blockTime   = int64(600)
)

// Generator produces a deterministic chain of linked headers.
// Heights start at 0 with a genesis whose predecessor is header.ZeroHash.
type Generator struct {
	lk      sync.Mutex
	seed    int64
	headers []*header.Header
}

// NewGenerator creates a Generator. Generators with the same seed produce the same chain.
func NewGenerator(seed int64) *Generator {
	return &Generator{seed: seed}
}

// Head returns the last generated header, generating the genesis if needed.
func (g *Generator) Head() *header.Header {
	g.lk.Lock()
	defer g.lk.Unlock()
	if len(g.headers) == 0 {
		g.next()
	}
	return g.headers[len(g.headers)-1]
}

// Height returns the height of the last generated header, or 0 if none was generated.
func (g *Generator) Height() uint64 {
	g.lk.Lock()
	defer g.lk.Unlock()
	if len(g.headers) == 0 {
		return 0
	}
	return uint64(len(g.headers) - 1)
}

// NextHeader generates the next header on top of the head.
func (g *Generator) NextHeader() *header.Header {
	g.lk.Lock()
	defer g.lk.Unlock()
	return g.next()
}

// GenHeaders generates num headers on top of the head.
func (g *Generator) GenHeaders(num int) []*header.Header {
	g.lk.Lock()
	defer g.lk.Unlock()
	out := make([]*header.Header, num)
	for i := range out {
		out[i] = g.next()
	}
	return out
}

// GenUpTo generates headers until the chain contains the given height.
func (g *Generator) GenUpTo(height uint64) {
	g.lk.Lock()
	defer g.lk.Unlock()
	for uint64(len(g.headers)) <= height {
		g.next()
	}
}

// Headers returns all generated headers indexed by height.
func (g *Generator) Headers() []*header.Header {
	g.lk.Lock()
	defer g.lk.Unlock()
	out := make([]*header.Header, len(g.headers))
	copy(out, g.headers)
	return out
}

// Range returns generated headers in [from, to).
func (g *Generator) Range(from, to uint64) []*header.Header {
	g.lk.Lock()
	defer g.lk.Unlock()
	if to > uint64(len(g.headers)) {
		to = uint64(len(g.headers))
	}
	if from >= to {
		return nil
	}
	out := make([]*header.Header, to-from)
	copy(out, g.headers[from:to])
	return out
}

func (g *Generator) next() *header.Header {
	height := uint64(len(g.headers))
	prev := header.ZeroHash
	if height > 0 {
		prev = g.headers[height-1].Hash
	}
	h := NewHeader(prev, height, g.seed)
	g.headers = append(g.headers, h)
	return h
}

// NewHeader builds a header linked to prev. The salt distinguishes otherwise identical
// headers, e.g. to build competing forks.
func NewHeader(prev header.Hash, height uint64, salt int64) *header.Header {
	h := &header.Header{
		PrevHash: prev,
		Version:  1,
		Time:     genesisTime + int64(height)*blockTime,
		Bits:     DefaultBits,
		Nonce:    uint64(salt)<<32 | height,
	}
	h.MerkleRoot = hex.EncodeToString(digest([]byte(fmt.Sprintf("%d/%d", salt, height))))
	h.Hash = Hash(h)
	return h
}

// Fork builds num headers on top of parent, which sits at the given height.
func Fork(parent *header.Header, height uint64, num int, salt int64) []*header.Header {
	out := make([]*header.Header, num)
	prev := parent.Hash
	for i := range out {
		out[i] = NewHeader(prev, height+uint64(i)+1, salt)
		prev = out[i].Hash
	}
	return out
}

// Hash derives a double-SHA256 identity over the header fields.
func Hash(h *header.Header) header.Hash {
	buf := make([]byte, 0, 128)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.Version))
	buf = append(buf, h.PrevHash[:]...)
	buf = append(buf, h.MerkleRoot...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(h.Time))
	buf = append(buf, h.Bits...)
	buf = binary.LittleEndian.AppendUint64(buf, h.Nonce)

	var out header.Hash
	copy(out[:], digest(digest(buf)))
	return out
}

// RandHash returns a random hash.
func RandHash() header.Hash {
	var h header.Hash
	_, _ = mrand.Read(h[:]) //nolint:gosec
	return h
}

// Shuffle returns the headers in random order.
func Shuffle(headers []*header.Header) []*header.Header {
	out := make([]*header.Header, len(headers))
	copy(out, headers)
	mrand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] }) //nolint:gosec
	return out
}

func digest(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}
