package header

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Header is a single block header as served by a source.
// Apart from Hash, its fields are carried as-is and not interpreted during sync.
type Header struct {
	Hash       Hash   `json:"hash"`
	PrevHash   Hash   `json:"previousblockhash"`
	MerkleRoot string `json:"merkleroot,omitempty"`
	Version    int32  `json:"version"`
	Time       int64  `json:"time"`
	// Bits is the compact difficulty target, hex-encoded as served by sources.
	Bits  string `json:"bits"`
	Nonce uint64 `json:"nonce"`
}

// Validate performs basic validation to check for missed/incorrect fields.
func (h *Header) Validate() error {
	if h == nil {
		return fmt.Errorf("header: nil header")
	}
	if h.Hash.IsZero() {
		return fmt.Errorf("header: empty hash")
	}
	if _, err := ParseBits(h.Bits); err != nil {
		return err
	}
	return nil
}

// Copy returns a shallow copy of the header.
func (h *Header) Copy() *Header {
	cp := *h
	return &cp
}

func (h *Header) String() string {
	return h.Hash.String()
}

// MarshalBinary encodes the header for storage.
func (h *Header) MarshalBinary() ([]byte, error) {
	return json.Marshal(h)
}

// UnmarshalBinary decodes the header from storage.
func (h *Header) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, h)
}

// ParseBits reinterprets a hex-encoded compact difficulty target as an integer.
func ParseBits(bits string) (uint32, error) {
	bits = strings.TrimPrefix(strings.TrimPrefix(bits, "0x"), "0X")
	if bits == "" {
		return 0, fmt.Errorf("header: empty bits")
	}
	v, err := strconv.ParseUint(bits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("header: invalid bits %q: %w", bits, err)
	}
	return uint32(v), nil
}
