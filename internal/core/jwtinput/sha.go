package jwtinput

import (
	"crypto/sha256"
	"encoding"
	"encoding/binary"

	perr "stealthbridge/internal/platform/errors"
)

const shaBlock = 64

// PartialSHA256 hashes the whole 64 byte blocks of data that end at or before until
// It returns the intermediate state words and the unhashed remainder
func PartialSHA256(data []byte, until int) ([]uint32, []byte, error) {
	if until < 0 || until > len(data) {
		return nil, nil, perr.InvalidArgf("precompute index %d out of range", until)
	}
	cut := (until / shaBlock) * shaBlock

	h := sha256.New()
	_, _ = h.Write(data[:cut])
	state, err := h.(encoding.BinaryMarshaler).MarshalBinary()
	if err != nil {
		return nil, nil, perr.Wrap(err, perr.ErrorCodeUnknown, "sha256 state")
	}

	// state layout: 4 byte magic, eight big endian words, pending block, length
	words := make([]uint32, 8)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(state[4+4*i:])
	}
	return words, data[cut:], nil
}
