// Package seedstream provides the deterministic random source used during
// land generation.
//
// A Stream is the ChaCha20 keystream under a key derived from (seed, tag).
// The n-th draw is a pure function of the key and n, so replaying the same
// sequence of calls reproduces every decision bit for bit.
package seedstream

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

// Stream is a deterministic pseudo-random source. It is not safe for
// concurrent use; each generation request owns its own streams.
type Stream struct {
	key    [32]byte
	cipher *chacha20.Cipher
	block  [64]byte
	pos    int
	calls  uint64
}

// New derives a stream from a seed and a tag (typically the style name).
func New(seed int64, tag string) *Stream {
	buf := make([]byte, 8, 8+len(tag))
	binary.LittleEndian.PutUint64(buf, uint64(seed))
	buf = append(buf, tag...)
	return fromKey(blake2b.Sum256(buf))
}

func fromKey(key [32]byte) *Stream {
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		// Key and nonce sizes are fixed above.
		panic(fmt.Sprintf("seedstream: %v", err))
	}
	s := &Stream{key: key, cipher: c}
	s.pos = len(s.block)
	return s
}

// Child derives an independent stream. It consumes one draw from the parent.
func (s *Stream) Child() *Stream {
	buf := make([]byte, 0, 40)
	buf = append(buf, s.key[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, s.Uint64())
	return fromKey(blake2b.Sum256(buf))
}

// Calls returns the number of draws taken so far.
func (s *Stream) Calls() uint64 {
	return s.calls
}

// Uint64 returns the next 64 random bits.
func (s *Stream) Uint64() uint64 {
	if s.pos+8 > len(s.block) {
		clear(s.block[:])
		s.cipher.XORKeyStream(s.block[:], s.block[:])
		s.pos = 0
	}
	v := binary.LittleEndian.Uint64(s.block[s.pos:])
	s.pos += 8
	s.calls++
	return v
}

// IntN returns a value in [0, n). It returns 0 when n <= 0.
func (s *Stream) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Uint64() % uint64(n))
}

// Range returns a value in [lo, hi]. When hi < lo it returns lo.
func (s *Stream) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.IntN(hi-lo+1)
}

// Float64 returns a value in [0, 1).
func (s *Stream) Float64() float64 {
	return float64(s.Uint64()>>11) / (1 << 53)
}

// Percent returns true with probability p/100. It always consumes one draw.
func (s *Stream) Percent(p float64) bool {
	return float64(s.IntN(100)) < math.Min(p, 100)
}

// Shuffle permutes n elements using the Fisher-Yates algorithm.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.IntN(i + 1)
		swap(i, j)
	}
}
