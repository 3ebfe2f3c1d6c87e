// internal/entropy/entropy.go
//
// Entropy sources for drawing new symbols.
// Responsibilities:
//   - ChaCha: ChaCha20 keystream, keyed from crypto/rand or a fixed seed.
//   - Daily:  HMAC(salt, date#n); everyone gets the same game on a given day.
//   - Noise:  folds analog noise samples into 32 bits (microcontroller builds).
//
// The engine only looks at one bit per draw, so none of these has to be
// cryptographically strong; ChaCha is simply the cheapest good stream around.
package entropy

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/crypto/chacha20"
)

// Mode names a source for configuration.
type Mode string

const (
	ModeChaCha Mode = "chacha"
	ModeDaily  Mode = "daily"
)

// ChaCha reads 32-bit values from a ChaCha20 keystream.
type ChaCha struct {
	c   *chacha20.Cipher
	buf [4]byte
}

// NewChaCha keys a stream from crypto/rand.
func NewChaCha() (*ChaCha, error) {
	var key [chacha20.KeySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	return newChaCha(key)
}

// NewSeededChaCha keys a stream from seed, for reproducible games.
func NewSeededChaCha(seed uint64) (*ChaCha, error) {
	var key [chacha20.KeySize]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	return newChaCha(key)
}

func newChaCha(key [chacha20.KeySize]byte) (*ChaCha, error) {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, fmt.Errorf("chacha20: %w", err)
	}
	return &ChaCha{c: c}, nil
}

func (s *ChaCha) NextU32() uint32 {
	s.buf = [4]byte{}
	s.c.XORKeyStream(s.buf[:], s.buf[:])
	return binary.LittleEndian.Uint32(s.buf[:])
}

// Daily derives values from HMAC-SHA256(salt, "YYYY-MM-DD#n") where n counts
// draws. The date is fixed when the source is built.
type Daily struct {
	salt []byte
	date string
	n    uint64
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// NewDaily builds the source for the UTC day containing t.
func NewDaily(t time.Time, salt string) *Daily {
	return &Daily{salt: []byte(salt), date: DateKey(t)}
}

func (d *Daily) NextU32() uint32 {
	h := hmac.New(sha256.New, d.salt)
	h.Write([]byte(d.date))
	h.Write([]byte("#"))
	h.Write([]byte(strconv.FormatUint(d.n, 10)))
	d.n++
	sum := h.Sum(nil)
	return binary.BigEndian.Uint32(sum[:4])
}

// Sampler reads one raw analog conversion, e.g. from a floating ADC pin.
type Sampler interface {
	Sample() uint16
}

// Noise folds eight samples into one value, shifting by a nibble between
// samples so the noisy low bits of each conversion spread across the word.
type Noise struct {
	s Sampler
}

func NewNoise(s Sampler) *Noise { return &Noise{s: s} }

func (n *Noise) NextU32() uint32 {
	var v uint32
	for i := 0; i < 8; i++ {
		if i > 0 {
			v <<= 4
		}
		v += uint32(n.s.Sample())
	}
	return v
}

// Source is what every mode produces.
type Source interface {
	NextU32() uint32
}

// New builds the source named by mode. now is used by the daily mode.
func New(mode Mode, salt string, now time.Time) (Source, error) {
	switch mode {
	case ModeChaCha, "":
		return NewChaCha()
	case ModeDaily:
		if salt == "" {
			return nil, fmt.Errorf("entropy %q: salt required", mode)
		}
		return NewDaily(now, salt), nil
	default:
		return nil, fmt.Errorf("unknown entropy mode %q", mode)
	}
}
