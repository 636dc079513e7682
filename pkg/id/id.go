// Package id issues run identifiers.
package id

import (
	cryptoRand "crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out ULIDs that sort by creation time, including runs
// started within the same millisecond.
type Generator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
}

// NewGenerator reads entropy from r; nil means crypto/rand. now defaults to
// time.Now.
func NewGenerator(r io.Reader, now func() time.Time) *Generator {
	if r == nil {
		r = cryptoRand.Reader
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{
		now:     now,
		entropy: ulid.Monotonic(r, 0),
	}
}

func (g *Generator) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, err := ulid.New(ulid.Timestamp(g.now().UTC()), g.entropy)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

var std = NewGenerator(nil, nil)

// New returns a fresh run ID from the package generator.
func New() string {
	s, err := std.New()
	if err != nil {
		// only possible if the clock runs backwards past the ULID epoch or
		// crypto/rand fails
		panic(err)
	}
	return s
}

// Time extracts the creation time encoded in a run ID.
func Time(runID string) (time.Time, error) {
	u, err := ulid.ParseStrict(runID)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()).UTC(), nil
}
