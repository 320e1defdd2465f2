// Package id generates ULIDs for runs and trade events.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Seed from crypto/rand so run IDs are unpredictable.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string for the current time.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// only possible if the monotonic entropy overflows within one millisecond
		panic(err)
	}
	return id.String()
}

// Generator produces ULIDs from caller-supplied times with a seeded entropy
// source, so the same seed and the same sequence of times always give the
// same IDs. A Generator is not safe for concurrent use.
type Generator struct {
	entropy io.Reader
}

func NewGenerator(seed int64) *Generator {
	return &Generator{entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

// At returns the next ULID stamped with t. Times before the Unix epoch are
// stamped 0 and times past the ULID range are stamped with its maximum.
func (g *Generator) At(t time.Time) string {
	id, err := ulid.New(stamp(t), g.entropy)
	if err != nil {
		panic(err)
	}
	return id.String()
}

func stamp(t time.Time) uint64 {
	ms := t.UnixMilli()
	switch {
	case ms < 0:
		return 0
	case uint64(ms) > ulid.MaxTime():
		return ulid.MaxTime()
	default:
		return uint64(ms)
	}
}
