// Package id derives the identifiers the simulator hands out: transaction
// ids and account/contract addresses. Both are ULIDs, so they sort by
// generation time.
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

// generator hands out monotonic ULIDs. ulid.Monotonic keeps ids produced
// within the same millisecond lexicographically increasing.
type generator struct {
	mu   sync.Mutex
	mono io.Reader
}

func newGenerator() *generator {
	// Seed a PRNG from crypto/rand so ULID entropy is unpredictable.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &generator{mono: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

func (g *generator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), g.mono)
	if err != nil {
		// Errors are extremely unlikely unless time goes backwards or entropy fails.
		panic(err)
	}
	return id.String()
}

// Transaction ids and addresses draw from separate generators so a burst
// of contract deployments never perturbs the monotonic ordering of
// transaction ids within a millisecond.
var (
	txs   = newGenerator()
	addrs = newGenerator()
)

// New returns a transaction id. Ids sort by submission time, which keeps
// transfer records and SQLite indexes in order without a separate
// sequence column.
func New() string {
	return txs.next()
}

// NewAddress returns a fresh account or contract address.
func NewAddress() string {
	return addrs.next()
}
