package seeder

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

var (
	Roles     = []string{"client", "viewer"}
	OSes      = []string{"windows", "linux", "darwin", "ubuntu", "debian", "arch", "kali", "fedora"}
	Arches    = []string{"amd64", "arm64", "x86", "arm"}
	Countries = []string{
		"US", "GB", "DE", "FR", "ES", "CA", "AU", "IN", "BR", "ZA",
		"JP", "KR", "CN", "SG", "SE", "NO", "DK", "FI", "PL", "MX",
	}

	hostPrefixes = []string{"desk", "laptop", "vm", "srv", "pc"}
	firstNames   = []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi"}
)

const (
	MinMonitors = 1
	MaxMonitors = 3

	hostAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Latency bands for ping_ms, inclusive.
var (
	NormalPing   = [2]int{10, 400}
	DegradedPing = [2]int{400, 2000}
)

type DataGenerator struct {
	rand *rand.Rand
}

func NewDataGenerator() *DataGenerator {
	return NewDataGeneratorWithSeed(time.Now().UnixNano())
}

// NewDataGeneratorWithSeed returns a generator whose whole output, identifiers
// included, is reproducible for the same seed.
func NewDataGeneratorWithSeed(seed int64) *DataGenerator {
	return &DataGenerator{rand: rand.New(rand.NewSource(seed))}
}

// Record builds one client. nowMs is the generation time shared by the batch.
func (g *DataGenerator) Record(nowMs int64, onlineRate float64) ClientRecord {
	return ClientRecord{
		ID:       g.generateID(),
		HWID:     g.generateID(),
		Role:     g.pick(Roles),
		Host:     g.generateHost(),
		OS:       g.pick(OSes),
		Arch:     g.pick(Arches),
		Version:  g.generateVersion(),
		User:     g.generateUser(),
		Monitors: g.between(MinMonitors, MaxMonitors),
		Country:  g.pick(Countries),
		LastSeen: nowMs - g.rand.Int63n(LastSeenWindow.Milliseconds()+1),
		Online:   g.rand.Float64() < onlineRate,
		PingMs:   g.generatePing(),
	}
}

// Batches generates count records and hands them to yield in groups of
// batchSize, the last group possibly shorter. The slice passed to yield is
// reused and only valid for the duration of the call. Generation stops at the
// first error returned by yield.
func (g *DataGenerator) Batches(count, batchSize int, nowMs int64, onlineRate float64, yield func([]ClientRecord) error) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	batch := make([]ClientRecord, 0, bufferSize(count, batchSize))

	for i := 0; i < count; i++ {
		batch = append(batch, g.Record(nowMs, onlineRate))
		if len(batch) >= batchSize {
			if err := yield(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		return yield(batch)
	}
	return nil
}

func (g *DataGenerator) generateID() string {
	id, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		// math/rand never fails to read
		panic(fmt.Sprintf("failed to generate uuid: %v", err))
	}
	return hex.EncodeToString(id[:])
}

func (g *DataGenerator) generateHost() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = hostAlphabet[g.rand.Intn(len(hostAlphabet))]
	}
	return g.pick(hostPrefixes) + "-" + string(suffix)
}

func (g *DataGenerator) generateUser() string {
	return fmt.Sprintf("%s%d", g.pick(firstNames), g.between(1, 9999))
}

func (g *DataGenerator) generateVersion() string {
	return fmt.Sprintf("%d.%d.%d", g.between(0, 5), g.between(0, 20), g.between(0, 9))
}

func (g *DataGenerator) generatePing() *int {
	var ping int
	switch g.rand.Intn(3) {
	case 0:
		return nil
	case 1:
		ping = g.between(NormalPing[0], NormalPing[1])
	default:
		ping = g.between(DegradedPing[0], DegradedPing[1])
	}
	return &ping
}

func (g *DataGenerator) pick(values []string) string {
	return values[g.rand.Intn(len(values))]
}

// between returns a uniform int in [lo, hi].
func (g *DataGenerator) between(lo, hi int) int {
	return lo + g.rand.Intn(hi-lo+1)
}
