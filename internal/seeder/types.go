package seeder

import "time"

const (
	ClientsTable     = "clients"
	DefaultBatchSize = 500

	// LastSeenWindow bounds how far back last_seen may be placed.
	LastSeenWindow = 7 * 24 * time.Hour
)

// ClientColumns is the column order of the clients table and of ClientRecord.Values.
var ClientColumns = []string{
	"id", "hwid", "role", "host", "os", "arch", "version",
	"user", "monitors", "country", "last_seen", "online", "ping_ms",
}

// ClientRecord is one simulated endpoint row.
type ClientRecord struct {
	ID       string
	HWID     string
	Role     string
	Host     string
	OS       string
	Arch     string
	Version  string
	User     string
	Monitors int
	Country  string
	LastSeen int64 // ms since epoch
	Online   bool
	PingMs   *int
}

// Values returns the record in ClientColumns order, ready for a positional insert.
func (r ClientRecord) Values() []interface{} {
	online := 0
	if r.Online {
		online = 1
	}
	var ping interface{}
	if r.PingMs != nil {
		ping = *r.PingMs
	}
	return []interface{}{
		r.ID, r.HWID, r.Role, r.Host, r.OS, r.Arch, r.Version,
		r.User, r.Monitors, r.Country, r.LastSeen, online, ping,
	}
}

// ProgressFunc is called after every committed batch.
type ProgressFunc func(inserted, total int)

type SeedConfig struct {
	Count      int          // Records to generate
	Truncate   bool         // Clear the table before seeding
	OnlineRate float64      // Probability a record is online, within [0, 1]
	Batch      int          // Batch size for inserts, 0 means DefaultBatchSize
	Progress   ProgressFunc // Optional
}

type SeedResult struct {
	Inserted int
	Batches  int
	Deleted  int64
	Duration time.Duration
}
