package seeder

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

var (
	hexID      = regexp.MustCompile(`^[0-9a-f]{32}$`)
	hostFormat = regexp.MustCompile(`^(desk|laptop|vm|srv|pc)-[a-z0-9]{6}$`)
	userFormat = regexp.MustCompile(`^(alice|bob|carol|dave|erin|frank|grace|heidi)[0-9]{1,4}$`)
	verFormat  = regexp.MustCompile(`^[0-5]\.([0-9]|1[0-9]|20)\.[0-9]$`)
)

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func TestRecordRanges(t *testing.T) {
	gen := NewDataGeneratorWithSeed(42)
	nowMs := time.Now().UnixMilli()
	window := LastSeenWindow.Milliseconds()

	for i := 0; i < 5000; i++ {
		r := gen.Record(nowMs, 0.5)

		if !hexID.MatchString(r.ID) || !hexID.MatchString(r.HWID) {
			t.Fatalf("Expected 32 hex char identifiers, got id=%q hwid=%q", r.ID, r.HWID)
		}
		if r.ID == r.HWID {
			t.Fatalf("Expected independent id and hwid, both were %q", r.ID)
		}
		if !contains(Roles, r.Role) {
			t.Errorf("Expected role in %v, got %q", Roles, r.Role)
		}
		if !contains(OSes, r.OS) {
			t.Errorf("Expected os in %v, got %q", OSes, r.OS)
		}
		if !contains(Arches, r.Arch) {
			t.Errorf("Expected arch in %v, got %q", Arches, r.Arch)
		}
		if !contains(Countries, r.Country) {
			t.Errorf("Expected country in %v, got %q", Countries, r.Country)
		}
		if r.Monitors < MinMonitors || r.Monitors > MaxMonitors {
			t.Errorf("Expected monitors within [%d, %d], got %d", MinMonitors, MaxMonitors, r.Monitors)
		}
		if r.LastSeen > nowMs || nowMs-r.LastSeen > window {
			t.Errorf("Expected last_seen within 7 days before %d, got %d", nowMs, r.LastSeen)
		}
		if !hostFormat.MatchString(r.Host) {
			t.Errorf("Expected <prefix>-<6 chars> host, got %q", r.Host)
		}
		if !userFormat.MatchString(r.User) {
			t.Errorf("Expected <name><number> user, got %q", r.User)
		}
		if !verFormat.MatchString(r.Version) {
			t.Errorf("Expected x.y.z version, got %q", r.Version)
		}
		if r.PingMs != nil && (*r.PingMs < NormalPing[0] || *r.PingMs > DegradedPing[1]) {
			t.Errorf("Expected ping within the latency bands, got %d", *r.PingMs)
		}
	}
}

func TestPingBandsAllOccur(t *testing.T) {
	gen := NewDataGeneratorWithSeed(7)
	var absent, normal, degraded int

	for i := 0; i < 3000; i++ {
		r := gen.Record(0, 0)
		switch {
		case r.PingMs == nil:
			absent++
		case *r.PingMs <= NormalPing[1]:
			normal++
		default:
			degraded++
		}
	}

	if absent == 0 || normal == 0 || degraded == 0 {
		t.Errorf("Expected all ping variants, got absent=%d normal=%d degraded=%d", absent, normal, degraded)
	}
}

func TestOnlineRateBounds(t *testing.T) {
	gen := NewDataGeneratorWithSeed(1)

	for i := 0; i < 2000; i++ {
		if gen.Record(0, 0).Online {
			t.Fatal("Expected no online record at online rate 0")
		}
		if !gen.Record(0, 1).Online {
			t.Fatal("Expected no offline record at online rate 1")
		}
	}
}

func TestSeedReproducible(t *testing.T) {
	a := NewDataGeneratorWithSeed(99).Record(1000, 0.5)
	b := NewDataGeneratorWithSeed(99).Record(1000, 0.5)

	if a.ID != b.ID || a.Host != b.Host || a.LastSeen != b.LastSeen {
		t.Errorf("Expected identical records for the same seed, got %+v and %+v", a, b)
	}
}

func TestBatchesSizes(t *testing.T) {
	tests := []struct {
		count, batch int
		want         []int
	}{
		{0, 500, nil},
		{1, 500, []int{1}},
		{500, 500, []int{500}},
		{1200, 500, []int{500, 500, 200}},
		{7, 3, []int{3, 3, 1}},
	}

	for _, tt := range tests {
		gen := NewDataGeneratorWithSeed(3)
		var got []int
		err := gen.Batches(tt.count, tt.batch, 0, 0.5, func(batch []ClientRecord) error {
			got = append(got, len(batch))
			return nil
		})
		if err != nil {
			t.Fatalf("Batches(%d, %d) failed: %v", tt.count, tt.batch, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("Expected Batches(%d, %d) to yield %v, got %v", tt.count, tt.batch, tt.want, got)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Expected Batches(%d, %d) to yield %v, got %v", tt.count, tt.batch, tt.want, got)
				break
			}
		}
	}
}

func TestBatchesStopsOnError(t *testing.T) {
	gen := NewDataGeneratorWithSeed(5)
	boom := errors.New("boom")
	calls := 0

	err := gen.Batches(1000, 100, 0, 0.5, func(batch []ClientRecord) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})

	if !errors.Is(err, boom) {
		t.Fatalf("Expected yield error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected generation to stop after 2 batches, got %d", calls)
	}
}

func TestValuesColumnOrder(t *testing.T) {
	ping := 120
	r := ClientRecord{
		ID: "a", HWID: "b", Role: "client", Host: "pc-abc123", OS: "linux", Arch: "amd64",
		Version: "1.2.3", User: "bob12", Monitors: 2, Country: "DE", LastSeen: 10,
		Online: true, PingMs: &ping,
	}

	values := r.Values()
	if len(values) != len(ClientColumns) {
		t.Fatalf("Expected %d values, got %d", len(ClientColumns), len(values))
	}
	if values[0] != "a" || values[9] != "DE" || values[11] != 1 || values[12] != 120 {
		t.Errorf("Expected ClientColumns value order, got %v", values)
	}

	r.PingMs = nil
	r.Online = false
	values = r.Values()
	if values[11] != 0 || values[12] != nil {
		t.Errorf("Expected offline and NULL ping, got online=%v ping=%v", values[11], values[12])
	}
}
