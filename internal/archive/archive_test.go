package archive

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Simplici0/spicebooks/internal/ledger"
)

func TestNewSnapshot(t *testing.T) {
	d, _ := ledger.ParseDay("2024-02-10")
	entries := []ledger.Entry{{ID: 2, Register: ledger.RegisterPodi, ItemName: "Putnalu Podi", Date: d, Opening: 40, Inbound: 20, Outbound: 15, Closing: 45}}
	ist := time.FixedZone("IST", 5*3600+1800)

	snap := NewSnapshot(ledger.RegisterPodi, "2024-02", entries, ledger.MonthlySummary(entries), time.Date(2024, 3, 1, 2, 0, 0, 0, ist))

	if snap.Register != "podi" || snap.Month != "2024-02" || len(snap.Entries) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Entries[0].Date != "2024-02-10" || snap.Entries[0].Closing != 45 {
		t.Fatalf("unexpected entry doc: %+v", snap.Entries[0])
	}
	if snap.ArchivedAt.Location() != time.UTC {
		t.Fatalf("archived_at must be UTC, got %v", snap.ArchivedAt.Location())
	}
}

func TestSnapshotBSONFieldNames(t *testing.T) {
	snap := NewSnapshot(ledger.RegisterRaw, "2024-02", nil, ledger.Summary{TotalInbound: 25}, time.Now())

	raw, err := bson.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["register"] != "raw" || doc["month"] != "2024-02" {
		t.Fatalf("unexpected document: %v", doc)
	}
	if _, ok := doc["export_key"]; ok {
		t.Fatalf("empty export key must be omitted")
	}
	if snap.Summary.TotalInbound != 25 {
		t.Fatalf("unexpected summary: %+v", snap.Summary)
	}
}
