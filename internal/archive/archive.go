// Package archive keeps a permanent copy of each closed register month in MongoDB.
package archive

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Simplici0/spicebooks/internal/ledger"
)

const collectionName = "register_snapshots"

// EntryDoc is the archived form of a stock entry.
type EntryDoc struct {
	ID       int64   `bson:"id"`
	ItemName string  `bson:"item_name"`
	Date     string  `bson:"date"`
	Opening  float64 `bson:"opening"`
	Inbound  float64 `bson:"inbound"`
	Outbound float64 `bson:"outbound"`
	Wastage  float64 `bson:"wastage"`
	Closing  float64 `bson:"closing"`
}

// SummaryDoc is the archived form of the monthly totals.
type SummaryDoc struct {
	Entries       int     `bson:"entries"`
	TotalOpening  float64 `bson:"total_opening"`
	TotalInbound  float64 `bson:"total_inbound"`
	TotalOutbound float64 `bson:"total_outbound"`
	TotalWastage  float64 `bson:"total_wastage"`
	TotalClosing  float64 `bson:"total_closing"`
}

// Snapshot is one register month as archived.
type Snapshot struct {
	Register   string     `bson:"register"`
	Month      string     `bson:"month"`
	Entries    []EntryDoc `bson:"entries"`
	Summary    SummaryDoc `bson:"summary"`
	ExportKey  string     `bson:"export_key,omitempty"`
	ArchivedAt time.Time  `bson:"archived_at"`
}

// NewSnapshot converts a register month into its archived form.
func NewSnapshot(register ledger.Register, month string, entries []ledger.Entry, summary ledger.Summary, archivedAt time.Time) Snapshot {
	docs := make([]EntryDoc, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, EntryDoc{
			ID:       e.ID,
			ItemName: e.ItemName,
			Date:     ledger.FormatDay(e.Date),
			Opening:  e.Opening,
			Inbound:  e.Inbound,
			Outbound: e.Outbound,
			Wastage:  e.Wastage,
			Closing:  e.Closing,
		})
	}
	return Snapshot{
		Register:   string(register),
		Month:      month,
		Entries:    docs,
		Summary:    SummaryDoc(summary),
		ArchivedAt: archivedAt.UTC(),
	}
}

// MongoArchive stores snapshots in the register_snapshots collection.
type MongoArchive struct {
	client *mongo.Client
	dbName string
}

// NewMongoArchive connects to MongoDB and verifies the connection.
func NewMongoArchive(ctx context.Context, uri, dbName string) (*MongoArchive, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoArchive{client: client, dbName: dbName}, nil
}

// SaveRegisterSnapshot upserts the snapshot keyed by register and month, so a
// re-run for the same month replaces the earlier copy.
func (a *MongoArchive) SaveRegisterSnapshot(ctx context.Context, snap Snapshot) error {
	coll := a.client.Database(a.dbName).Collection(collectionName)
	filter := bson.D{{Key: "register", Value: snap.Register}, {Key: "month", Value: snap.Month}}
	if _, err := coll.ReplaceOne(ctx, filter, snap, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("save %s snapshot for %s: %w", snap.Register, snap.Month, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (a *MongoArchive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}
