package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureStatsIndexes creates the unique (day, ts) key that makes repeated
// writes of the same record overwrite instead of duplicate.
func EnsureStatsIndexes(ctx context.Context, db *mongo.Database, collectionName string) error {
	collection := db.Collection(collectionName)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "day", Value: 1}, {Key: "ts", Value: 1}},
			Options: options.Index().SetName("idx_email_stats_day_ts").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "ts", Value: 1}},
			Options: options.Index().SetName("idx_email_stats_ts"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
