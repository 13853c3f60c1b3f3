package stats

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"emailstats/internal/constants"
	"emailstats/internal/window"
	errs "emailstats/pkg/errors"
	"emailstats/pkg/metrics"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(constants.StatsCollectionName),
	}
}

func (r *MongoRepository) Put(ctx context.Context, rec Record) (err error) {
	start := time.Now()
	defer func() { observeMongo("put", start, err) }()

	rec.Timestamp = rec.Timestamp.UTC()
	filter := bson.M{"day": rec.Day, "ts": rec.Timestamp}

	_, err = r.collection.ReplaceOne(ctx, filter, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return errs.ErrPersistence.WithCause(err).WithDetail("operation", "put")
	}

	return nil
}

func (r *MongoRepository) Query(ctx context.Context, w window.Window) (records []Record, err error) {
	start := time.Now()
	defer func() { observeMongo("query", start, err) }()

	filter := bson.M{
		"day": w.Day,
		"ts":  bson.M{"$gte": w.Start.UTC(), "$lte": w.End.UTC()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "ts", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.ErrPersistence.WithCause(err).WithDetail("operation", "query")
	}
	defer cursor.Close(ctx)

	records = make([]Record, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, errs.ErrPersistence.WithCause(err).WithDetail("operation", "decode")
	}

	for i := range records {
		records[i].Timestamp = records[i].Timestamp.UTC()
	}

	return records, nil
}

func observeMongo(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ObserveDatabaseQuery(constants.StorageDriverMongoDB, operation, status, time.Since(start))
}
