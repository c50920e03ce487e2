package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elmolle/eggtrack/internal/domain/models"
)

func recordFilter(farmID, shedID, date string) bson.M {
	return bson.M{"farm_id": farmID, "shed_id": shedID, "date": date}
}

func zeroCountsDoc() bson.M {
	doc := make(bson.M, len(models.EggKeys))
	for _, k := range models.EggKeys {
		doc[string(k)] = 0
	}
	return doc
}

// FetchOrCreate returns the record for the given key, creating a zeroed one
// attributed to userID when absent. The create path is a single atomic
// upsert, so two racing calls against an absent key still yield exactly one
// record.
func (r *MongoDBRepository) FetchOrCreate(ctx context.Context, farmID, shedID, date, userID string) (*models.EggRecord, error) {
	meta := models.DeriveSectorMeta(shedID)
	now := time.Now().UTC()

	fresh := models.EggRecord{
		Date:      date,
		FarmID:    farmID,
		ShedID:    shedID,
		ShedLabel: meta.Label,
		Counts:    models.EmptyCounts(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if meta.Matched {
		fresh.SectorID = meta.SectorID
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var record models.EggRecord
	err := r.eggRecords().
		FindOneAndUpdate(ctx, recordFilter(farmID, shedID, date), bson.M{"$setOnInsert": fresh}, opts).
		Decode(&record)
	if err != nil {
		return nil, fmt.Errorf("fetch or create record %s/%s/%s: %w", farmID, shedID, date, err)
	}

	record.Counts = record.Counts.Normalize()
	return &record, nil
}

// FetchDay returns the record for the given key, or nil when absent. Pure
// read, no side effect.
func (r *MongoDBRepository) FetchDay(ctx context.Context, farmID, shedID, date string) (*models.EggRecord, error) {
	var record models.EggRecord
	err := r.eggRecords().FindOne(ctx, recordFilter(farmID, shedID, date)).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch record %s/%s/%s: %w", farmID, shedID, date, err)
	}

	record.Counts = record.Counts.Normalize()
	return &record, nil
}

// UpsertCounts writes the full counts map for the given key, replacing the
// prior map entirely: categories omitted from counts reset to zero. Notes are
// set only when non-empty, created_at only on first write.
func (r *MongoDBRepository) UpsertCounts(ctx context.Context, farmID, shedID, date string, counts models.EggCounts, notes, userID string) error {
	meta := models.DeriveSectorMeta(shedID)
	now := time.Now().UTC()

	set := bson.M{
		"date":       date,
		"farm_id":    farmID,
		"shed_id":    shedID,
		"shed_label": meta.Label,
		"counts":     counts.Normalize(),
		"user_id":    userID,
		"updated_at": now,
	}
	if meta.Matched {
		set["sector_id"] = meta.SectorID
	}
	if notes != "" {
		set["notes"] = notes
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}

	_, err := r.eggRecords().UpdateOne(ctx, recordFilter(farmID, shedID, date), update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert counts %s/%s/%s: %w", farmID, shedID, date, err)
	}
	return nil
}

// Increment applies delta to a single category, clamped to a floor of zero,
// and returns the resulting value. The clamp and the addition run inside a
// single server-side pipeline update with upsert, so concurrent increments
// on the same key serialize at the document and none are lost.
func (r *MongoDBRepository) Increment(ctx context.Context, farmID, shedID, date string, key models.EggKey, delta int, userID string) (int, error) {
	meta := models.DeriveSectorMeta(shedID)
	field := "counts." + string(key)

	set := bson.M{
		field:        bson.M{"$max": bson.A{0, bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$" + field, 0}}, delta}}}},
		"shed_label": meta.Label,
		"user_id":    userID,
		"created_at": bson.M{"$ifNull": bson.A{"$created_at", "$$NOW"}},
		"updated_at": "$$NOW",
	}
	if meta.Matched {
		set["sector_id"] = meta.SectorID
	}

	// First stage fills in every category over the default-zero map so a
	// freshly upserted document still carries the full key set.
	pipeline := bson.A{
		bson.M{"$set": bson.M{"counts": bson.M{"$mergeObjects": bson.A{zeroCountsDoc(), bson.M{"$ifNull": bson.A{"$counts", bson.M{}}}}}}},
		bson.M{"$set": set},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var record models.EggRecord
	err := r.eggRecords().
		FindOneAndUpdate(ctx, recordFilter(farmID, shedID, date), pipeline, opts).
		Decode(&record)
	if err != nil {
		return 0, fmt.Errorf("increment %s on %s/%s/%s: %w", key, farmID, shedID, date, err)
	}

	return record.Counts[key], nil
}

// ListByDateRange returns the shed's records whose date lies in the
// inclusive [startDate, endDate] range, sorted by date. Dates are zero-padded
// YYYY-MM-DD strings, so the lexicographic range matches the calendar range.
func (r *MongoDBRepository) ListByDateRange(ctx context.Context, farmID, shedID, startDate, endDate string, descending bool) ([]models.EggRecord, error) {
	filter := bson.M{
		"farm_id": farmID,
		"shed_id": shedID,
		"date":    bson.M{"$gte": startDate, "$lte": endDate},
	}

	order := 1
	if descending {
		order = -1
	}

	cursor, err := r.eggRecords().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: order}}))
	if err != nil {
		return nil, fmt.Errorf("list records %s/%s range %s..%s: %w", farmID, shedID, startDate, endDate, err)
	}
	defer cursor.Close(ctx)

	var records []models.EggRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode records %s/%s: %w", farmID, shedID, err)
	}

	for i := range records {
		records[i].Counts = records[i].Counts.Normalize()
	}
	return records, nil
}

// ListLastNDays returns records for the n calendar days ending at endDate
// inclusive, oldest first.
func (r *MongoDBRepository) ListLastNDays(ctx context.Context, farmID, shedID, endDate string, days int) ([]models.EggRecord, error) {
	startDate, err := WindowStart(endDate, days)
	if err != nil {
		return nil, err
	}
	return r.ListByDateRange(ctx, farmID, shedID, startDate, endDate, false)
}

// WindowStart computes the first date of an n-day window ending at endDate
// inclusive, rolling over month and year boundaries.
func WindowStart(endDate string, days int) (string, error) {
	if days < 1 {
		return "", fmt.Errorf("window must span at least 1 day, got %d", days)
	}

	end, err := time.Parse(models.DateLayout, endDate)
	if err != nil {
		return "", fmt.Errorf("invalid end date %q: %w", endDate, err)
	}

	return end.AddDate(0, 0, -(days - 1)).Format(models.DateLayout), nil
}
