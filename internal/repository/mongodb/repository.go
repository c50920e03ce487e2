package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elmolle/eggtrack/internal/domain/models"
)

const (
	eggRecordsCollection    = "egg_records"
	usersCollection         = "users"
	weeklyReportsCollection = "weekly_reports"
)

// EggRecordRepository defines the interface for the daily egg record store.
type EggRecordRepository interface {
	FetchOrCreate(ctx context.Context, farmID, shedID, date, userID string) (*models.EggRecord, error)
	FetchDay(ctx context.Context, farmID, shedID, date string) (*models.EggRecord, error)
	UpsertCounts(ctx context.Context, farmID, shedID, date string, counts models.EggCounts, notes, userID string) error
	Increment(ctx context.Context, farmID, shedID, date string, key models.EggKey, delta int, userID string) (int, error)
	ListByDateRange(ctx context.Context, farmID, shedID, startDate, endDate string, descending bool) ([]models.EggRecord, error)
	ListLastNDays(ctx context.Context, farmID, shedID, endDate string, days int) ([]models.EggRecord, error)
}

// UserRepository defines the interface for user profile documents.
type UserRepository interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	SaveUser(ctx context.Context, user models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, uid string, role models.Role, assignedShed string) error
	DeleteUser(ctx context.Context, uid string) error
}

// ReportRepository defines the interface for report snapshot storage.
type ReportRepository interface {
	SaveShedSummary(ctx context.Context, summary models.ShedSummary) error
}

// MongoDBRepository implements the repository interfaces for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
	}, nil
}

// EnsureIndexes creates the unique compound index that makes the
// one-record-per (farm, shed, date) invariant explicit in the store.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.eggRecords().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "farm_id", Value: 1},
			{Key: "shed_id", Value: 1},
			{Key: "date", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("farm_shed_date_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create egg records index: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) eggRecords() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(eggRecordsCollection)
}

func (r *MongoDBRepository) users() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(usersCollection)
}

func (r *MongoDBRepository) weeklyReports() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(weeklyReportsCollection)
}
