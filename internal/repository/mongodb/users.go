package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/elmolle/eggtrack/internal/domain/models"
)

// GetUser returns the profile document for the given uid, or nil when the
// account was removed. An account that still exists at the provider but has
// no document here is treated as revoked.
func (r *MongoDBRepository) GetUser(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.users().FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", uid, err)
	}
	return &user, nil
}

// SaveUser writes the full profile document at users/{uid}.
func (r *MongoDBRepository) SaveUser(ctx context.Context, user models.User) error {
	_, err := r.users().ReplaceOne(ctx, bson.M{"_id": user.UID}, user, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save user %s: %w", user.UID, err)
	}
	return nil
}

// ListUsers returns every profile document sorted by name.
func (r *MongoDBRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := r.users().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// UpdateUserRole changes a user's role. The assigned shed is set for
// polleros and cleared for the other roles.
func (r *MongoDBRepository) UpdateUserRole(ctx context.Context, uid string, role models.Role, assignedShed string) error {
	update := bson.M{"$set": bson.M{"role": role}}
	if role == models.RolePollero {
		update["$set"].(bson.M)["assigned_shed"] = assignedShed
	} else {
		update["$unset"] = bson.M{"assigned_shed": ""}
	}

	result, err := r.users().UpdateOne(ctx, bson.M{"_id": uid}, update)
	if err != nil {
		return fmt.Errorf("update role for user %s: %w", uid, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s not found", uid)
	}
	return nil
}

// DeleteUser removes the profile document, revoking application access. The
// provider account is left in place; sign-in checks treat the missing
// document as a deleted account.
func (r *MongoDBRepository) DeleteUser(ctx context.Context, uid string) error {
	result, err := r.users().DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", uid, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("user %s not found", uid)
	}
	return nil
}

// SaveShedSummary stores a weekly report snapshot.
func (r *MongoDBRepository) SaveShedSummary(ctx context.Context, summary models.ShedSummary) error {
	_, err := r.weeklyReports().InsertOne(ctx, summary)
	if err != nil {
		return fmt.Errorf("failed to insert shed summary: %w", err)
	}
	return nil
}
