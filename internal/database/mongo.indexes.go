package database

import (
	"context"
	"strings"

	"film_camp/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OwnerIndexName là partial unique index bảo đảm mỗi hồ sơ có tối đa một chủ hồ sơ
const OwnerIndexName = "member_app_owner_unique"

// CreateAdditionalIndexes tạo các index không khai báo được qua tag (partial filter)
func CreateAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	members := db.Collection(global.MongoDB_ColNames.ApplicationMembers)
	if _, err := members.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "applicationId", Value: 1},
			{Key: "isOwner", Value: 1},
		},
		Options: options.Index().
			SetName(OwnerIndexName).
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"isOwner": true}),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// Một hồ sơ chưa hủy cho mỗi cặp (dự án, người dùng)
	apps := db.Collection(global.MongoDB_ColNames.Applications)
	if _, err := apps.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "projectId", Value: 1},
			{Key: "userId", Value: 1},
		},
		Options: options.Index().
			SetName("app_project_user_active_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": bson.M{"$in": bson.A{"draft", "submitted", "approved", "graduated"}}}),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "IndexOptionsConflict")
}
