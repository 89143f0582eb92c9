package repository

import (
	"context"

	"github.com/Alixefin/kryptic-sub000/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoNotificationRepository struct {
	col *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{col: db.Collection("notifications")}
}

func (m *MongoNotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	_, err := m.col.InsertOne(ctx, n)
	return err
}

func (m *MongoNotificationRepository) FindByUserID(ctx context.Context, userID string) ([]*model.Notification, error) {
	return m.find(ctx, bson.M{"recipient": "user", "user_id": userID})
}

func (m *MongoNotificationRepository) FindAdmin(ctx context.Context) ([]*model.Notification, error) {
	return m.find(ctx, bson.M{"recipient": "admin"})
}

func (m *MongoNotificationRepository) find(ctx context.Context, filter bson.M) ([]*model.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Notification
	for cur.Next(ctx) {
		var v model.Notification
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

func (m *MongoNotificationRepository) MarkRead(ctx context.Context, id string) error {
	r, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if r.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
