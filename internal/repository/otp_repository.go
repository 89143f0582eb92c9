package repository

import (
	"context"
	"time"

	"github.com/Alixefin/kryptic-sub000/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOtpRepository struct {
	col *mongo.Collection
}

func NewMongoOtpRepository(db *mongo.Database) *MongoOtpRepository {
	return &MongoOtpRepository{col: db.Collection("otp_codes")}
}

// UpsertActive reemplaza el documento del email por el nuevo código.
// Al ser el email la clave, el código anterior queda superseded de forma
// atómica: jamás hay dos códigos válidos para el mismo email.
func (m *MongoOtpRepository) UpsertActive(ctx context.Context, c *model.OtpCode) error {
	opts := options.Replace().SetUpsert(true)
	_, err := m.col.ReplaceOne(ctx, bson.M{"_id": c.Email}, c, opts)
	return err
}

// Consume marca el código como usado solo si coincide exacto, no fue usado
// y no expiró — todo en un FindOneAndUpdate atómico. Devuelve false cuando
// ningún documento califica, sin distinguir la causa.
func (m *MongoOtpRepository) Consume(ctx context.Context, email, code string, now time.Time) (bool, error) {
	filter := bson.M{
		"_id":        email,
		"code":       code,
		"used":       false,
		"expires_at": bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{"used": true}}

	err := m.col.FindOneAndUpdate(ctx, filter, update).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
