package repository

import (
	"context"
	"time"

	"github.com/Alixefin/kryptic-sub000/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Las cuentas las administra el microservicio de auth; acá solo leemos
// y estampamos la verificación de email.
type MongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{col: db.Collection("users")}
}

func (m *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var res model.User
	err := m.col.FindOne(ctx, bson.M{"email": email}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

// MarkEmailVerified estampa email_verified_at si existe un usuario con ese
// email. Que no exista NO es un error: el OTP también sirve para direcciones
// todavía no registradas.
func (m *MongoUserRepository) MarkEmailVerified(ctx context.Context, email string, at time.Time) error {
	_, err := m.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"email_verified_at": at}})
	return err
}
