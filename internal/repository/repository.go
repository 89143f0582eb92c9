package repository

import (
	"context"
	"errors"

	"github.com/Alixefin/kryptic-sub000/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("registro no encontrado")

// Mongo implementation
type MongoOrderRepository struct {
	orders *mongo.Collection
	items  *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		orders: db.Collection("orders"),
		items:  db.Collection("order_items"),
	}
}

// InsertWithItems inserta la orden y todos sus ítems dentro de una misma
// transacción de sesión: nunca queda una orden a medio escribir.
func (m *MongoOrderRepository) InsertWithItems(ctx context.Context, o *model.Order, items []model.OrderItem) error {
	session, err := m.orders.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := m.orders.InsertOne(sc, o); err != nil {
			return nil, err
		}
		docs := make([]interface{}, 0, len(items))
		for _, it := range items {
			docs = append(docs, it)
		}
		if _, err := m.items.InsertMany(sc, docs); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (m *MongoOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var res model.Order
	err := m.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoOrderRepository) FindByReference(ctx context.Context, reference string) (*model.Order, error) {
	var res model.Order
	err := m.orders.FindOne(ctx, bson.M{"payment_reference": reference}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

func (m *MongoOrderRepository) FindByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return m.findOrders(ctx, bson.M{"user_id": userID}, opts)
}

func (m *MongoOrderRepository) FindRecent(ctx context.Context, limit int64) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	return m.findOrders(ctx, bson.M{}, opts)
}

func (m *MongoOrderRepository) FindAll(ctx context.Context) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return m.findOrders(ctx, bson.M{}, opts)
}

func (m *MongoOrderRepository) findOrders(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Order, error) {
	cur, err := m.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

func (m *MongoOrderRepository) FindItemsByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	cur, err := m.items.Find(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.OrderItem
	for cur.Next(ctx) {
		var v model.OrderItem
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}

// FindItemsByOrderIDs trae los ítems de varias órdenes con una sola consulta
// ($in sobre el índice order_id) en lugar de una consulta por orden.
func (m *MongoOrderRepository) FindItemsByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]model.OrderItem, error) {
	out := make(map[string][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	cur, err := m.items.Find(ctx, bson.M{"order_id": bson.M{"$in": orderIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var v model.OrderItem
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out[v.OrderID] = append(out[v.OrderID], v)
	}
	return out, cur.Err()
}

func (m *MongoOrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	r, err := m.orders.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if r.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoOrderRepository) UpdatePaymentStatus(ctx context.Context, id, paymentStatus string) error {
	r, err := m.orders.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"payment_status": paymentStatus}})
	if err != nil {
		return err
	}
	if r.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWithItems borra la orden y sus ítems en la misma transacción.
// Nada de cascada manual a medias: o se va todo, o no se va nada.
func (m *MongoOrderRepository) DeleteWithItems(ctx context.Context, id string) error {
	session, err := m.orders.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		r, err := m.orders.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if r.DeletedCount == 0 {
			return nil, ErrNotFound
		}
		if _, err := m.items.DeleteMany(sc, bson.M{"order_id": id}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
