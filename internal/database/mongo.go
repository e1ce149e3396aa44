package database

import (
	"context"
	"time"

	"bookmyhall-api-server/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect mở kết nối MongoDB và ping để chắc chắn server sống.
func Connect(cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return client.Database(cfg.DBName), nil
}

// EnsureIndexes tạo các index cần cho tính đúng đắn:
//   - users.email unique
//   - feedback (apptID, userID) unique: chặn feedback trùng ở tầng DB
//   - appointments.apptID unique
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("feedback").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "apptID", Value: 1}, {Key: "userID", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("appointments").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "apptID", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
