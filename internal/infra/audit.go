package infra

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DeliveryRecord is one notification attempt outcome.
type DeliveryRecord struct {
	JobID     string    `bson:"job_id"`
	Channel   string    `bson:"channel"` // sms | email
	Recipient string    `bson:"recipient"`
	OrderID   uint      `bson:"order_id,omitempty"`
	Attempt   int       `bson:"attempt"`
	Success   bool      `bson:"success"`
	Error     string    `bson:"error,omitempty"`
	At        time.Time `bson:"at"`
}

// AuditLog archives notification delivery outcomes.
type AuditLog interface {
	Record(ctx context.Context, rec DeliveryRecord) error
	Close(ctx context.Context) error
}

// MongoAuditLog stores records in the notification_deliveries collection.
type MongoAuditLog struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoAuditLog connects and pings the server before returning.
func NewMongoAuditLog(ctx context.Context, uri, dbName string) (*MongoAuditLog, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("audit: connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("audit: ping mongodb: %w", err)
	}
	return &MongoAuditLog{
		client: client,
		coll:   client.Database(dbName).Collection("notification_deliveries"),
	}, nil
}

func (a *MongoAuditLog) Record(ctx context.Context, rec DeliveryRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
	if _, err := a.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("audit: insert delivery record: %w", err)
	}
	return nil
}

func (a *MongoAuditLog) Close(ctx context.Context) error { return a.client.Disconnect(ctx) }

// NopAuditLog is used when MONGODB_URI is empty.
type NopAuditLog struct{}

func (NopAuditLog) Record(context.Context, DeliveryRecord) error { return nil }
func (NopAuditLog) Close(context.Context) error                  { return nil }
