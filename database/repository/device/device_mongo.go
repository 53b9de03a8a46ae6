package deviceRepo

import (
	"context"
	"fmt"
	"time"

	"pharmalink/database"
	"pharmalink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDeviceRepo implements DeviceRepository using MongoDB.
type MongoDeviceRepo struct {
	coll *mongo.Collection
}

// NewMongoDeviceRepo creates a new instance of DeviceRepository using MongoDB.
func NewMongoDeviceRepo() DeviceRepository {
	coll := database.MongoClient.Database("pharmalink").Collection("devices")
	return &MongoDeviceRepo{coll: coll}
}

func (r *MongoDeviceRepo) Upsert(device *models.Device) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	now := time.Now()
	filter := bson.M{"deviceId": device.DeviceID}
	update := bson.M{
		"$set": bson.M{
			"gps":        device.GPS,
			"lastActive": now,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"deviceId":  device.DeviceID,
			"status":    models.DeviceActive,
			"createdAt": now,
		},
	}
	result, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to upsert device %s: %w", device.DeviceID, err)
	}
	return result.UpsertedCount > 0, nil
}

func (r *MongoDeviceRepo) GetByDeviceID(deviceID string) (*models.Device, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var device models.Device
	if err := r.coll.FindOne(ctx, bson.M{"deviceId": deviceID}).Decode(&device); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch device %s: %w", deviceID, err)
	}
	return &device, nil
}

func (r *MongoDeviceRepo) GetAll() ([]models.Device, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve devices: %w", err)
	}
	defer cursor.Close(ctx)
	var devices []models.Device
	for cursor.Next(ctx) {
		var d models.Device
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to decode device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func (r *MongoDeviceRepo) SetStatus(deviceID string, status string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"deviceId": deviceID}, update)
	if err != nil {
		return fmt.Errorf("failed to update device %s status: %w", deviceID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CompareAndSetStatus filters on the current status so two racing claims of
// the same device can never both match.
func (r *MongoDeviceRepo) CompareAndSetStatus(deviceID, expect, target string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	filter := bson.M{"deviceId": deviceID, "status": expect}
	update := bson.M{"$set": bson.M{"status": target, "updatedAt": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to flip device %s status %s->%s: %w", deviceID, expect, target, err)
	}
	return result.MatchedCount > 0, nil
}
