package sessionRepo

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

// MongoSessionRepo implements SessionRepository using MongoDB.
type MongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo creates a new instance of SessionRepository using MongoDB.
func NewMongoSessionRepo() SessionRepository {
	coll := database.MongoClient.Database("pharmalink").Collection("sessions")
	return &MongoSessionRepo{coll: coll}
}

func (r *MongoSessionRepo) Create(session *models.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *MongoSessionRepo) GetByID(id string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var session models.Session
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch session %s: %w", id, err)
	}
	return &session, nil
}

func (r *MongoSessionRepo) GetActive() ([]models.Session, error) {
	return r.findMany(bson.M{"status": models.SessionActive}, nil)
}

func (r *MongoSessionRepo) GetAll() ([]models.Session, error) {
	sort := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	return r.findMany(bson.M{}, sort)
}

func (r *MongoSessionRepo) findMany(filter bson.M, opts *options.FindOptions) ([]models.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.coll.Find(ctx, filter, opts)
	} else {
		cursor, err = r.coll.Find(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sessions: %w", err)
	}
	defer cursor.Close(ctx)
	var sessions []models.Session
	for cursor.Next(ctx) {
		var s models.Session
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r *MongoSessionRepo) FindActiveByDoctor(doctorID string) (*models.Session, error) {
	return r.findOneActive(bson.M{"doctorId": doctorID, "status": models.SessionActive})
}

func (r *MongoSessionRepo) FindActiveByDevice(deviceID string) (*models.Session, error) {
	return r.findOneActive(bson.M{"deviceId": deviceID, "status": models.SessionActive})
}

func (r *MongoSessionRepo) findOneActive(filter bson.M) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var session models.Session
	if err := r.coll.FindOne(ctx, filter).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query active session: %w", err)
	}
	return &session, nil
}

// Terminate filters on status=active so a terminal session can never be
// transitioned twice, even under racing complete/cancel requests.
func (r *MongoSessionRepo) Terminate(id string, target string, endedAt time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	filter := bson.M{"id": id, "status": models.SessionActive}
	update := bson.M{"$set": bson.M{"status": target, "endedAt": endedAt}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to terminate session %s: %w", id, err)
	}
	return result.MatchedCount > 0, nil
}
