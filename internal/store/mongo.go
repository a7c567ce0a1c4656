package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edmorua/admin-user-back/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection = "users"
	logsCollection  = "system_logs"
)

// internal bookkeeping fields that never leave the store
var stripMeta = bson.M{"__v": 0}

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
	Created  time.Time          `bson:"created"`
	Updated  time.Time          `bson:"updated"`
	Active   bool               `bson:"active"`
}

func (d userDocument) toModel() *models.User {
	return &models.User{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Email:    d.Email,
		Password: d.Password,
		Created:  d.Created,
		Updated:  d.Updated,
		Active:   d.Active,
	}
}

// MongoRepository stores users as documents in a MongoDB collection.
type MongoRepository struct {
	client *mongo.Client
	users  *mongo.Collection
	logs   *mongo.Collection
	now    func() time.Time
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		client: db.Client(),
		users:  db.Collection(usersCollection),
		logs:   db.Collection(logsCollection),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := r.now()
	doc := userDocument{
		ID:       primitive.NewObjectID(),
		Name:     user.Name,
		Email:    user.Email,
		Password: user.Password,
		Created:  now,
		Updated:  now,
		Active:   true,
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) FindActiveByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "active": true})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, filter, options.FindOne().SetProjection(stripMeta)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) UpdateFields(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{"updated": r.now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Password != nil {
		set["password"] = *update.Password
	}

	return r.findOneAndSet(ctx, bson.M{"_id": oid}, set)
}

func (r *MongoRepository) SoftDelete(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOneAndSet(ctx,
		bson.M{"_id": oid, "active": true},
		bson.M{"active": false, "updated": r.now()},
	)
}

// findOneAndSet is a single atomic match-and-set returning the new document.
func (r *MongoRepository) findOneAndSet(ctx context.Context, filter, set bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(stripMeta)

	var doc userDocument
	err := r.users.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) ListActive(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(stripMeta).
		SetSort(bson.D{{Key: "created", Value: 1}})

	cursor, err := r.users.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, *d.toModel())
	}
	return users, nil
}

func (r *MongoRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "active", Value: 1}},
			Options: options.Index().SetName("active"),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	_, err = r.logs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: 1}},
		Options: options.Index().SetName("timestamp"),
	})
	if err != nil {
		return fmt.Errorf("create log indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) WriteLogs(ctx context.Context, entries []models.SystemLog) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		doc := bson.M{
			"_id":        e.ID.String(),
			"timestamp":  e.Timestamp,
			"level":      e.Level,
			"message":    e.Message,
			"trace_id":   e.TraceID,
			"user_id":    e.UserID,
			"action":     e.Action,
			"error":      e.Error,
			"latency_ms": e.LatencyMs,
			"created_at": e.CreatedAt,
		}
		if len(e.Extra) > 0 {
			var extra map[string]interface{}
			if err := json.Unmarshal(e.Extra, &extra); err == nil {
				doc["extra"] = extra
			}
		}
		docs = append(docs, doc)
	}

	if _, err := r.logs.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert system logs: %w", err)
	}
	return nil
}

func (r *MongoRepository) PurgeLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.logs.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": before}})
	if err != nil {
		return 0, fmt.Errorf("purge system logs: %w", err)
	}
	return res.DeletedCount, nil
}
