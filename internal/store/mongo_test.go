package store

import (
	"context"
	"testing"
	"time"

	"github.com/edmorua/admin-user-back/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func userDoc(id primitive.ObjectID, name, email string, active bool) bson.D {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "email", Value: email},
		{Key: "password", Value: "digest"},
		{Key: "created", Value: ts},
		{Key: "updated", Value: ts},
		{Key: "active", Value: active},
	}
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "admin_users.users"

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u, err := repo.Create(context.Background(), &models.User{Name: "alice", Email: "a@x.com", Password: "digest"})
		require.NoError(mt, err)
		assert.True(mt, primitive.IsValidObjectID(u.ID))
		assert.True(mt, u.Active)
		assert.Equal(mt, u.Created, u.Updated)
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: admin_users.users index: email_unique",
		}))

		_, err := repo.Create(context.Background(), &models.User{Name: "bob", Email: "a@x.com", Password: "digest"})
		assert.ErrorIs(mt, err, ErrDuplicateEmail)
	})

	mt.Run("find by id", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc(id, "alice", "a@x.com", false)))

		u, err := repo.FindByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), u.ID)
		assert.Equal(mt, "alice", u.Name)
		assert.False(mt, u.Active)
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("malformed id never reaches the server", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)

		_, err := repo.FindByID(context.Background(), "not-an-object-id")
		assert.ErrorIs(mt, err, ErrNotFound)
		_, err = repo.FindActiveByID(context.Background(), "xyz")
		assert.ErrorIs(mt, err, ErrNotFound)
		_, err = repo.SoftDelete(context.Background(), "xyz")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc(id, "alice", "a@x.com", true)))

		u, err := repo.FindByEmail(context.Background(), "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, "a@x.com", u.Email)
		assert.Equal(mt, "digest", u.Password)
	})

	mt.Run("update fields", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: userDoc(id, "alicia", "a@x.com", true)},
		})

		name := "alicia"
		u, err := repo.UpdateFields(context.Background(), id.Hex(), models.UserUpdate{Name: &name})
		require.NoError(mt, err)
		assert.Equal(mt, "alicia", u.Name)
	})

	mt.Run("update fields duplicate email", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Name:    "DuplicateKey",
			Message: "E11000 duplicate key error",
		}))

		email := "taken@x.com"
		_, err := repo.UpdateFields(context.Background(), primitive.NewObjectID().Hex(), models.UserUpdate{Email: &email})
		assert.ErrorIs(mt, err, ErrDuplicateEmail)
	})

	mt.Run("soft delete", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: userDoc(id, "alice", "a@x.com", false)},
		})

		u, err := repo.SoftDelete(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.False(mt, u.Active)
	})

	mt.Run("soft delete of inactive record", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}})

		_, err := repo.SoftDelete(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("list active", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			userDoc(primitive.NewObjectID(), "alice", "a@x.com", true),
			userDoc(primitive.NewObjectID(), "bob", "b@x.com", true),
		))

		users, err := repo.ListActive(context.Background())
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, "alice", users[0].Name)
		assert.Equal(mt, "bob", users[1].Name)
	})

	mt.Run("purge logs", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 3}})

		n, err := repo.PurgeLogs(context.Background(), time.Now())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})
}
