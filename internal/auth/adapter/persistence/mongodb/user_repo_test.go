package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"showcase-cms/internal/auth/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeUsers keeps documents in memory and answers FindOne with mongo.NewSingleResultFromDocument.
type fakeUsers struct {
	docs       map[string]*model.User
	insertErr  error
	countErr   error
	lastFilter interface{}
}

func (f *fakeUsers) InsertOne(ctx context.Context, doc interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	u := doc.(*model.User)
	for _, existing := range f.docs {
		if existing.Email == u.Email {
			return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key"}}}
		}
	}
	copied := *u
	f.docs[u.ID] = &copied
	return &mongo.InsertOneResult{InsertedID: u.ID}, nil
}

func (f *fakeUsers) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	f.lastFilter = filter
	m := filter.(bson.M)
	for _, u := range f.docs {
		if m["_id"] == u.ID || m["email"] == u.Email {
			return mongo.NewSingleResultFromDocument(u, nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (f *fakeUsers) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.docs)), nil
}

type UserRepoTestSuite struct {
	suite.Suite
	col  *fakeUsers
	repo *UserRepository
}

func (s *UserRepoTestSuite) SetupTest() {
	s.col = &fakeUsers{docs: map[string]*model.User{}}
	s.repo = newUserRepository(s.col)
	s.repo.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
}

func (s *UserRepoTestSuite) TestCreateUser_AssignsIDAndNormalizesEmail() {
	user := &model.User{Email: "  Editor@Example.COM ", PasswordHash: "hash", DisplayName: "Editor"}

	require.NoError(s.T(), s.repo.CreateUser(context.Background(), user))

	assert.NotEmpty(s.T(), user.ID)
	assert.Equal(s.T(), "editor@example.com", user.Email)
	assert.Equal(s.T(), time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), user.CreatedAt)

	got, err := s.repo.GetUserByEmail(context.Background(), "EDITOR@example.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, got.ID)
	assert.Equal(s.T(), "hash", got.PasswordHash)
}

func (s *UserRepoTestSuite) TestCreateUser_Duplicate() {
	require.NoError(s.T(), s.repo.CreateUser(context.Background(), &model.User{Email: "a@example.com"}))

	err := s.repo.CreateUser(context.Background(), &model.User{Email: "A@example.com"})
	assert.ErrorIs(s.T(), err, model.ErrEmailTaken)
}

func (s *UserRepoTestSuite) TestCreateUser_NilUser() {
	err := s.repo.CreateUser(context.Background(), nil)
	assert.EqualError(s.T(), err, "user cannot be nil")
}

func (s *UserRepoTestSuite) TestCreateUser_StoreFailure() {
	s.col.insertErr = errors.New("connection reset")
	err := s.repo.CreateUser(context.Background(), &model.User{Email: "a@example.com"})
	assert.ErrorContains(s.T(), err, "connection reset")
	assert.NotErrorIs(s.T(), err, model.ErrEmailTaken)
}

func (s *UserRepoTestSuite) TestGetUserByID() {
	user := &model.User{ID: "op-1", Email: "a@example.com"}
	require.NoError(s.T(), s.repo.CreateUser(context.Background(), user))

	got, err := s.repo.GetUserByID(context.Background(), "op-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "a@example.com", got.Email)
	assert.Equal(s.T(), bson.M{"_id": "op-1"}, s.col.lastFilter)

	_, err = s.repo.GetUserByID(context.Background(), "op-2")
	assert.ErrorIs(s.T(), err, model.ErrUserNotFound)
}

func (s *UserRepoTestSuite) TestGetUser_EmptyArguments() {
	_, err := s.repo.GetUserByEmail(context.Background(), "")
	assert.EqualError(s.T(), err, "email cannot be empty")

	_, err = s.repo.GetUserByID(context.Background(), "")
	assert.EqualError(s.T(), err, "user ID cannot be empty")
}

func (s *UserRepoTestSuite) TestCountUsers() {
	n, err := s.repo.CountUsers(context.Background())
	require.NoError(s.T(), err)
	assert.Zero(s.T(), n)

	require.NoError(s.T(), s.repo.CreateUser(context.Background(), &model.User{Email: "a@example.com"}))
	n, err = s.repo.CountUsers(context.Background())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), n)

	s.col.countErr = errors.New("timeout")
	_, err = s.repo.CountUsers(context.Background())
	assert.Error(s.T(), err)
}

func TestUserRepoTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepoTestSuite))
}
