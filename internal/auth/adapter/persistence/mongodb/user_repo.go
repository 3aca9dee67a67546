package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"showcase-cms/internal/auth/domain/model"
	"showcase-cms/internal/auth/domain/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// userCollection is the part of *mongo.Collection the repository needs.
type userCollection interface {
	InsertOne(ctx context.Context, doc interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// UserRepository stores operators in MongoDB, keyed by a UUID string _id.
type UserRepository struct {
	users userCollection
	now   func() time.Time
}

// NewUserRepository creates the repository and its unique email index.
func NewUserRepository(ctx context.Context, db *mongo.Database, collectionName string) (*UserRepository, error) {
	col := db.Collection(collectionName)

	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := col.Indexes().CreateOne(ctx, emailIndex); err != nil {
		return nil, fmt.Errorf("failed to create email index: %w", err)
	}

	return newUserRepository(col), nil
}

func newUserRepository(col userCollection) *UserRepository {
	return &UserRepository{users: col, now: time.Now}
}

// CreateUser inserts a new operator, assigning an ID and timestamps.
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	now := r.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = normalizeEmail(user.Email)

	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves an operator by email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

// GetUserByID retrieves an operator by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	n, err := r.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
