package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

const collectionUsers = "users"

type UserRepository struct {
	col *mongo.Collection
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID        string `bson:"_id"`
	Email     string `bson:"email"`
	Name      string `bson:"name"`
	Role      string `bson:"role"`
	Avatar    string `bson:"avatar,omitempty"`
	CreatedAt string `bson:"created_at"`
}

func toDocument(u *domain.User) mongoUser {
	return mongoUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

func (m mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Role:      domain.Role(m.Role),
		Avatar:    m.Avatar,
		CreatedAt: m.CreatedAt,
	}
}

// FindByEmail matches the email exactly.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoUser
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDocument(user)
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

// Update replaces the stored user with the same id.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDocument(user)
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Seed inserts users that are not stored yet and leaves existing ones alone.
func (r *UserRepository) Seed(ctx context.Context, users []domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for i := range users {
		doc := toDocument(&users[i])
		_, err := r.col.UpdateOne(ctx,
			bson.M{"_id": doc.ID},
			bson.M{"$setOnInsert": bson.M{
				"email":      doc.Email,
				"name":       doc.Name,
				"role":       doc.Role,
				"created_at": doc.CreatedAt,
			}},
			options.Update().SetUpsert(true),
		)
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("seed user %s: %w", doc.Email, err)
		}
	}
	return nil
}
