package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrPostNotFound is returned when a post lookup finds no document
var ErrPostNotFound = fmt.Errorf("post not found")

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByAuthors(ctx context.Context, authorIDs []string, limit int64) ([]models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	DeletePost(ctx context.Context, id string) error
	IncrementLikesCount(ctx context.Context, postID string) error
	DecrementLikesCount(ctx context.Context, postID string) error
	IncrementCommentsCount(ctx context.Context, postID string) error
	DecrementCommentsCount(ctx context.Context, postID string) error
	IncrementRepostsCount(ctx context.Context, postID string) error
	DecrementRepostsCount(ctx context.Context, postID string) error
	IncrementPlaysCount(ctx context.Context, postID string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID format: %w", err)
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByAuthors retrieves the newest posts authored by any of the
// given users, descending by creation time. Backs the personal feed:
// the author filter is applied in the query itself, so a sparse follow
// graph cannot under-fill the page.
func (r *MongoPostRepository) GetPostsByAuthors(ctx context.Context, authorIDs []string, limit int64) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var posts []models.Post
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": bson.M{"$in": authorIDs}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetAllPosts retrieves all posts with pagination, newest first
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost deletes a post by ID
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// IncrementLikesCount increments the likes count of a post
func (r *MongoPostRepository) IncrementLikesCount(ctx context.Context, postID string) error {
	return r.incrementCounter(ctx, postID, "likes_count", 1)
}

// DecrementLikesCount decrements the likes count of a post, floored
// at zero
func (r *MongoPostRepository) DecrementLikesCount(ctx context.Context, postID string) error {
	return r.guardedDecrement(ctx, postID, "likes_count")
}

// IncrementCommentsCount increments the comments count of a post
func (r *MongoPostRepository) IncrementCommentsCount(ctx context.Context, postID string) error {
	return r.incrementCounter(ctx, postID, "comments_count", 1)
}

// DecrementCommentsCount decrements the comments count of a post,
// floored at zero
func (r *MongoPostRepository) DecrementCommentsCount(ctx context.Context, postID string) error {
	return r.guardedDecrement(ctx, postID, "comments_count")
}

// IncrementRepostsCount increments the reposts count of a post
func (r *MongoPostRepository) IncrementRepostsCount(ctx context.Context, postID string) error {
	return r.incrementCounter(ctx, postID, "reposts_count", 1)
}

// DecrementRepostsCount decrements the reposts count of a post,
// floored at zero
func (r *MongoPostRepository) DecrementRepostsCount(ctx context.Context, postID string) error {
	return r.guardedDecrement(ctx, postID, "reposts_count")
}

// IncrementPlaysCount increments the plays count of a post
func (r *MongoPostRepository) IncrementPlaysCount(ctx context.Context, postID string) error {
	return r.incrementCounter(ctx, postID, "plays_count", 1)
}

func (r *MongoPostRepository) incrementCounter(ctx context.Context, postID, field string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{field: delta}})
	return err
}

// guardedDecrement only decrements when the counter is still positive,
// so a redundant decrement can never drive it negative.
func (r *MongoPostRepository) guardedDecrement(ctx context.Context, postID, field string) error {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return fmt.Errorf("invalid post ID format: %w", err)
	}
	filter := bson.M{"_id": objID, field: bson.M{"$gt": 0}}
	_, err = r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{field: -1}})
	return err
}
