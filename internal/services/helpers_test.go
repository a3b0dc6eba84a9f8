package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"github.com/profitboysub0-max/social-music-app/internal/repositories"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	// Every pool connection to :memory: gets its own database, so pin
	// the pool to one connection for workers that hit the DB concurrently.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Like{},
		&models.Repost{},
		&models.Comment{},
		&models.Share{},
		&models.Notification{},
		&models.Presence{},
		&models.PlaybackState{},
		&models.PushSubscription{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name, displayName string) *models.User {
	t.Helper()
	user := &models.User{
		Name:        name,
		DisplayName: displayName,
		Email:       fmt.Sprintf("%s@example.com", name),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// fakePostRepository is an in-memory PostRepository so service tests do
// not need a running MongoDB.
type fakePostRepository struct {
	posts map[string]*models.Post
}

func newFakePostRepository() *fakePostRepository {
	return &fakePostRepository{posts: make(map[string]*models.Post)}
}

func (f *fakePostRepository) addPost(authorID uint, likes int) *models.Post {
	post := &models.Post{
		ID:         primitive.NewObjectID(),
		UserID:     fmt.Sprintf("%d", authorID),
		Content:    "test post",
		LikesCount: likes,
		CreatedAt:  time.Now(),
	}
	f.posts[post.ID.Hex()] = post
	return post
}

func (f *fakePostRepository) CreatePost(_ context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	f.posts[post.ID.Hex()] = post
	return nil
}

func (f *fakePostRepository) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	copied := *post
	return &copied, nil
}

func (f *fakePostRepository) GetPostsByAuthors(_ context.Context, authorIDs []string, limit int64) ([]models.Post, error) {
	allowed := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		allowed[id] = true
	}
	var out []models.Post
	for _, post := range f.posts {
		if allowed[post.UserID] {
			out = append(out, *post)
		}
	}
	sortPostsNewestFirst(out)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePostRepository) GetAllPosts(_ context.Context, skip, limit int64) ([]models.Post, error) {
	var out []models.Post
	for _, post := range f.posts {
		out = append(out, *post)
	}
	sortPostsNewestFirst(out)
	if skip > 0 {
		if skip >= int64(len(out)) {
			return nil, nil
		}
		out = out[skip:]
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePostRepository) DeletePost(_ context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepository) IncrementLikesCount(_ context.Context, postID string) error {
	return f.bump(postID, func(p *models.Post) { p.LikesCount++ })
}

func (f *fakePostRepository) DecrementLikesCount(_ context.Context, postID string) error {
	return f.bump(postID, func(p *models.Post) {
		if p.LikesCount > 0 {
			p.LikesCount--
		}
	})
}

func (f *fakePostRepository) IncrementCommentsCount(_ context.Context, postID string) error {
	return f.bump(postID, func(p *models.Post) { p.CommentsCount++ })
}

func (f *fakePostRepository) DecrementCommentsCount(_ context.Context, postID string) error {
	return f.bump(postID, func(p *models.Post) {
		if p.CommentsCount > 0 {
			p.CommentsCount--
		}
	})
}

func (f *fakePostRepository) IncrementRepostsCount(_ context.Context, postID string) error {
	return f.bump(postID, func(p *models.Post) { p.RepostsCount++ })
}

func (f *fakePostRepository) DecrementRepostsCount(_ context.Context, postID string) error {
	return f.bump(postID, func(p *models.Post) {
		if p.RepostsCount > 0 {
			p.RepostsCount--
		}
	})
}

func (f *fakePostRepository) IncrementPlaysCount(_ context.Context, postID string) error {
	return f.bump(postID, func(p *models.Post) { p.PlaysCount++ })
}

func (f *fakePostRepository) bump(postID string, fn func(*models.Post)) error {
	post, ok := f.posts[postID]
	if !ok {
		return repositories.ErrPostNotFound
	}
	fn(post)
	return nil
}

func sortPostsNewestFirst(posts []models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// recorderDispatcher records dispatched notification IDs
type recorderDispatcher struct {
	ids []uint
}

func (d *recorderDispatcher) Dispatch(notificationID uint) {
	d.ids = append(d.ids, notificationID)
}

// fakeWebPushSender returns canned status codes per endpoint instead of
// talking to a real push service.
type fakeWebPushSender struct {
	mu       sync.Mutex
	statuses map[string]int // endpoint -> status, default 201
	sent     []string
	payloads map[string][]byte
}

func newFakeWebPushSender() *fakeWebPushSender {
	return &fakeWebPushSender{
		statuses: make(map[string]int),
		payloads: make(map[string][]byte),
	}
}

func (f *fakeWebPushSender) Send(payload []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sub.Endpoint)
	f.payloads[sub.Endpoint] = payload
	status := f.statuses[sub.Endpoint]
	if status == 0 {
		status = http.StatusCreated
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}, nil
}

func (f *fakeWebPushSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// testEnv wires the service layer against sqlite repositories, the
// in-memory post store and a recording dispatcher.
type testEnv struct {
	db            *gorm.DB
	posts         *fakePostRepository
	notifications repositories.NotificationRepository
	likes         repositories.LikeRepository
	reposts       repositories.RepostRepository
	comments      repositories.CommentRepository
	follows       repositories.FollowRepository
	shares        repositories.ShareRepository
	users         repositories.UserRepository
	presence      repositories.PresenceRepository
	subscriptions repositories.PushSubscriptionRepository
	dispatcher    *recorderDispatcher
	identity      *IdentityResolver

	engine          *NotificationService
	engagement      *EngagementService
	presenceService *PresenceService
	feed            *FeedService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	env := &testEnv{
		db:            db,
		posts:         newFakePostRepository(),
		notifications: repositories.NewPostgresNotificationRepository(db),
		likes:         repositories.NewPostgresLikeRepository(db),
		reposts:       repositories.NewPostgresRepostRepository(db),
		comments:      repositories.NewPostgresCommentRepository(db),
		follows:       repositories.NewPostgresFollowRepository(db),
		shares:        repositories.NewPostgresShareRepository(db),
		users:         repositories.NewPostgresUserRepository(db),
		presence:      repositories.NewPostgresPresenceRepository(db),
		subscriptions: repositories.NewPostgresPushSubscriptionRepository(db),
		dispatcher:    &recorderDispatcher{},
	}
	env.identity = NewIdentityResolver(env.users, "")
	env.engine = NewNotificationService(env.notifications, env.follows, env.users, env.identity, env.dispatcher)
	env.engagement = NewEngagementService(env.posts, env.likes, env.reposts, env.comments, env.follows, env.shares, env.users, env.identity, env.engine)
	env.presenceService = NewPresenceService(env.presence, env.follows, env.identity, env.engine)
	env.feed = NewFeedService(env.posts, env.users, env.follows, env.likes, env.reposts, env.presenceService, env.identity)
	return env
}

func (env *testEnv) follow(t *testing.T, followerID, targetID uint) {
	t.Helper()
	require.NoError(t, env.follows.CreateFollow(&models.Follow{FollowerID: followerID, FollowingID: targetID}))
}

func (env *testEnv) notificationsFor(t *testing.T, recipientID uint) []models.Notification {
	t.Helper()
	var rows []models.Notification
	require.NoError(t, env.db.Where("recipient_id = ?", recipientID).Order("id").Find(&rows).Error)
	return rows
}
