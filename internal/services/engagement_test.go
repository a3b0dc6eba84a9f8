package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profitboysub0-max/social-music-app/internal/models"
)

func TestLikeNotifiesAuthorAndBumpsCounter(t *testing.T) {
	env := newTestEnv(t)
	author := createUser(t, env.db, "author", "Author")
	fan := createUser(t, env.db, "fan", "Fan")
	post := env.posts.addPost(author.ID, 0)
	ctx := context.Background()

	require.NoError(t, env.engagement.Like(ctx, fan.ID, post.ID.Hex()))

	stored, err := env.posts.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.LikesCount)

	rows := env.notificationsFor(t, author.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationLike, rows[0].Type)
	assert.Equal(t, fan.ID, rows[0].ActorID)
	assert.Equal(t, LikeGroupKey(post.ID.Hex(), fan.ID), rows[0].GroupKey)
	assert.Equal(t, "Fan liked your post", rows[0].Message)
}

func TestDuplicateLikeIsConflict(t *testing.T) {
	env := newTestEnv(t)
	author := createUser(t, env.db, "author", "Author")
	fan := createUser(t, env.db, "fan", "Fan")
	post := env.posts.addPost(author.ID, 0)
	ctx := context.Background()

	require.NoError(t, env.engagement.Like(ctx, fan.ID, post.ID.Hex()))
	assert.ErrorIs(t, env.engagement.Like(ctx, fan.ID, post.ID.Hex()), ErrAlreadyLiked)

	stored, err := env.posts.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.LikesCount, "a rejected duplicate must not bump the counter")
}

func TestSelfLikeDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	author := createUser(t, env.db, "author", "Author")
	post := env.posts.addPost(author.ID, 0)
	ctx := context.Background()

	require.NoError(t, env.engagement.Like(ctx, author.ID, post.ID.Hex()))

	assert.Empty(t, env.notificationsFor(t, author.ID))

	stored, err := env.posts.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.LikesCount, "the counter still moves on a self-like")
}

func TestUnlikeRetractsNotificationAndDecrements(t *testing.T) {
	env := newTestEnv(t)
	author := createUser(t, env.db, "author", "Author")
	fan := createUser(t, env.db, "fan", "Fan")
	post := env.posts.addPost(author.ID, 0)
	ctx := context.Background()

	require.NoError(t, env.engagement.Like(ctx, fan.ID, post.ID.Hex()))
	require.NoError(t, env.engagement.Unlike(ctx, fan.ID, post.ID.Hex()))

	assert.Empty(t, env.notificationsFor(t, author.ID), "unlike retracts the like notification")

	stored, err := env.posts.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	assert.Zero(t, stored.LikesCount)
}

func TestRelikeAfterUnlike(t *testing.T) {
	env := newTestEnv(t)
	author := createUser(t, env.db, "author", "Author")
	fan := createUser(t, env.db, "fan", "Fan")
	post := env.posts.addPost(author.ID, 0)
	ctx := context.Background()

	require.NoError(t, env.engagement.Like(ctx, fan.ID, post.ID.Hex()))
	require.NoError(t, env.engagement.Unlike(ctx, fan.ID, post.ID.Hex()))
	require.NoError(t, env.engagement.Like(ctx, fan.ID, post.ID.Hex()))

	rows := env.notificationsFor(t, author.ID)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsRead)

	stored, err := env.posts.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.LikesCount)
}

func TestUnlikeWithoutLikeIsConflict(t *testing.T) {
	env := newTestEnv(t)
	author := createUser(t, env.db, "author", "Author")
	fan := createUser(t, env.db, "fan", "Fan")
	post := env.posts.addPost(author.ID, 0)
	ctx := context.Background()

	assert.ErrorIs(t, env.engagement.Unlike(ctx, fan.ID, post.ID.Hex()), ErrNotLiked)

	stored, err := env.posts.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	assert.Zero(t, stored.LikesCount, "a rejected unlike never drives the counter negative")
}

func TestLikeCrossingThresholdNotifiesAuthorsFollowers(t *testing.T) {
	env := newTestEnv(t)
	author := createUser(t, env.db, "author", "Author")
	fan := createUser(t, env.db, "fan", "Fan")
	follower := createUser(t, env.db, "follower", "Follower")
	env.follow(t, follower.ID, author.ID)

	post := env.posts.addPost(author.ID, 4)
	require.NoError(t, env.engagement.Like(context.Background(), fan.ID, post.ID.Hex()))

	rows := env.notificationsFor(t, follower.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationNetworkTrending, rows[0].Type)
	assert.Equal(t, TrendingGroupKey(post.ID.Hex(), 5), rows[0].GroupKey)
}

func TestRepostLifecycle(t *testing.T) {
	env := newTestEnv(t)
	author := createUser(t, env.db, "author", "Author")
	fan := createUser(t, env.db, "fan", "Fan")
	post := env.posts.addPost(author.ID, 0)
	ctx := context.Background()

	require.NoError(t, env.engagement.Repost(ctx, fan.ID, post.ID.Hex()))
	assert.ErrorIs(t, env.engagement.Repost(ctx, fan.ID, post.ID.Hex()), ErrAlreadyReposted)

	rows := env.notificationsFor(t, author.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationRepost, rows[0].Type)

	require.NoError(t, env.engagement.Unrepost(ctx, fan.ID, post.ID.Hex()))
	assert.Empty(t, env.notificationsFor(t, author.ID))
	assert.ErrorIs(t, env.engagement.Unrepost(ctx, fan.ID, post.ID.Hex()), ErrNotReposted)

	stored, err := env.posts.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	assert.Zero(t, stored.RepostsCount)
}

func TestCommentNotifiesAuthorAndMentions(t *testing.T) {
	env := newTestEnv(t)
	author := createUser(t, env.db, "author", "Author")
	commenter := createUser(t, env.db, "commenter", "Commenter")
	mentioned := createUser(t, env.db, "carol", "Carol")
	post := env.posts.addPost(author.ID, 0)
	ctx := context.Background()

	comment, err := env.engagement.Comment(ctx, commenter.ID, post.ID.Hex(), "love this @Carol @nobody")
	require.NoError(t, err)
	require.NotZero(t, comment.ID)

	authorRows := env.notificationsFor(t, author.ID)
	require.Len(t, authorRows, 1)
	assert.Equal(t, models.NotificationComment, authorRows[0].Type)
	assert.Equal(t, comment.ID, authorRows[0].CommentID)

	mentionRows := env.notificationsFor(t, mentioned.ID)
	require.Len(t, mentionRows, 1)
	assert.Equal(t, models.NotificationMention, mentionRows[0].Type)
	assert.Equal(t, MentionGroupKey(comment.ID, mentioned.ID), mentionRows[0].GroupKey)

	stored, err := env.posts.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CommentsCount)
}

func TestCommentMentionSkipsSelfAndAuthor(t *testing.T) {
	env := newTestEnv(t)
	author := createUser(t, env.db, "author", "Author")
	commenter := createUser(t, env.db, "commenter", "Commenter")
	post := env.posts.addPost(author.ID, 0)
	ctx := context.Background()

	_, err := env.engagement.Comment(ctx, commenter.ID, post.ID.Hex(), "@Author @Commenter check this")
	require.NoError(t, err)

	// The author gets the comment notification only, no extra mention.
	authorRows := env.notificationsFor(t, author.ID)
	require.Len(t, authorRows, 1)
	assert.Equal(t, models.NotificationComment, authorRows[0].Type)

	assert.Empty(t, env.notificationsFor(t, commenter.ID), "no self-mention")
}

func TestMentionResolvesCaseInsensitively(t *testing.T) {
	env := newTestEnv(t)
	author := createUser(t, env.db, "author", "Author")
	commenter := createUser(t, env.db, "commenter", "Commenter")
	mentioned := createUser(t, env.db, "dave", "DaveGrohl")
	post := env.posts.addPost(author.ID, 0)

	_, err := env.engagement.Comment(context.Background(), commenter.ID, post.ID.Hex(), "agreed @davegrohl")
	require.NoError(t, err)

	rows := env.notificationsFor(t, mentioned.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationMention, rows[0].Type)
}

func TestFollowLifecycle(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")
	bob := createUser(t, env.db, "bob", "Bob")

	assert.ErrorIs(t, env.engagement.Follow(alice.ID, alice.ID), ErrSelfFollow)

	require.NoError(t, env.engagement.Follow(bob.ID, alice.ID))
	assert.ErrorIs(t, env.engagement.Follow(bob.ID, alice.ID), ErrAlreadyFollowing)

	rows := env.notificationsFor(t, alice.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationFollow, rows[0].Type)
	assert.Equal(t, FollowGroupKey(bob.ID), rows[0].GroupKey)
	assert.Equal(t, "Bob started following you", rows[0].Message)

	require.NoError(t, env.engagement.Unfollow(bob.ID, alice.ID))
	assert.Empty(t, env.notificationsFor(t, alice.ID), "unfollow retracts the follow notification")
	assert.ErrorIs(t, env.engagement.Unfollow(bob.ID, alice.ID), ErrNotFollowing)
}

func TestRefollowResurfacesAsUnread(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")
	bob := createUser(t, env.db, "bob", "Bob")

	require.NoError(t, env.engagement.Follow(bob.ID, alice.ID))
	rows := env.notificationsFor(t, alice.ID)
	require.Len(t, rows, 1)
	require.NoError(t, env.notifications.MarkAsRead(rows[0].ID, alice.ID))

	require.NoError(t, env.engagement.Unfollow(bob.ID, alice.ID))
	require.NoError(t, env.engagement.Follow(bob.ID, alice.ID))

	rows = env.notificationsFor(t, alice.ID)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsRead)
}

func TestShareNotifiesAuthorWithToken(t *testing.T) {
	env := newTestEnv(t)
	author := createUser(t, env.db, "author", "Author")
	fan := createUser(t, env.db, "fan", "Fan")
	post := env.posts.addPost(author.ID, 0)
	ctx := context.Background()

	share, err := env.engagement.Share(ctx, fan.ID, post.ID.Hex())
	require.NoError(t, err)
	assert.NotEmpty(t, share.Token)

	resolved, err := env.shares.GetShareByToken(share.Token)
	require.NoError(t, err)
	assert.Equal(t, post.ID.Hex(), resolved.PostID)

	rows := env.notificationsFor(t, author.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationShare, rows[0].Type)

	// Sharing again mints a new token but collapses the notification.
	again, err := env.engagement.Share(ctx, fan.ID, post.ID.Hex())
	require.NoError(t, err)
	assert.NotEqual(t, share.Token, again.Token)
	assert.Len(t, env.notificationsFor(t, author.ID), 1)
}

func TestRecordPlayBumpsCounter(t *testing.T) {
	env := newTestEnv(t)
	author := createUser(t, env.db, "author", "Author")
	post := env.posts.addPost(author.ID, 0)
	ctx := context.Background()

	require.NoError(t, env.engagement.RecordPlay(ctx, post.ID.Hex()))
	require.NoError(t, env.engagement.RecordPlay(ctx, post.ID.Hex()))

	stored, err := env.posts.GetPostByID(ctx, post.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, stored.PlaysCount)
}

func TestEngagementOnMissingPost(t *testing.T) {
	env := newTestEnv(t)
	fan := createUser(t, env.db, "fan", "Fan")
	ctx := context.Background()

	err := env.engagement.Like(ctx, fan.ID, "aaaaaaaaaaaaaaaaaaaaaaaa")
	assert.Error(t, err)
}
