package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"github.com/profitboysub0-max/social-music-app/internal/repositories"
	"github.com/profitboysub0-max/social-music-app/pkg/logger"
)

// Engagement conflict errors, surfaced to the user as explicit
// conflicts rather than silent no-ops.
var (
	ErrAlreadyLiked     = fmt.Errorf("post already liked")
	ErrNotLiked         = fmt.Errorf("post not liked")
	ErrAlreadyReposted  = fmt.Errorf("post already reposted")
	ErrNotReposted      = fmt.Errorf("post not reposted")
	ErrAlreadyFollowing = fmt.Errorf("already following this user")
	ErrNotFollowing     = fmt.Errorf("not following this user")
	ErrSelfFollow       = fmt.Errorf("cannot follow yourself")
)

// EngagementService implements the engagement mutators: each one
// writes its own join row, bumps the denormalized counter on the post,
// and hands the engine a candidate notification event. Delivery
// failures never reach the caller; only storage errors do.
type EngagementService struct {
	posts    repositories.PostRepository
	likes    repositories.LikeRepository
	reposts  repositories.RepostRepository
	comments repositories.CommentRepository
	follows  repositories.FollowRepository
	shares   repositories.ShareRepository
	users    repositories.UserRepository
	identity *IdentityResolver
	engine   *NotificationService
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(
	posts repositories.PostRepository,
	likes repositories.LikeRepository,
	reposts repositories.RepostRepository,
	comments repositories.CommentRepository,
	follows repositories.FollowRepository,
	shares repositories.ShareRepository,
	users repositories.UserRepository,
	identity *IdentityResolver,
	engine *NotificationService,
) *EngagementService {
	return &EngagementService{
		posts:    posts,
		likes:    likes,
		reposts:  reposts,
		comments: comments,
		follows:  follows,
		shares:   shares,
		users:    users,
		identity: identity,
		engine:   engine,
	}
}

// Like records a like, bumps the post counter and notifies the author.
// A crossing of a trending threshold additionally fans out to the
// author's followers.
func (s *EngagementService) Like(ctx context.Context, userID uint, postID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}

	hasLiked, err := s.likes.HasUserLikedPost(postID, userID)
	if err != nil {
		return err
	}
	if hasLiked {
		return ErrAlreadyLiked
	}

	if err := s.likes.CreateLike(&models.Like{PostID: postID, UserID: userID}); err != nil {
		return err
	}
	if err := s.posts.IncrementLikesCount(ctx, postID); err != nil {
		return err
	}

	authorID := s.postAuthorID(post)
	countBefore := post.LikesCount
	countAfter := countBefore + 1

	if authorID != 0 && authorID != userID {
		actor := s.identity.Resolve(userID)
		_, err = s.engine.Notify(Event{
			Recipient: authorID,
			Actor:     userID,
			Type:      models.NotificationLike,
			Message:   actor.Name + " liked your post",
			PostID:    postID,
			GroupKey:  LikeGroupKey(postID, userID),
		})
		if err != nil {
			logger.Error(err, zap.String("post_id", postID))
		}
	}

	if authorID != 0 {
		if err := s.engine.NotifyTrending(post, authorID, countBefore, countAfter); err != nil {
			logger.Error(err, zap.String("post_id", postID))
		}
	}
	return nil
}

// Unlike removes a like, decrements the counter (floored at zero) and
// retracts the matching notification instead of leaving it stale.
func (s *EngagementService) Unlike(ctx context.Context, userID uint, postID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.likes.DeleteLike(postID, userID); err != nil {
		if err == repositories.ErrLikeNotFound {
			return ErrNotLiked
		}
		return err
	}
	if err := s.posts.DecrementLikesCount(ctx, postID); err != nil {
		return err
	}

	if authorID := s.postAuthorID(post); authorID != 0 {
		if err := s.engine.RetractGroup(authorID, LikeGroupKey(postID, userID)); err != nil {
			logger.Error(err, zap.String("post_id", postID))
		}
	}
	return nil
}

// Repost records a repost, bumps the counter and notifies the author
func (s *EngagementService) Repost(ctx context.Context, userID uint, postID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}

	hasReposted, err := s.reposts.HasUserReposted(postID, userID)
	if err != nil {
		return err
	}
	if hasReposted {
		return ErrAlreadyReposted
	}

	if err := s.reposts.CreateRepost(&models.Repost{PostID: postID, UserID: userID}); err != nil {
		return err
	}
	if err := s.posts.IncrementRepostsCount(ctx, postID); err != nil {
		return err
	}

	if authorID := s.postAuthorID(post); authorID != 0 && authorID != userID {
		actor := s.identity.Resolve(userID)
		_, err = s.engine.Notify(Event{
			Recipient: authorID,
			Actor:     userID,
			Type:      models.NotificationRepost,
			Message:   actor.Name + " reposted your post",
			PostID:    postID,
			GroupKey:  RepostGroupKey(postID, userID),
		})
		if err != nil {
			logger.Error(err, zap.String("post_id", postID))
		}
	}
	return nil
}

// Unrepost removes a repost and retracts the matching notification
func (s *EngagementService) Unrepost(ctx context.Context, userID uint, postID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.reposts.DeleteRepost(postID, userID); err != nil {
		if err == repositories.ErrRepostNotFound {
			return ErrNotReposted
		}
		return err
	}
	if err := s.posts.DecrementRepostsCount(ctx, postID); err != nil {
		return err
	}

	if authorID := s.postAuthorID(post); authorID != 0 {
		if err := s.engine.RetractGroup(authorID, RepostGroupKey(postID, userID)); err != nil {
			logger.Error(err, zap.String("post_id", postID))
		}
	}
	return nil
}

// Comment stores a comment, bumps the counter, notifies the post
// author, and fans out one mention notification per resolved @handle.
// Unknown handles are dropped silently; the commenter and the post
// author (already notified for the comment itself) are skipped.
func (s *EngagementService) Comment(ctx context.Context, userID uint, postID, content string) (*models.Comment, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: userID, Content: content}
	if err := s.comments.CreateComment(comment); err != nil {
		return nil, err
	}
	if err := s.posts.IncrementCommentsCount(ctx, postID); err != nil {
		return nil, err
	}

	actor := s.identity.Resolve(userID)
	authorID := s.postAuthorID(post)

	if authorID != 0 && authorID != userID {
		_, err = s.engine.Notify(Event{
			Recipient: authorID,
			Actor:     userID,
			Type:      models.NotificationComment,
			Message:   actor.Name + " commented on your post",
			PostID:    postID,
			CommentID: comment.ID,
			GroupKey:  CommentGroupKey(comment.ID),
		})
		if err != nil {
			logger.Error(err, zap.String("post_id", postID))
		}
	}

	s.notifyMentions(actor, userID, authorID, post, comment)
	return comment, nil
}

func (s *EngagementService) notifyMentions(actor Identity, commenterID, authorID uint, post *models.Post, comment *models.Comment) {
	for _, handle := range ExtractMentions(comment.Content) {
		mentioned, err := s.users.GetUserByDisplayName(handle)
		if err != nil {
			// Unresolved handles are not an error condition.
			continue
		}
		if mentioned.ID == commenterID || mentioned.ID == authorID {
			continue
		}
		_, err = s.engine.Notify(Event{
			Recipient: mentioned.ID,
			Actor:     commenterID,
			Type:      models.NotificationMention,
			Message:   actor.Name + " mentioned you in a comment",
			PostID:    comment.PostID,
			CommentID: comment.ID,
			GroupKey:  MentionGroupKey(comment.ID, mentioned.ID),
		})
		if err != nil {
			logger.Error(err, zap.Uint("mentioned_id", mentioned.ID))
		}
	}
}

// Follow creates the relationship and notifies the target. Duplicate
// follows are explicit conflicts.
func (s *EngagementService) Follow(followerID, targetID uint) error {
	if followerID == targetID {
		return ErrSelfFollow
	}

	isFollowing, err := s.follows.IsFollowing(followerID, targetID)
	if err != nil {
		return err
	}
	if isFollowing {
		return ErrAlreadyFollowing
	}

	if err := s.follows.CreateFollow(&models.Follow{FollowerID: followerID, FollowingID: targetID}); err != nil {
		return err
	}

	actor := s.identity.Resolve(followerID)
	_, err = s.engine.Notify(Event{
		Recipient: targetID,
		Actor:     followerID,
		Type:      models.NotificationFollow,
		Message:   actor.Name + " started following you",
		GroupKey:  FollowGroupKey(followerID),
	})
	if err != nil {
		logger.Error(err, zap.Uint("target_id", targetID))
	}
	return nil
}

// Unfollow removes the relationship and retracts the follow
// notification so it does not dangle.
func (s *EngagementService) Unfollow(followerID, targetID uint) error {
	if err := s.follows.DeleteFollow(followerID, targetID); err != nil {
		if err == repositories.ErrFollowNotFound {
			return ErrNotFollowing
		}
		return err
	}
	if err := s.engine.RetractGroup(targetID, FollowGroupKey(followerID)); err != nil {
		logger.Error(err, zap.Uint("target_id", targetID))
	}
	return nil
}

// Share mints a share link for the post and notifies the author.
// Repeated shares by the same actor collapse onto one notification.
func (s *EngagementService) Share(ctx context.Context, userID uint, postID string) (*models.Share, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	share := &models.Share{
		PostID: postID,
		UserID: userID,
		Token:  uuid.NewString(),
	}
	if err := s.shares.CreateShare(share); err != nil {
		return nil, err
	}

	if authorID := s.postAuthorID(post); authorID != 0 && authorID != userID {
		actor := s.identity.Resolve(userID)
		_, err = s.engine.Notify(Event{
			Recipient: authorID,
			Actor:     userID,
			Type:      models.NotificationShare,
			Message:   actor.Name + " shared your post",
			PostID:    postID,
			GroupKey:  ShareGroupKey(postID, userID),
		})
		if err != nil {
			logger.Error(err, zap.String("post_id", postID))
		}
	}
	return share, nil
}

// RecordPlay bumps the play counter on a post
func (s *EngagementService) RecordPlay(ctx context.Context, postID string) error {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return err
	}
	return s.posts.IncrementPlaysCount(ctx, postID)
}

func (s *EngagementService) postAuthorID(post *models.Post) uint {
	id, err := strconv.ParseUint(post.UserID, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
