package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"github.com/profitboysub0-max/social-music-app/internal/repositories"
	"github.com/profitboysub0-max/social-music-app/pkg/logger"
)

// trendingThresholds are the like counts at which a post is announced
// to the author's followers, scanned in ascending order.
var trendingThresholds = []int{5, 10, 25}

// Dispatcher schedules asynchronous push delivery for a notification.
// Implementations must not block the caller and must never surface
// delivery errors back to it.
type Dispatcher interface {
	Dispatch(notificationID uint)
}

// NopDispatcher discards dispatch requests, used when push is disabled
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(uint) {}

// Event is a candidate notification handed to the engine by an
// engagement mutator.
type Event struct {
	Recipient uint
	Actor     uint // zero when there is no actor
	Type      models.NotificationType
	Message   string
	PostID    string
	CommentID uint
	GroupKey  string
}

// NotificationService creates, dedups and retracts notifications, and
// schedules push delivery for each one it touches.
type NotificationService struct {
	notifications repositories.NotificationRepository
	follows       repositories.FollowRepository
	users         repositories.UserRepository
	identity      *IdentityResolver
	dispatcher    Dispatcher
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notifications repositories.NotificationRepository,
	follows repositories.FollowRepository,
	users repositories.UserRepository,
	identity *IdentityResolver,
	dispatcher Dispatcher,
) *NotificationService {
	if dispatcher == nil {
		dispatcher = NopDispatcher{}
	}
	return &NotificationService{
		notifications: notifications,
		follows:       follows,
		users:         users,
		identity:      identity,
		dispatcher:    dispatcher,
	}
}

// Notify upserts a notification. When the event carries a group key
// and a notification already exists for (recipient, key), that row is
// rewritten in place: actor, message and references are replaced, the
// timestamp resets and the read flag clears so the notification
// resurfaces as unread. Otherwise a fresh row is inserted. Push
// delivery is scheduled either way, after the row is durable.
func (s *NotificationService) Notify(ev Event) (uint, error) {
	now := time.Now()

	if ev.GroupKey != "" {
		existing, err := s.notifications.GetByRecipientAndGroup(ev.Recipient, ev.GroupKey)
		if err != nil {
			return 0, err
		}
		if existing != nil {
			existing.ActorID = ev.Actor
			existing.Type = ev.Type
			existing.Message = ev.Message
			existing.PostID = ev.PostID
			existing.CommentID = ev.CommentID
			existing.IsRead = false
			existing.CreatedAt = now
			if err := s.notifications.UpdateNotification(existing); err != nil {
				return 0, err
			}
			s.dispatcher.Dispatch(existing.ID)
			return existing.ID, nil
		}
	}

	notification := &models.Notification{
		RecipientID: ev.Recipient,
		ActorID:     ev.Actor,
		Type:        ev.Type,
		Message:     ev.Message,
		PostID:      ev.PostID,
		CommentID:   ev.CommentID,
		GroupKey:    ev.GroupKey,
		CreatedAt:   now,
	}
	if err := s.notifications.CreateNotification(notification); err != nil {
		return 0, err
	}
	s.dispatcher.Dispatch(notification.ID)
	return notification.ID, nil
}

// RetractGroup deletes every notification for the group key, used when
// the triggering relationship is undone (unfollow, unlike, unrepost).
func (s *NotificationService) RetractGroup(recipientID uint, groupKey string) error {
	return s.notifications.DeleteByRecipientAndGroup(recipientID, groupKey)
}

// NotifyTrending fires network_trending notifications when a post's
// like count crosses a threshold. Only the transition fires: the first
// threshold in ascending order with countBefore < t <= countAfter. No
// crossing, or an author without followers, is a normal no-op.
func (s *NotificationService) NotifyTrending(post *models.Post, authorID uint, countBefore, countAfter int) error {
	var crossed int
	for _, t := range trendingThresholds {
		if countBefore < t && countAfter >= t {
			crossed = t
			break
		}
	}
	if crossed == 0 {
		return nil
	}

	followerIDs, err := s.follows.GetFollowerIDs(authorID)
	if err != nil {
		return err
	}
	if len(followerIDs) == 0 {
		return nil
	}

	author := s.identity.Resolve(authorID)
	message := fmt.Sprintf("%s's post is trending with %d likes", author.Name, crossed)
	postID := post.ID.Hex()

	for _, followerID := range followerIDs {
		_, err := s.Notify(Event{
			Recipient: followerID,
			Actor:     authorID,
			Type:      models.NotificationNetworkTrending,
			Message:   message,
			PostID:    postID,
			GroupKey:  TrendingGroupKey(postID, crossed),
		})
		if err != nil {
			logger.Error(err, zap.Uint("follower_id", followerID), zap.String("post_id", postID))
		}
	}
	return nil
}

// Broadcast creates a system_update notification for every user.
// Identical messages collapse onto the same row per recipient.
func (s *NotificationService) Broadcast(message string) error {
	ids, err := s.users.GetAllUserIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		_, err := s.Notify(Event{
			Recipient: id,
			Type:      models.NotificationSystemUpdate,
			Message:   message,
			GroupKey:  SystemGroupKey(message),
		})
		if err != nil {
			logger.Error(err, zap.Uint("recipient_id", id))
		}
	}
	return nil
}

// Group key builders. A group key identifies "the same logical event"
// across repeats so the engine can collapse them onto one row.

func FollowGroupKey(actorID uint) string {
	return fmt.Sprintf("follow:%d", actorID)
}

func LikeGroupKey(postID string, actorID uint) string {
	return fmt.Sprintf("like:%s:%d", postID, actorID)
}

func RepostGroupKey(postID string, actorID uint) string {
	return fmt.Sprintf("repost:%s:%d", postID, actorID)
}

func CommentGroupKey(commentID uint) string {
	return fmt.Sprintf("comment:%d", commentID)
}

func MentionGroupKey(commentID, mentionedID uint) string {
	return fmt.Sprintf("mention:%d:%d", commentID, mentionedID)
}

func ShareGroupKey(postID string, actorID uint) string {
	return fmt.Sprintf("share:%s:%d", postID, actorID)
}

func ListeningGroupKey(actorID uint, trackURL string) string {
	return fmt.Sprintf("listening:%d:%s", actorID, trackURL)
}

func TrendingGroupKey(postID string, threshold int) string {
	return fmt.Sprintf("trending:%s:%d", postID, threshold)
}

func SystemGroupKey(message string) string {
	return "system:" + message
}
