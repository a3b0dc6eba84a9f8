package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"github.com/profitboysub0-max/social-music-app/internal/repositories"
	"github.com/profitboysub0-max/social-music-app/pkg/logger"
)

// WebPushSender delivers an encrypted payload to one browser push
// endpoint. Wrapped in an interface so delivery failures can be
// simulated in tests.
type WebPushSender interface {
	Send(payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)
}

type webpushSender struct{}

func (webpushSender) Send(payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, opts)
}

// PushOptions carries the VAPID credentials. Empty keys disable push
// entirely; dispatch becomes a silent no-op.
type PushOptions struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

// pushPayload is the contract the service worker consumes to render
// and route a notification click.
type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
	URL   string `json:"url"`
}

// PushService delivers notifications to registered browser endpoints.
// Delivery is best-effort and asynchronous: callers schedule by
// notification ID and never learn the outcome. Endpoints the push
// service reports as gone are pruned so future dispatches stop
// retrying them.
type PushService struct {
	opts          PushOptions
	notifications repositories.NotificationRepository
	subscriptions repositories.PushSubscriptionRepository
	identity      *IdentityResolver
	sender        WebPushSender
	pool          pond.Pool
}

// NewPushService creates a new PushService. Passing a nil sender uses
// the real web push transport.
func NewPushService(
	opts PushOptions,
	notifications repositories.NotificationRepository,
	subscriptions repositories.PushSubscriptionRepository,
	identity *IdentityResolver,
	sender WebPushSender,
) *PushService {
	if sender == nil {
		sender = webpushSender{}
	}
	return &PushService{
		opts:          opts,
		notifications: notifications,
		subscriptions: subscriptions,
		identity:      identity,
		sender:        sender,
		// Non-blocking: delivery is best-effort, so when the queue
		// backs up excess work is dropped rather than stalling the
		// request that scheduled it.
		pool: pond.NewPool(16, pond.WithQueueSize(1024), pond.WithNonBlocking(true)),
	}
}

// Enabled reports whether VAPID credentials are configured
func (s *PushService) Enabled() bool {
	return s.opts.VAPIDPublicKey != "" && s.opts.VAPIDPrivateKey != ""
}

// Dispatch schedules asynchronous delivery for a notification and
// returns immediately. Implements Dispatcher.
func (s *PushService) Dispatch(notificationID uint) {
	if !s.Enabled() {
		return
	}
	s.pool.Submit(func() {
		s.Deliver(notificationID)
	})
}

// Stop drains the delivery pool. Called on shutdown.
func (s *PushService) Stop() {
	s.pool.StopAndWait()
}

// Deliver sends the notification to every endpoint registered for its
// recipient. It always reads current notification state, so retrying
// the same ID is safe. A vanished notification or an empty endpoint
// set is a no-op.
func (s *PushService) Deliver(notificationID uint) {
	if !s.Enabled() {
		return
	}

	notification, err := s.notifications.GetByID(notificationID)
	if err != nil {
		logger.Error(err, zap.Uint("notification_id", notificationID))
		return
	}
	if notification == nil {
		return
	}

	subs, err := s.subscriptions.GetByUserID(notification.RecipientID)
	if err != nil {
		logger.Error(err, zap.Uint("recipient_id", notification.RecipientID))
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(s.renderPayload(notification))
	if err != nil {
		logger.Error(err, zap.Uint("notification_id", notificationID))
		return
	}

	// Endpoints are independent: one slow or failing endpoint must not
	// hold up the others.
	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub models.PushSubscription) {
			defer wg.Done()
			s.sendToEndpoint(payload, sub)
		}(sub)
	}
	wg.Wait()
}

func (s *PushService) sendToEndpoint(payload []byte, sub models.PushSubscription) {
	resp, err := s.sender.Send(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.opts.Subscriber,
		VAPIDPublicKey:  s.opts.VAPIDPublicKey,
		VAPIDPrivateKey: s.opts.VAPIDPrivateKey,
		TTL:             60 * 60 * 24,
	})
	if err != nil {
		logger.Warn("push delivery failed", zap.Uint("subscription_id", sub.ID), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// The endpoint no longer exists; prune it so future
		// dispatches stop retrying.
		if err := s.subscriptions.DeleteByID(sub.ID); err != nil {
			logger.Error(err, zap.Uint("subscription_id", sub.ID))
		} else {
			logger.Info("pruned expired push subscription",
				zap.Uint("subscription_id", sub.ID),
				zap.Int("status", resp.StatusCode))
		}
	case resp.StatusCode >= 400:
		// Transient or unclassified failure; keep the subscription.
		logger.Warn("push endpoint returned error",
			zap.Uint("subscription_id", sub.ID),
			zap.Int("status", resp.StatusCode))
	}
}

// renderPayload builds the delivery payload: a title fixed per type, a
// body from the stored message, a dedupe tag so the browser tray
// collapses rapid repeats, and the deep link a click should open.
func (s *PushService) renderPayload(n *models.Notification) pushPayload {
	tag := n.GroupKey
	if tag == "" {
		tag = fmt.Sprintf("notification-%d", n.ID)
	}
	return pushPayload{
		Title: titleFor(n.Type),
		Body:  n.Message,
		Tag:   tag,
		URL:   s.targetURL(n),
	}
}

func titleFor(t models.NotificationType) string {
	switch t {
	case models.NotificationLike:
		return "New like"
	case models.NotificationComment:
		return "New comment"
	case models.NotificationFollow:
		return "New follower"
	case models.NotificationMention:
		return "You were mentioned"
	case models.NotificationRepost:
		return "New repost"
	case models.NotificationShare:
		return "Your post was shared"
	case models.NotificationFriendListening:
		return "Friend listening"
	case models.NotificationNetworkTrending:
		return "Trending in your network"
	case models.NotificationSystemUpdate:
		return "Announcement"
	default:
		return "Notification"
	}
}

func (s *PushService) targetURL(n *models.Notification) string {
	if n.PostID != "" {
		target := "/feed?post=" + n.PostID
		if n.CommentID != 0 {
			target += fmt.Sprintf("&comment=%d", n.CommentID)
		}
		return target
	}
	if n.Type == models.NotificationFollow && n.ActorID != 0 {
		actor := s.identity.Resolve(n.ActorID)
		return "/search?q=" + url.QueryEscape(actor.Name)
	}
	return "/notifications"
}
