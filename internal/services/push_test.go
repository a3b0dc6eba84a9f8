package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profitboysub0-max/social-music-app/internal/models"
)

// gatedWebPushSender holds every Send until release is closed.
type gatedWebPushSender struct {
	release chan struct{}
	inner   *fakeWebPushSender
}

func (g *gatedWebPushSender) Send(payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
	<-g.release
	return g.inner.Send(payload, sub, opts)
}

func newTestPushService(t *testing.T, env *testEnv, sender *fakeWebPushSender) *PushService {
	t.Helper()
	svc := NewPushService(PushOptions{
		VAPIDPublicKey:  "test-public-key",
		VAPIDPrivateKey: "test-private-key",
		Subscriber:      "admin@example.com",
	}, env.notifications, env.subscriptions, env.identity, sender)
	t.Cleanup(svc.Stop)
	return svc
}

func subscribe(t *testing.T, env *testEnv, userID uint, endpoint string) *models.PushSubscription {
	t.Helper()
	sub := &models.PushSubscription{
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   "p256dh-key",
		Auth:     "auth-secret",
	}
	require.NoError(t, env.subscriptions.Upsert(sub))
	return sub
}

func TestDeliverSendsRenderedPayload(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")
	bob := createUser(t, env.db, "bob", "Bob")
	subscribe(t, env, alice.ID, "https://push.example.com/ep1")

	groupKey := LikeGroupKey("abc123", bob.ID)
	id, err := env.engine.Notify(Event{
		Recipient: alice.ID,
		Actor:     bob.ID,
		Type:      models.NotificationLike,
		Message:   "Bob liked your post",
		PostID:    "abc123",
		GroupKey:  groupKey,
	})
	require.NoError(t, err)

	sender := newFakeWebPushSender()
	svc := newTestPushService(t, env, sender)
	svc.Deliver(id)

	require.Equal(t, 1, sender.sentCount())

	var payload pushPayload
	require.NoError(t, json.Unmarshal(sender.payloads["https://push.example.com/ep1"], &payload))
	assert.Equal(t, "New like", payload.Title)
	assert.Equal(t, "Bob liked your post", payload.Body)
	assert.Equal(t, groupKey, payload.Tag)
	assert.Equal(t, "/feed?post=abc123", payload.URL)
}

func TestDeliverFansOutToAllEndpoints(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")
	for i := 0; i < 3; i++ {
		subscribe(t, env, alice.ID, fmt.Sprintf("https://push.example.com/ep%d", i))
	}

	id, err := env.engine.Notify(Event{
		Recipient: alice.ID,
		Type:      models.NotificationSystemUpdate,
		Message:   "hello",
	})
	require.NoError(t, err)

	sender := newFakeWebPushSender()
	svc := newTestPushService(t, env, sender)
	svc.Deliver(id)

	assert.Equal(t, 3, sender.sentCount())
}

func TestDeliverPrunesGoneEndpoints(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")
	gone := subscribe(t, env, alice.ID, "https://push.example.com/gone")
	kept := subscribe(t, env, alice.ID, "https://push.example.com/kept")

	id, err := env.engine.Notify(Event{
		Recipient: alice.ID,
		Type:      models.NotificationSystemUpdate,
		Message:   "hello",
	})
	require.NoError(t, err)

	sender := newFakeWebPushSender()
	sender.statuses["https://push.example.com/gone"] = http.StatusGone
	svc := newTestPushService(t, env, sender)
	svc.Deliver(id)

	subs, err := env.subscriptions.GetByUserID(alice.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1, "a 410 endpoint is pruned")
	assert.Equal(t, kept.ID, subs[0].ID)
	assert.NotEqual(t, gone.ID, subs[0].ID)
}

func TestDeliverKeepsEndpointOnTransientFailure(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")
	subscribe(t, env, alice.ID, "https://push.example.com/flaky")

	id, err := env.engine.Notify(Event{
		Recipient: alice.ID,
		Type:      models.NotificationSystemUpdate,
		Message:   "hello",
	})
	require.NoError(t, err)

	sender := newFakeWebPushSender()
	sender.statuses["https://push.example.com/flaky"] = http.StatusInternalServerError
	svc := newTestPushService(t, env, sender)
	svc.Deliver(id)

	subs, err := env.subscriptions.GetByUserID(alice.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1, "a 5xx response keeps the subscription")
}

func TestDeliverWithoutSubscriptionsIsNoop(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")

	id, err := env.engine.Notify(Event{
		Recipient: alice.ID,
		Type:      models.NotificationSystemUpdate,
		Message:   "hello",
	})
	require.NoError(t, err)

	sender := newFakeWebPushSender()
	svc := newTestPushService(t, env, sender)
	svc.Deliver(id)

	assert.Zero(t, sender.sentCount())
}

func TestDeliverMissingNotificationIsNoop(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")
	subscribe(t, env, alice.ID, "https://push.example.com/ep1")

	sender := newFakeWebPushSender()
	svc := newTestPushService(t, env, sender)
	svc.Deliver(99999)

	assert.Zero(t, sender.sentCount())
}

func TestPushDisabledWithoutVAPIDKeys(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")
	subscribe(t, env, alice.ID, "https://push.example.com/ep1")

	id, err := env.engine.Notify(Event{
		Recipient: alice.ID,
		Type:      models.NotificationSystemUpdate,
		Message:   "hello",
	})
	require.NoError(t, err)

	sender := newFakeWebPushSender()
	svc := NewPushService(PushOptions{}, env.notifications, env.subscriptions, env.identity, sender)
	t.Cleanup(svc.Stop)

	assert.False(t, svc.Enabled())
	svc.Dispatch(id)
	svc.Deliver(id)
	assert.Zero(t, sender.sentCount())
}

func TestDispatchDeliversAsynchronously(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")
	subscribe(t, env, alice.ID, "https://push.example.com/ep1")

	id, err := env.engine.Notify(Event{
		Recipient: alice.ID,
		Type:      models.NotificationSystemUpdate,
		Message:   "hello",
	})
	require.NoError(t, err)

	sender := newFakeWebPushSender()
	svc := NewPushService(PushOptions{
		VAPIDPublicKey:  "test-public-key",
		VAPIDPrivateKey: "test-private-key",
		Subscriber:      "admin@example.com",
	}, env.notifications, env.subscriptions, env.identity, sender)

	svc.Dispatch(id)
	svc.Stop() // drains the pool

	assert.Equal(t, 1, sender.sentCount())
}

func TestDispatchDoesNotBlockWhenQueueSaturates(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")
	subscribe(t, env, alice.ID, "https://push.example.com/ep1")

	id, err := env.engine.Notify(Event{
		Recipient: alice.ID,
		Type:      models.NotificationSystemUpdate,
		Message:   "hello",
	})
	require.NoError(t, err)

	sender := &gatedWebPushSender{
		release: make(chan struct{}),
		inner:   newFakeWebPushSender(),
	}
	svc := NewPushService(PushOptions{
		VAPIDPublicKey:  "test-public-key",
		VAPIDPrivateKey: "test-private-key",
		Subscriber:      "admin@example.com",
	}, env.notifications, env.subscriptions, env.identity, sender)

	// Every worker is parked on the gate, so this overruns the queue
	// by a wide margin. Excess deliveries are dropped; what must not
	// happen is the caller stalling here.
	for i := 0; i < 2000; i++ {
		svc.Dispatch(id)
	}

	close(sender.release)
	svc.Stop()

	assert.Positive(t, sender.inner.sentCount())
}

func TestPayloadTagFallsBackToNotificationID(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")
	subscribe(t, env, alice.ID, "https://push.example.com/ep1")

	id, err := env.engine.Notify(Event{
		Recipient: alice.ID,
		Type:      models.NotificationSystemUpdate,
		Message:   "hello",
	})
	require.NoError(t, err)

	sender := newFakeWebPushSender()
	svc := newTestPushService(t, env, sender)
	svc.Deliver(id)

	var payload pushPayload
	require.NoError(t, json.Unmarshal(sender.payloads["https://push.example.com/ep1"], &payload))
	assert.Equal(t, fmt.Sprintf("notification-%d", id), payload.Tag)
	assert.Equal(t, "/notifications", payload.URL)
}

func TestFollowNotificationDeepLinksToActor(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")
	bob := createUser(t, env.db, "bob", "Bob Dylan")
	subscribe(t, env, alice.ID, "https://push.example.com/ep1")

	id, err := env.engine.Notify(Event{
		Recipient: alice.ID,
		Actor:     bob.ID,
		Type:      models.NotificationFollow,
		Message:   "Bob Dylan started following you",
		GroupKey:  FollowGroupKey(bob.ID),
	})
	require.NoError(t, err)

	sender := newFakeWebPushSender()
	svc := newTestPushService(t, env, sender)
	svc.Deliver(id)

	var payload pushPayload
	require.NoError(t, json.Unmarshal(sender.payloads["https://push.example.com/ep1"], &payload))
	assert.Equal(t, "New follower", payload.Title)
	assert.Equal(t, "/search?q=Bob+Dylan", payload.URL)
}

func TestCommentDeepLinkIncludesCommentAnchor(t *testing.T) {
	env := newTestEnv(t)
	alice := createUser(t, env.db, "alice", "Alice")
	bob := createUser(t, env.db, "bob", "Bob")
	subscribe(t, env, alice.ID, "https://push.example.com/ep1")

	id, err := env.engine.Notify(Event{
		Recipient: alice.ID,
		Actor:     bob.ID,
		Type:      models.NotificationComment,
		Message:   "Bob commented on your post",
		PostID:    "abc123",
		CommentID: 42,
		GroupKey:  CommentGroupKey(42),
	})
	require.NoError(t, err)

	sender := newFakeWebPushSender()
	svc := newTestPushService(t, env, sender)
	svc.Deliver(id)

	var payload pushPayload
	require.NoError(t, json.Unmarshal(sender.payloads["https://push.example.com/ep1"], &payload))
	assert.Equal(t, "/feed?post=abc123&comment=42", payload.URL)
}
