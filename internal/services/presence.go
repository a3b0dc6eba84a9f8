package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"github.com/profitboysub0-max/social-music-app/internal/repositories"
	"github.com/profitboysub0-max/social-music-app/pkg/logger"
)

// InactivityWindow is how long a presence record stays "listening"
// after its last report before reads downgrade it to inactive.
const InactivityWindow = 2 * time.Minute

// PresenceService tracks per-user "currently listening" state.
// Staleness is computed lazily at read time against the inactivity
// window; nothing sweeps records in the background.
type PresenceService struct {
	presence repositories.PresenceRepository
	follows  repositories.FollowRepository
	identity *IdentityResolver
	engine   *NotificationService
}

// NewPresenceService creates a new PresenceService
func NewPresenceService(
	presence repositories.PresenceRepository,
	follows repositories.FollowRepository,
	identity *IdentityResolver,
	engine *NotificationService,
) *PresenceService {
	return &PresenceService{
		presence: presence,
		follows:  follows,
		identity: identity,
		engine:   engine,
	}
}

// ReportPlayback records the user's playback state. The started-at
// timestamp is preserved across repeated reports of the same track
// while active, so continuous playback keeps its elapsed accounting;
// it resets when the track changes or the user comes back from
// inactive. A transition into actively playing a track fans out a
// friend_listening notification to every follower.
func (s *PresenceService) ReportPlayback(userID uint, trackURL, trackTitle string, isPlaying bool) error {
	now := time.Now()

	record, err := s.presence.GetByUserID(userID)
	if err != nil {
		return err
	}

	active := trackURL != "" && isPlaying

	// The stored flag is only a hint: a record past the window counts
	// as inactive even if it still says active.
	wasActive := record != nil && record.IsActive && now.Sub(record.LastSeenAt) <= InactivityWindow
	sameTrack := record != nil && record.TrackURL == trackURL

	startedAt := now
	if active && wasActive && sameTrack {
		startedAt = record.StartedAt
	}

	if record == nil {
		record = &models.Presence{UserID: userID}
	}
	record.TrackURL = trackURL
	record.TrackTitle = trackTitle
	record.StartedAt = startedAt
	record.LastSeenAt = now
	record.IsActive = active

	if err := s.presence.Save(record); err != nil {
		return err
	}

	// Newly playing this track: tell followers. Repeated reports of an
	// ongoing session stay quiet.
	if active && (!wasActive || !sameTrack) {
		s.fanOutListening(userID, trackURL, trackTitle)
	}
	return nil
}

// GetPresence returns the user's presence with staleness applied, or
// nil when the user has never reported playback. A stale record is
// served as inactive without being rewritten.
func (s *PresenceService) GetPresence(userID uint) (*models.Presence, error) {
	record, err := s.presence.GetByUserID(userID)
	if err != nil || record == nil {
		return nil, err
	}

	out := *record
	if out.IsActive && time.Since(out.LastSeenAt) > InactivityWindow {
		out.IsActive = false
	}
	return &out, nil
}

func (s *PresenceService) fanOutListening(userID uint, trackURL, trackTitle string) {
	followerIDs, err := s.follows.GetFollowerIDs(userID)
	if err != nil {
		logger.Error(err, zap.Uint("user_id", userID))
		return
	}
	if len(followerIDs) == 0 {
		return
	}

	actor := s.identity.Resolve(userID)
	title := trackTitle
	if title == "" {
		title = trackURL
	}
	message := fmt.Sprintf("%s is listening to %s", actor.Name, title)

	for _, followerID := range followerIDs {
		_, err := s.engine.Notify(Event{
			Recipient: followerID,
			Actor:     userID,
			Type:      models.NotificationFriendListening,
			Message:   message,
			GroupKey:  ListeningGroupKey(userID, trackURL),
		})
		if err != nil {
			logger.Error(err, zap.Uint("follower_id", followerID))
		}
	}
}
