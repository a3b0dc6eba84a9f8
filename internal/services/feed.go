package services

import (
	"context"
	"strconv"
	"time"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"github.com/profitboysub0-max/social-music-app/internal/repositories"
)

// Feed scopes
const (
	FeedScopePersonal = "personal"
	FeedScopePublic   = "public"
)

// ListeningHint is the presence-derived "listening now" chip shown on
// a feed post's author.
type ListeningHint struct {
	TrackTitle string `json:"track_title,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
}

// FeedPost is a post enriched with author identity, viewer flags and
// the author's presence hint.
type FeedPost struct {
	models.Post
	Author     Identity       `json:"author"`
	IsLiked    bool           `json:"is_liked"`
	IsReposted bool           `json:"is_reposted"`
	Listening  *ListeningHint `json:"listening,omitempty"`
}

// FeedService assembles the personal and public feeds
type FeedService struct {
	posts    repositories.PostRepository
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	likes    repositories.LikeRepository
	reposts  repositories.RepostRepository
	presence *PresenceService
	identity *IdentityResolver
}

// NewFeedService creates a new FeedService
func NewFeedService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	likes repositories.LikeRepository,
	reposts repositories.RepostRepository,
	presence *PresenceService,
	identity *IdentityResolver,
) *FeedService {
	return &FeedService{
		posts:    posts,
		users:    users,
		follows:  follows,
		likes:    likes,
		reposts:  reposts,
		presence: presence,
		identity: identity,
	}
}

// GetFeed returns the most recent posts for the given scope, newest
// first, truncated to limit. Personal scope restricts authorship to
// the viewer and their followees with an indexed author filter; public
// scope ignores the follow graph. viewerID zero means anonymous:
// personal scope is unavailable and all viewer flags are false.
func (s *FeedService) GetFeed(ctx context.Context, viewerID uint, scope string, limit int) ([]FeedPost, error) {
	var posts []models.Post
	var err error

	switch scope {
	case FeedScopePersonal:
		followingIDs, ferr := s.follows.GetFollowingIDs(viewerID)
		if ferr != nil {
			return nil, ferr
		}
		authorIDs := make([]string, 0, len(followingIDs)+1)
		authorIDs = append(authorIDs, strconv.FormatUint(uint64(viewerID), 10))
		for _, id := range followingIDs {
			authorIDs = append(authorIDs, strconv.FormatUint(uint64(id), 10))
		}
		posts, err = s.posts.GetPostsByAuthors(ctx, authorIDs, int64(limit))
	default:
		posts, err = s.posts.GetAllPosts(ctx, 0, int64(limit))
	}
	if err != nil {
		return nil, err
	}

	return s.enrich(posts, viewerID)
}

func (s *FeedService) enrich(posts []models.Post, viewerID uint) ([]FeedPost, error) {
	postIDs := make([]string, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID.Hex()
	}

	likedMap := map[string]bool{}
	repostedMap := map[string]bool{}
	if viewerID != 0 {
		var err error
		likedMap, err = s.likes.GetLikedPostIDs(viewerID, postIDs)
		if err != nil {
			return nil, err
		}
		repostedMap, err = s.reposts.GetRepostedPostIDs(viewerID, postIDs)
		if err != nil {
			return nil, err
		}
	}

	identityCache := make(map[string]Identity)
	listeningCache := make(map[string]*ListeningHint)

	enriched := make([]FeedPost, len(posts))
	for i, p := range posts {
		pid := p.ID.Hex()

		author, ok := identityCache[p.UserID]
		if !ok {
			author = s.resolveAuthor(p.UserID)
			identityCache[p.UserID] = author
			listeningCache[p.UserID] = s.listeningHint(author.ID)
		}

		enriched[i] = FeedPost{
			Post:       p,
			Author:     author,
			IsLiked:    likedMap[pid],
			IsReposted: repostedMap[pid],
			Listening:  listeningCache[p.UserID],
		}
	}
	return enriched, nil
}

func (s *FeedService) resolveAuthor(userID string) Identity {
	id, err := strconv.ParseUint(userID, 10, 32)
	if err != nil {
		return Identity{}
	}
	return s.identity.Resolve(uint(id))
}

func (s *FeedService) listeningHint(userID uint) *ListeningHint {
	if userID == 0 {
		return nil
	}
	record, err := s.presence.GetPresence(userID)
	if err != nil || record == nil || !record.IsActive {
		return nil
	}
	return &ListeningHint{
		TrackTitle: record.TrackTitle,
		StartedAt:  record.StartedAt.UTC().Format(time.RFC3339),
	}
}
