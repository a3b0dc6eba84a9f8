package services

import (
	"strings"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"github.com/profitboysub0-max/social-music-app/internal/repositories"
)

// Identity is the display form of a user attached to feeds,
// notifications and presence hints.
type Identity struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// IdentityResolver resolves a user's display name and avatar URL,
// falling back to raw account fields when no profile values are set.
type IdentityResolver struct {
	users         repositories.UserRepository
	avatarBaseURL string
}

// NewIdentityResolver creates a new IdentityResolver. avatarBaseURL is
// the blob store prefix avatar keys resolve against.
func NewIdentityResolver(users repositories.UserRepository, avatarBaseURL string) *IdentityResolver {
	return &IdentityResolver{users: users, avatarBaseURL: avatarBaseURL}
}

// Resolve looks up a user and returns their display identity. Unknown
// users resolve to a zero identity rather than an error.
func (r *IdentityResolver) Resolve(userID uint) Identity {
	user, err := r.users.GetUserByID(userID)
	if err != nil || user == nil {
		return Identity{ID: userID}
	}
	return r.ResolveUser(user)
}

// ResolveUser builds the display identity from a loaded user record
func (r *IdentityResolver) ResolveUser(user *models.User) Identity {
	name := user.DisplayName
	if name == "" {
		name = user.Name
	}
	if name == "" {
		// Last resort: the local part of the account email
		if at := strings.Index(user.Email, "@"); at > 0 {
			name = user.Email[:at]
		} else {
			name = user.Email
		}
	}

	var avatarURL string
	if user.AvatarKey != "" && r.avatarBaseURL != "" {
		avatarURL = strings.TrimSuffix(r.avatarBaseURL, "/") + "/" + user.AvatarKey
	}

	return Identity{ID: user.ID, Name: name, AvatarURL: avatarURL}
}
