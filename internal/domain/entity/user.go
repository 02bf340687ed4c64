package entity

import (
	"time"
)

type User struct {
	ID        string    `json:"id" firestore:"-"`
	Name      string    `json:"name" firestore:"name"`
	Email     string    `json:"email,omitempty" firestore:"email,omitempty"`
	Phone     string    `json:"phone,omitempty" firestore:"phone,omitempty"`
	Bio       string    `json:"bio,omitempty" firestore:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty" firestore:"avatarUrl,omitempty"`
	Favorites []string  `json:"favorites" firestore:"favorites"`
	UpdatedAt time.Time `json:"updated_at,omitempty" firestore:"updatedAt,omitempty"`
}

// ProfileUpdate carries the profile fields a user may edit. Empty fields are
// left untouched.
type ProfileUpdate struct {
	Name      string
	Email     string
	Phone     string
	Bio       string
	AvatarURL string
}

func (p ProfileUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if p.Name != "" {
		fields["name"] = p.Name
	}
	if p.Email != "" {
		fields["email"] = p.Email
	}
	if p.Phone != "" {
		fields["phone"] = p.Phone
	}
	if p.Bio != "" {
		fields["bio"] = p.Bio
	}
	if p.AvatarURL != "" {
		fields["avatarUrl"] = p.AvatarURL
	}
	return fields
}

func (u *User) HasFavorite(itemID string) bool {
	for _, id := range u.Favorites {
		if id == itemID {
			return true
		}
	}
	return false
}
