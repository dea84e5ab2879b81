package models

import "time"

// User is a ServSwap member. Documents live in the "users" collection.
type User struct {
	ID          string `bson:"id" json:"id"`
	FirebaseUID string `bson:"firebaseUid" json:"-"`
	Email       string `bson:"email" json:"email"`
	DisplayName string `bson:"displayName" json:"displayName"`
	Bio         string `bson:"bio,omitempty" json:"bio,omitempty"`
	Location    string `bson:"location,omitempty" json:"location,omitempty"`
	AvatarURL   string `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`

	SkillsOffered []string `bson:"skillsOffered" json:"skillsOffered"`
	SkillsWanted  []string `bson:"skillsWanted" json:"skillsWanted"`

	Rating         float64 `bson:"rating" json:"rating"`
	RatingCount    int     `bson:"ratingCount" json:"ratingCount"`
	CompletedSwaps int     `bson:"completedSwaps" json:"completedSwaps"`

	// Verified mirrors the verification add-on; it is recomputed on every subscription update.
	Verified     bool         `bson:"verified" json:"verified"`
	Subscription Subscription `bson:"subscription" json:"subscription"`

	Devices           []Device          `bson:"devices" json:"-"`
	FCMTokens         []string          `bson:"fcmTokens" json:"-"`
	NotificationPrefs NotificationPrefs `bson:"notificationPrefs" json:"notificationPrefs"`

	Suspended bool      `bson:"suspended" json:"suspended,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type NotificationPrefs struct {
	Push  bool `bson:"push" json:"push"`
	Email bool `bson:"email" json:"email"`
}

// PublicProfile is the view of a user that other members can see.
type PublicProfile struct {
	ID             string    `json:"id"`
	DisplayName    string    `json:"displayName"`
	Bio            string    `json:"bio,omitempty"`
	Location       string    `json:"location,omitempty"`
	AvatarURL      string    `json:"avatarUrl,omitempty"`
	SkillsOffered  []string  `json:"skillsOffered"`
	SkillsWanted   []string  `json:"skillsWanted"`
	Rating         float64   `json:"rating"`
	RatingCount    int       `json:"ratingCount"`
	CompletedSwaps int       `json:"completedSwaps"`
	Verified       bool      `json:"verified"`
	Premium        bool      `json:"premium"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UserUpdateRequest is a partial profile update; nil fields are left untouched.
type UserUpdateRequest struct {
	DisplayName       *string            `json:"displayName"`
	Bio               *string            `json:"bio"`
	Location          *string            `json:"location"`
	SkillsOffered     []string           `json:"skillsOffered"`
	SkillsWanted      []string           `json:"skillsWanted"`
	NotificationPrefs *NotificationPrefs `json:"notificationPrefs"`
}

// SessionRequest exchanges a Firebase ID token for an app session.
type SessionRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// AuthResponse contains the user's ID, session token and profile.
type AuthResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type FCMTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
