package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session stores a server-side login session. Only the SHA-256 hash of the
// session token is persisted; the raw token lives in the client cookie.
type Session struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	TokenHash  string             `bson:"token_hash" json:"-"`
	ExpiresAt  time.Time          `bson:"expires_at" json:"expires_at"`
	RememberMe bool               `bson:"remember_me" json:"remember_me"`
	UserAgent  string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
