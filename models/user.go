package models

import "time"

// UserProfile is the persistent profile keyed by the booking email.
type UserProfile struct {
	UserID    string    `bson:"user_id" json:"user_id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
