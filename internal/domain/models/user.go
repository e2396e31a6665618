// internal/domain/models/user.go
package models

import (
	"strings"
	"time"
)

// User is a directory entry mirrored from the external identity provider.
// The ID is the provider's stable user id, not a Mongo ObjectID.
//
// Display name and username lookups match the stored value exactly. Email
// matches on EmailCI, the lower-cased address.
type User struct {
	ID          string    `bson:"_id" json:"id"`
	DisplayName string    `bson:"display_name" json:"displayName"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	EmailCI     string    `bson:"email_ci,omitempty" json:"-"`
	Username    string    `bson:"username,omitempty" json:"username,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

// EmailKey is the lookup form of an email address: trimmed and lower-cased.
// Accents are kept, so "rené@x" and "rene@x" stay distinct.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
