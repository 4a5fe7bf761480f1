// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the canonical data structures the client renders:
// users, key records, profiles and notifications. The normalization layer
// in this package maps the service's inconsistent response shapes onto
// them.
package model

import (
	"fmt"
	"time"
)

// Role is the access level the service assigns to a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserSummary identifies a user as the service reports it. IDs are stable;
// usernames are unique but mutable.
type UserSummary struct {
	ID        int
	Username  string
	Role      Role
	HasSSHKey bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u UserSummary) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// String returns the username with the numeric ID, e.g. "alice (#3)".
func (u UserSummary) String() string {
	return fmt.Sprintf("%s (#%d)", u.Username, u.ID)
}

// KeyRecord is the canonical shape of an SSH key pair as displayed to the
// user. The service returns it under several field spellings depending on
// revision; NormalizeKey maps them all onto this struct.
type KeyRecord struct {
	Algorithm     string
	Bits          int
	PublicKey     string
	PEMPrivateKey string
	PPKPrivateKey string
	Fingerprint   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// KeyInfo is the key metadata embedded in a profile response. The private
// halves are never included there.
type KeyInfo struct {
	Algorithm   string
	Bits        int
	Fingerprint string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Profile is the caller's own account detail, a user summary plus key
// metadata when a key exists.
type Profile struct {
	UserSummary
	Key *KeyInfo
}

// Severity classifies a notification for presentation.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityError
	SeverityWarning
	SeverityInfo
)

// Notification is a transient user-visible message. Notifications do not
// stack; a new one replaces whatever is currently shown.
type Notification struct {
	Severity Severity
	Message  string
	Timeout  time.Duration
}
