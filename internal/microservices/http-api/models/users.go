package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string `gorm:"size:150;uniqueIndex;uniqueIndex:idx_users_email_username,priority:2;not null" json:"username"`
	Email       string `gorm:"size:254;uniqueIndex;uniqueIndex:idx_users_email_username,priority:1;not null" json:"email"`
	FirstName   string `gorm:"size:150" json:"first_name"`
	LastName    string `gorm:"size:150" json:"last_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	Role        Role   `gorm:"size:16;default:'user';not null" json:"role"`
	IsSuperuser bool   `gorm:"default:false;not null" json:"-"`

	// ConfirmationVersion is the fingerprint confirmation codes are derived from.
	// Issuing a code or redeeming one advances it, which makes older codes stale.
	ConfirmationVersion int64      `gorm:"default:0;not null" json:"-"`
	ConfirmedAt         *time.Time `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}

func (user *User) IsModerator() bool {
	return user != nil && user.Role == RoleModerator
}

// IsAdmin is true for the admin role and for superusers regardless of role.
func (user *User) IsAdmin() bool {
	return user != nil && (user.Role == RoleAdmin || user.IsSuperuser)
}

// IsConfirmed reports whether the user has redeemed a confirmation code at least once.
func (user *User) IsConfirmed() bool {
	return user != nil && user.ConfirmedAt != nil
}

const (
	MaxUsernameLength = 150
	MaxEmailLength    = 254

	// ReservedUsername names the current-user endpoint and can never be registered.
	ReservedUsername = "me"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// ValidUsername reports whether name matches the allowed character set and length.
func ValidUsername(name string) bool {
	return name != "" && len(name) <= MaxUsernameLength && usernamePattern.MatchString(name)
}
