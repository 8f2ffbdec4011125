package refreshtoken

import (
	"time"
)

// RefreshToken is a persisted refresh token record. Only the SHA-256 hash of
// the token value is stored. Revoked moves from false to true and never back.
type RefreshToken struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	UserID     string     `json:"user_id" gorm:"size:36;not null;index"`
	TokenHash  string     `json:"-" gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"not null;index"`
	Revoked    bool       `json:"revoked" gorm:"not null;default:false;index"`
	RevokedAt  *time.Time `json:"revoked_at"`
	CreatedAt  time.Time  `json:"created_at"`
	DeviceInfo string     `json:"device_info" gorm:"size:500"`
	IPAddress  string     `json:"ip_address" gorm:"size:64"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// ClientInfo describes the client a refresh token is issued to.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}
