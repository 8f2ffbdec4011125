package identity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	UserName     string     `json:"userName" gorm:"uniqueIndex;size:256;not null"`
	Email        string     `json:"email" gorm:"size:256"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Roles        []UserRole `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}

func (u *User) Principal() *Principal {
	return &Principal{
		ID:    u.ID,
		Name:  u.UserName,
		Roles: u.RoleNames(),
	}
}

type UserRole struct {
	ID     uint   `gorm:"primaryKey"`
	UserID string `gorm:"size:36;not null;uniqueIndex:idx_user_role"`
	Name   string `gorm:"size:64;not null;uniqueIndex:idx_user_role"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// Principal is the authenticated identity handed to token issuance.
type Principal struct {
	ID    string
	Name  string
	Roles []string
}

func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
