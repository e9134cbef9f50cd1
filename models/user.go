package models

import "time"

// TokenTTL is how long a non-permanent token stays valid after login.
const TokenTTL = 72 * time.Hour

// User owns conversations, tokens, settings and organizations.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	Organizations []Organization `json:"-" gorm:"foreignKey:OwnerID"`
	ModelSettings []ModelSetting `json:"-"`
	Conversations []Conversation `json:"-"`
	Tokens        []Token        `json:"-"`
}

// Token is an opaque bearer credential. A request is authenticated by an
// exact lookup of Token.Token.
type Token struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	UserID         uint       `json:"user_id" gorm:"index;not null"`
	Token          string     `json:"token" gorm:"uniqueIndex;size:64;not null"`
	IsPermanent    bool       `json:"is_permanent" gorm:"default:false"`
	ExpirationDate *time.Time `json:"expiration_date"`
}

// NewToken binds value to userID. Non-permanent tokens expire ttl after now.
func NewToken(userID uint, value string, permanent bool, now time.Time, ttl time.Duration) Token {
	t := Token{UserID: userID, Token: value, IsPermanent: permanent}
	if !permanent {
		exp := now.UTC().Add(ttl)
		t.ExpirationDate = &exp
	}
	return t
}

// Expired reports whether the token is no longer usable at now.
func (t Token) Expired(now time.Time) bool {
	if t.IsPermanent || t.ExpirationDate == nil {
		return false
	}
	return !now.Before(*t.ExpirationDate)
}
