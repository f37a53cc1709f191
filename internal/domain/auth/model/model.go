package model

import "time"

type User struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	Username       string    `gorm:"size:50;uniqueIndex;not null"`
	Email          string    `gorm:"size:100;uniqueIndex;not null"`
	FullName       string    `gorm:"size:100"`
	HashedPassword string    `gorm:"size:255;not null"`
	IsActive       bool      `gorm:"not null"`
	IsSuperuser    bool      `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// DisplayName используется там, где нужно человекочитаемое имя (инспектор RFI и т.п.).
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	UserID          int64
	RefreshTokenJTI string
}

// Session – результат логина: пара токенов и пользователь без хэша.
type Session struct {
	TokenPair
	User User
}

type UserFilter struct {
	Search      string
	IsActive    *bool
	IsSuperuser *bool
	Skip        int
	Limit       int
}

type UserPage struct {
	Items []User
	Total int64
	Skip  int
	Limit int
}
