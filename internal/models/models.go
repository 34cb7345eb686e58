package models

type User struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username       string `gorm:"uniqueIndex;not null"     json:"username"`
	Email          string `gorm:"not null"                 json:"email"`
	FirstName      string `gorm:"not null"                 json:"first_name"`
	LastName       string `gorm:"not null"                 json:"last_name"`
	HashedPassword string `gorm:"not null"                 json:"-"`
	Role           string `gorm:"not null"                 json:"role"`
	IsActive       bool   `gorm:"not null"                 json:"is_active"`
}
