package models

import (
	"time"
)

const (
	RolePatient = "PATIENT"
	RoleDoctor  = "DOCTOR"
	RoleAdmin   = "ADMIN"
)

const (
	StatusActive  = "ACTIVE"
	StatusBlocked = "BLOCKED"
	StatusDeleted = "DELETED"
)

type User struct {
	ID                 string     `gorm:"primaryKey"           json:"id"`
	Name               string     `gorm:"not null"             json:"name"`
	Email              string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash       string     `gorm:"not null"             json:"-"`
	Role               string     `gorm:"not null"             json:"role"`
	Status             string     `gorm:"not null"             json:"status"`
	NeedPasswordChange bool       `gorm:"default:false"        json:"needPasswordChange"`
	EmailVerified      bool       `gorm:"default:false"        json:"emailVerified"`
	IsDeleted          bool       `gorm:"default:false"        json:"isDeleted"`
	DeletedAt          *time.Time `json:"deletedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Session is one login instance. Token stays stable across refreshes;
// ExpiresIn keeps the lifetime granted at creation so extension never compounds.
type Session struct {
	ID        string    `gorm:"primaryKey"           json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	UserID    string    `gorm:"index;not null"       json:"userId"`
	ExpiresIn int64     `gorm:"not null"             json:"expiresIn"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `gorm:"not null"             json:"expiresAt"`
}

type Patient struct {
	ID        string    `gorm:"primaryKey"           json:"id"`
	UserID    string    `gorm:"uniqueIndex;not null" json:"userId"`
	Name      string    `gorm:"not null"             json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Specialty struct {
	ID        string     `gorm:"primaryKey"           json:"id"`
	Title     string     `gorm:"uniqueIndex;not null" json:"title"`
	Icon      string     `json:"icon"`
	IsDeleted bool       `gorm:"default:false"        json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Doctor struct {
	ID                 string     `gorm:"primaryKey"           json:"id"`
	Name               string     `gorm:"not null"             json:"name"`
	Email              string     `gorm:"uniqueIndex;not null" json:"email"`
	RegistrationNumber string     `gorm:"uniqueIndex;not null" json:"registrationNumber"`
	Experience         int        `gorm:"default:0"            json:"experience"`
	SpecialtyID        *string    `gorm:"index"                json:"specialtyId,omitempty"`
	IsDeleted          bool       `gorm:"default:false"        json:"isDeleted"`
	DeletedAt          *time.Time `json:"deletedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}
