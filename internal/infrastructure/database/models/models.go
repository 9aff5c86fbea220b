package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash *string   `gorm:"type:text"`
	IsAdmin      bool      `gorm:"not null;default:false"`
	AvatarID     *string   `gorm:"type:text"`
	Pseudo       *string   `gorm:"type:text"`
	CDate        time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Group struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name    string    `gorm:"type:varchar(255);not null"`
	Type    string    `gorm:"type:text;not null"`
	AdminID uuid.UUID `gorm:"type:uuid;not null;index"`
	Admin   User      `gorm:"foreignKey:AdminID"`
	CDate   time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// UserGroup is the membership relation. The composite primary key is
// the unique (user, group) pair the idempotent join upserts against.
type UserGroup struct {
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	User    User      `gorm:"constraint:OnDelete:CASCADE;"`
	GroupID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Group   Group     `gorm:"constraint:OnDelete:CASCADE;"`
	CDate   time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Invitation struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GroupID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Group    Group      `gorm:"constraint:OnDelete:CASCADE;"`
	Email    string     `gorm:"type:text;not null"`
	Token    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Accepted bool       `gorm:"not null;default:false"`
	UserID   *uuid.UUID `gorm:"type:uuid"`
	User     *User      `gorm:"foreignKey:UserID"`
	CDate    time.Time  `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Wish struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	User         User       `gorm:"constraint:OnDelete:CASCADE;"`
	GroupID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Group        Group      `gorm:"constraint:OnDelete:CASCADE;"`
	GiftName     string     `gorm:"type:varchar(255);not null"`
	Description  string     `gorm:"type:text"`
	URL          string     `gorm:"type:text"`
	ImageURL     string     `gorm:"type:text"`
	Price        string     `gorm:"type:varchar(100)"`
	ReservedByID *uuid.UUID `gorm:"type:uuid"`
	ReservedBy   *User      `gorm:"foreignKey:ReservedByID"`
	CDate        time.Time  `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
