package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"pk" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User represents an account. Social accounts carry the provider that
// created them and have no usable password.
type User struct {
	BaseModel
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Avatar       string `json:"avatar"`
	IsHost       bool   `json:"is_host"`
	Provider     string `json:"-"` // "", "github", "kakao"
	PasswordHash string `json:"-"`
}

// Session is a server-side session record backing the sessionid cookie
type Session struct {
	BaseModel
	Token     string    `json:"-" gorm:"uniqueIndex;not null"`
	UserID    string    `json:"-" gorm:"not null"`
	User      User      `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Expired reports whether the session is past its expiry
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Category groups rooms (e.g. "Tiny homes", "Beachfront"). Categories and
// amenities are seeded lookup tables and keep plain numeric pks; the API
// contract references them by number.
type Category struct {
	ID   uint   `json:"pk" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
	Kind string `json:"kind"` // "rooms" or "experiences"
}

// Amenity is a feature a room can offer
type Amenity struct {
	ID          uint   `json:"pk" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
}

// Room is a rental listing
type Room struct {
	BaseModel
	Name        string    `json:"name" gorm:"not null"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	Price       int       `json:"price"`
	Rooms       int       `json:"rooms"`
	Toilets     int       `json:"toilets"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	PetFriendly bool      `json:"pet_friendly"`
	Kind        string    `json:"kind"` // "entire_place", "private_room", "shared_room"
	OwnerID     string    `json:"-" gorm:"not null"`
	Owner       User      `json:"owner"`
	CategoryID  *uint     `json:"-"`
	Category    *Category `json:"category,omitempty"`
	Amenities   []Amenity `json:"amenities,omitempty" gorm:"many2many:room_amenities"`
}

// Review is a guest review of a room
type Review struct {
	BaseModel
	UserID  string `json:"-" gorm:"not null"`
	User    User   `json:"user"`
	RoomID  string `json:"-" gorm:"not null;index"`
	Payload string `json:"payload"`
	Rating  int    `json:"rating"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Session{},
		&Category{},
		&Amenity{},
		&Room{},
		&Review{},
	)
}
