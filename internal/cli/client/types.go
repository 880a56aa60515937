package client

// User is the current-user record returned by users/me
type User struct {
	PK       string `json:"pk"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	IsHost   bool   `json:"is_host"`
}

// RoomSummary is one entry of the room list
type RoomSummary struct {
	PK      string  `json:"pk"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
	City    string  `json:"city"`
	Price   int     `json:"price"`
	Rating  float64 `json:"rating"`
	IsOwner bool    `json:"is_owner"`
}

// Room is the detail representation of a listing
type Room struct {
	PK          string    `json:"pk"`
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	Price       int       `json:"price"`
	Rooms       int       `json:"rooms"`
	Toilets     int       `json:"toilets"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	PetFriendly bool      `json:"pet_friendly"`
	Kind        string    `json:"kind"`
	Rating      float64   `json:"rating"`
	IsOwner     bool      `json:"is_owner"`
	Owner       *User     `json:"owner,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Amenities   []Amenity `json:"amenities,omitempty"`
}

// Review is a guest review of a room
type Review struct {
	User    User   `json:"user"`
	Payload string `json:"payload"`
	Rating  int    `json:"rating"`
}

// Amenity is a room feature, referenced by numeric pk on upload
type Amenity struct {
	PK          uint   `json:"pk"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Category groups rooms, referenced by numeric pk on upload
type Category struct {
	PK   uint   `json:"pk"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// SignUpPayload is the account creation request. The validate tags are
// the pre-flight guard applied before any network call.
type SignUpPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

// UploadRoomPayload is a new listing. The yaml tags back the room
// definition file accepted by `roomly rooms upload -f`.
type UploadRoomPayload struct {
	Name        string `json:"name" yaml:"name"`
	Country     string `json:"country" yaml:"country"`
	City        string `json:"city" yaml:"city"`
	Price       int    `json:"price" yaml:"price"`
	Rooms       int    `json:"rooms" yaml:"rooms"`
	Toilets     int    `json:"toilets" yaml:"toilets"`
	Description string `json:"description" yaml:"description"`
	Address     string `json:"address" yaml:"address"`
	PetFriendly bool   `json:"pet_friendly" yaml:"pet_friendly"`
	Kind        string `json:"kind" yaml:"kind"`
	Amenities   []uint `json:"amenities" yaml:"amenities"`
	Category    uint   `json:"category" yaml:"category"`
}
