package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/roomly-dev/roomly/internal/models"
)

// RoomSummary is the list representation of a room
type RoomSummary struct {
	PK      string  `json:"pk"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
	City    string  `json:"city"`
	Price   int     `json:"price"`
	Rating  float64 `json:"rating"`
	IsOwner bool    `json:"is_owner"`
}

// RoomDetail is the full representation of a room
type RoomDetail struct {
	models.Room
	Rating  float64 `json:"rating"`
	IsOwner bool    `json:"is_owner"`
}

// UploadRoomRequest represents a host uploading a new listing.
// Amenities and the category are referenced by numeric pk.
type UploadRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Country     string `json:"country" binding:"required"`
	City        string `json:"city" binding:"required"`
	Price       int    `json:"price" binding:"gte=0"`
	Rooms       int    `json:"rooms" binding:"gte=0"`
	Toilets     int    `json:"toilets" binding:"gte=0"`
	Description string `json:"description"`
	Address     string `json:"address" binding:"required"`
	PetFriendly bool   `json:"pet_friendly"`
	Kind        string `json:"kind" binding:"required,oneof=entire_place private_room shared_room"`
	Amenities   []uint `json:"amenities"`
	Category    uint   `json:"category" binding:"required"`
}

func (s *Server) listRooms(c *gin.Context) {
	var rooms []models.Room
	if err := s.db.Order("created_at desc").Find(&rooms).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user, _ := currentUser(c)

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summaries = append(summaries, RoomSummary{
			PK:      room.ID,
			Name:    room.Name,
			Country: room.Country,
			City:    room.City,
			Price:   room.Price,
			Rating:  s.roomRating(room.ID),
			IsOwner: user != nil && room.OwnerID == user.ID,
		})
	}

	c.JSON(http.StatusOK, summaries)
}

func (s *Server) getRoom(c *gin.Context) {
	var room models.Room
	err := s.db.
		Preload("Owner").
		Preload("Category").
		Preload("Amenities").
		Where("id = ?", c.Param("pk")).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user, _ := currentUser(c)

	c.JSON(http.StatusOK, RoomDetail{
		Room:    room,
		Rating:  s.roomRating(room.ID),
		IsOwner: user != nil && room.OwnerID == user.ID,
	})
}

func (s *Server) listRoomReviews(c *gin.Context) {
	var room models.Room
	err := s.db.Select("id").Where("id = ?", c.Param("pk")).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var reviews []models.Review
	err = s.db.Preload("User").Where("room_id = ?", room.ID).Order("created_at desc").Find(&reviews).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list reviews")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// uploadRoom creates a listing owned by the authenticated user
func (s *Server) uploadRoom(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req UploadRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var category models.Category
	if err := s.db.First(&category, req.Category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var amenities []models.Amenity
	if len(req.Amenities) > 0 {
		if err := s.db.Find(&amenities, req.Amenities).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to load amenities")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if len(amenities) != len(req.Amenities) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amenity not found"})
			return
		}
	}

	room := models.Room{
		Name:        req.Name,
		Country:     req.Country,
		City:        req.City,
		Price:       req.Price,
		Rooms:       req.Rooms,
		Toilets:     req.Toilets,
		Description: req.Description,
		Address:     req.Address,
		PetFriendly: req.PetFriendly,
		Kind:        req.Kind,
		OwnerID:     user.ID,
		CategoryID:  &category.ID,
		Amenities:   amenities,
	}
	if err := s.db.Create(&room).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	// Uploading a first listing makes the account a host
	if !user.IsHost {
		if err := s.db.Model(user).Update("is_host", true).Error; err != nil {
			s.logger.Warn().Err(err).Msg("Failed to flag user as host")
		}
	}

	room.Owner = *user
	room.Category = &category
	c.JSON(http.StatusOK, RoomDetail{Room: room, IsOwner: true})
}

func (s *Server) listAmenities(c *gin.Context) {
	var amenities []models.Amenity
	if err := s.db.Order("id").Find(&amenities).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list amenities")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, amenities)
}

func (s *Server) listCategories(c *gin.Context) {
	var categories []models.Category
	if err := s.db.Where("kind = ?", "rooms").Order("id").Find(&categories).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// roomRating averages review ratings for a room, 0 when unreviewed
func (s *Server) roomRating(roomID string) float64 {
	var avg *float64
	err := s.db.Model(&models.Review{}).
		Select("avg(rating)").
		Where("room_id = ?", roomID).
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0
	}
	return *avg
}
