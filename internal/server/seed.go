package server

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/roomly-dev/roomly/internal/models"
)

// seed populates the amenity and category lookup tables on first boot.
// Existing rows are left alone so local data survives restarts.
func seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}

	if count == 0 {
		categories := []models.Category{
			{Name: "Tiny homes", Kind: "rooms"},
			{Name: "Beachfront", Kind: "rooms"},
			{Name: "Countryside", Kind: "rooms"},
			{Name: "Hanoks", Kind: "rooms"},
			{Name: "City tours", Kind: "experiences"},
		}
		if err := db.Create(&categories).Error; err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}
	}

	if err := db.Model(&models.Amenity{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count amenities: %w", err)
	}

	if count == 0 {
		amenities := []models.Amenity{
			{Name: "Wifi", Description: "Wireless internet"},
			{Name: "Kitchen", Description: "Guests can cook"},
			{Name: "Washer", Description: "In-unit washing machine"},
			{Name: "Free parking", Description: "Parking on premises"},
			{Name: "Air conditioning", Description: ""},
			{Name: "Dedicated workspace", Description: "A desk with room for a laptop"},
		}
		if err := db.Create(&amenities).Error; err != nil {
			return fmt.Errorf("failed to seed amenities: %w", err)
		}
	}

	return nil
}
