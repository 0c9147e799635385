package models

import (
	"errors"
	"fmt"
	"strings"
)

type MediaType string
type MediaCategory string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

const (
	CategoryOverall      MediaCategory = "Overall"
	CategorySleepingArea MediaCategory = "Sleeping Area"
	CategoryFoodArea     MediaCategory = "Food Area"
	CategoryMedicalArea  MediaCategory = "Medical Area"
)

var MediaCategories = []MediaCategory{
	CategoryOverall,
	CategorySleepingArea,
	CategoryFoodArea,
	CategoryMedicalArea,
}

func (c MediaCategory) Valid() bool {
	for _, known := range MediaCategories {
		if c == known {
			return true
		}
	}
	return false
}

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Media documents a center with a photo or video reference.
type Media struct {
	ID       string        `json:"id"`
	Type     MediaType     `json:"type"`
	URL      string        `json:"url"`
	Category MediaCategory `json:"category"`
	Caption  string        `json:"caption,omitempty"`
	Location *GeoPoint     `json:"location,omitempty"`
}

func (m Media) Validate() error {
	if strings.TrimSpace(m.URL) == "" {
		return errors.New("media url is required")
	}
	if m.Type != MediaImage && m.Type != MediaVideo {
		return fmt.Errorf("unknown media type %q", m.Type)
	}
	if !m.Category.Valid() {
		return fmt.Errorf("unknown media category %q", m.Category)
	}
	return nil
}
