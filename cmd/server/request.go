package main

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Simplici0/renoquote/internal/pricing"
	"github.com/Simplici0/renoquote/internal/ratecard"
)

const (
	maxAreaSqm   = 10000
	maxRoomCount = 50
	maxTitleLen  = 200
	maxNotesLen  = 4000
)

// fieldError is a validation failure tied to one request field.
type fieldError struct {
	Field   string
	Message string
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *fieldError {
	return &fieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type rangeRequest struct {
	AreaSqm   float64 `json:"area_sqm"`
	Bedrooms  int     `json:"bedrooms"`
	Bathrooms int     `json:"bathrooms"`
	Kitchens  int     `json:"kitchens"`
}

type createQuoteRequest struct {
	Title string        `json:"title"`
	Notes string        `json:"notes"`
	Input pricing.Input `json:"input"`
}

// validateInput rejects values the engine would silently price with a
// neutral fallback.
func validateInput(in *pricing.Input) *fieldError {
	in.FloorLevel = ratecard.FloorLevel(strings.TrimSpace(string(in.FloorLevel)))

	if !in.PropertyType.Valid() {
		return invalid("property_type", "unknown property type %q", in.PropertyType)
	}
	if !in.Location.Valid() {
		return invalid("location", "unknown location %q", in.Location)
	}
	if !in.Era.Valid() {
		return invalid("era", "unknown era %q", in.Era)
	}
	if in.PropertyType.IsMultiFloorUnit() {
		if in.FloorLevel == "" {
			return invalid("floor_level", "floor level is required for %s", in.PropertyType)
		}
		if !in.FloorLevel.Valid() {
			return invalid("floor_level", "unknown floor level %q", in.FloorLevel)
		}
	} else if in.FloorLevel != "" && !in.FloorLevel.Valid() {
		return invalid("floor_level", "unknown floor level %q", in.FloorLevel)
	}
	if err := validateArea("area_sqm", in.AreaSqm); err != nil {
		return err
	}
	if err := validateCounts("rooms.", in.Rooms.Bedrooms, in.Rooms.Bathrooms, in.Rooms.Kitchens); err != nil {
		return err
	}
	if in.Work.FloorMaterial != "" && !in.Work.FloorMaterial.Valid() {
		return invalid("work.floor_material", "unknown floor material %q", in.Work.FloorMaterial)
	}
	return nil
}

func validateRange(req rangeRequest) *fieldError {
	if err := validateArea("area_sqm", req.AreaSqm); err != nil {
		return err
	}
	return validateCounts("", req.Bedrooms, req.Bathrooms, req.Kitchens)
}

func validateQuote(req *createQuoteRequest) *fieldError {
	req.Title = strings.TrimSpace(req.Title)
	req.Notes = strings.TrimSpace(req.Notes)
	if utf8.RuneCountInString(req.Title) > maxTitleLen {
		return invalid("title", "must be at most %d characters", maxTitleLen)
	}
	if utf8.RuneCountInString(req.Notes) > maxNotesLen {
		return invalid("notes", "must be at most %d characters", maxNotesLen)
	}
	if err := validateInput(&req.Input); err != nil {
		err.Field = "input." + err.Field
		return err
	}
	return nil
}

func validateArea(field string, area float64) *fieldError {
	if math.IsNaN(area) || math.IsInf(area, 0) || area <= 0 {
		return invalid(field, "must be a positive number")
	}
	if area > maxAreaSqm {
		return invalid(field, "must be at most %d", maxAreaSqm)
	}
	return nil
}

func validateCounts(prefix string, bedrooms, bathrooms, kitchens int) *fieldError {
	counts := []struct {
		name  string
		value int
	}{
		{"bedrooms", bedrooms},
		{"bathrooms", bathrooms},
		{"kitchens", kitchens},
	}
	for _, c := range counts {
		if c.value < 0 || c.value > maxRoomCount {
			return invalid(prefix+c.name, "must be between 0 and %d", maxRoomCount)
		}
	}
	return nil
}
