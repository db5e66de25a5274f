package main

import (
	"math"
	"strings"
	"testing"

	"github.com/Simplici0/renoquote/internal/pricing"
	"github.com/Simplici0/renoquote/internal/ratecard"
)

func validInput() pricing.Input {
	return pricing.Input{
		PropertyType: ratecard.PropertyFlat,
		Location:     ratecard.LocationZone2,
		Era:          ratecard.EraPre1901,
		FloorLevel:   ratecard.FloorThird,
		AreaSqm:      64.5,
		Rooms:        pricing.Rooms{Bedrooms: 2, Bathrooms: 1, Kitchens: 1},
		Work:         pricing.Work{ReplaceFloors: true, FloorMaterial: ratecard.FloorCarpet},
	}
}

func TestValidateInput_Success(t *testing.T) {
	in := validInput()
	in.FloorLevel = " third "
	if err := validateInput(&in); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if in.FloorLevel != ratecard.FloorThird {
		t.Fatalf("expected trimmed floor level, got %q", in.FloorLevel)
	}

	house := validInput()
	house.PropertyType = ratecard.PropertyDetached
	house.FloorLevel = ""
	if err := validateInput(&house); err != nil {
		t.Fatalf("floor level should be optional for houses: %v", err)
	}
}

func TestValidateInput_Failures(t *testing.T) {
	cases := map[string]struct {
		mutate func(*pricing.Input)
		field  string
	}{
		"property":       {func(in *pricing.Input) { in.PropertyType = "castle" }, "property_type"},
		"location":       {func(in *pricing.Input) { in.Location = "" }, "location"},
		"era":            {func(in *pricing.Input) { in.Era = "1950s" }, "era"},
		"missing floor":  {func(in *pricing.Input) { in.FloorLevel = "" }, "floor_level"},
		"unknown floor":  {func(in *pricing.Input) { in.FloorLevel = "penthouse" }, "floor_level"},
		"negative area":  {func(in *pricing.Input) { in.AreaSqm = -3 }, "area_sqm"},
		"nan area":       {func(in *pricing.Input) { in.AreaSqm = math.NaN() }, "area_sqm"},
		"huge area":      {func(in *pricing.Input) { in.AreaSqm = maxAreaSqm + 1 }, "area_sqm"},
		"bathrooms":      {func(in *pricing.Input) { in.Rooms.Bathrooms = -1 }, "rooms.bathrooms"},
		"kitchens":       {func(in *pricing.Input) { in.Rooms.Kitchens = maxRoomCount + 1 }, "rooms.kitchens"},
		"floor material": {func(in *pricing.Input) { in.Work.FloorMaterial = "marble" }, "work.floor_material"},
	}
	for name, tc := range cases {
		in := validInput()
		tc.mutate(&in)
		err := validateInput(&in)
		if err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
		if err.Field != tc.field {
			t.Fatalf("%s: expected field %q, got %q", name, tc.field, err.Field)
		}
	}
}

func TestValidateQuote_LimitsText(t *testing.T) {
	req := createQuoteRequest{Title: strings.Repeat("a", maxTitleLen+1), Input: validInput()}
	if err := validateQuote(&req); err == nil || err.Field != "title" {
		t.Fatalf("expected title error, got %v", err)
	}

	req = createQuoteRequest{Title: " ok ", Notes: strings.Repeat("n", maxNotesLen+1), Input: validInput()}
	if err := validateQuote(&req); err == nil || err.Field != "notes" {
		t.Fatalf("expected notes error, got %v", err)
	}
}

func TestValidateQuote_CountsCharacters(t *testing.T) {
	req := createQuoteRequest{Title: strings.Repeat("é", maxTitleLen), Input: validInput()}
	if err := validateQuote(&req); err != nil {
		t.Fatalf("%d two-byte characters should fit the title limit: %v", maxTitleLen, err)
	}
}

func TestParseFlag(t *testing.T) {
	for in, want := range map[string]bool{"1": true, "true": true, " TRUE ": true, "0": false, "": false, "yes": false} {
		if got := parseFlag(in); got != want {
			t.Fatalf("parseFlag(%q) = %v, want %v", in, got, want)
		}
	}
}
