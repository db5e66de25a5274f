// Package pricing turns a renovation project description into an itemized
// cost breakdown using the figures of a rate card.
//
// Everything here is a pure function of the Input and the Card. Nothing is
// cached and nothing is mutated, so an Engine can be shared freely.
//
// Two rules are easy to mistake for bugs:
//   - the living room and hallway are always priced, whatever the selection;
//   - the complexity score is applied twice, once as a multiplier on the base
//     cost and once as the selector of the contingency rate.
package pricing

import (
	"math"

	"github.com/Simplici0/renoquote/internal/ratecard"
)

// Rooms are the room counts of the property.
type Rooms struct {
	Bedrooms  int `json:"bedrooms"`
	Bathrooms int `json:"bathrooms"`
	Kitchens  int `json:"kitchens"`
}

// Work selects the optional work items. LoadBearingWalls has no effect unless
// RemoveWalls is set, and FloorMaterial is only read when ReplaceFloors is set.
type Work struct {
	RemoveWallpaper   bool                   `json:"remove_wallpaper"`
	RenovateBathrooms bool                   `json:"renovate_bathrooms"`
	RenovateKitchen   bool                   `json:"renovate_kitchen"`
	RenovateBedrooms  bool                   `json:"renovate_bedrooms"`
	RemoveWalls       bool                   `json:"remove_walls"`
	LoadBearingWalls  bool                   `json:"load_bearing_walls"`
	Rewire            bool                   `json:"rewire"`
	ReplaceHeating    bool                   `json:"replace_heating"`
	SkimWalls         bool                   `json:"skim_walls"`
	SkimCeilings      bool                   `json:"skim_ceilings"`
	ReplaceDoors      bool                   `json:"replace_doors"`
	ReplaceFloors     bool                   `json:"replace_floors"`
	FloorMaterial     ratecard.FloorMaterial `json:"floor_material,omitempty"`
}

// Input describes one project. AreaSqm must be positive; callers validate it.
type Input struct {
	PropertyType ratecard.PropertyType `json:"property_type"`
	Location     ratecard.Location     `json:"location"`
	Era          ratecard.Era          `json:"era"`
	FloorLevel   ratecard.FloorLevel   `json:"floor_level"`
	AreaSqm      float64               `json:"area_sqm"`
	Rooms        Rooms                 `json:"rooms"`
	Work         Work                  `json:"work"`
}

// Multipliers records every factor applied to the base cost.
type Multipliers struct {
	SizeBracket string  `json:"size_bracket"`
	Size        float64 `json:"size"`
	Location    float64 `json:"location"`
	Property    float64 `json:"property"`
	Era         float64 `json:"era"`
	Floor       float64 `json:"floor"`
	Complexity  float64 `json:"complexity"`
	Composite   float64 `json:"composite"`
}

// LineItem is one optional work item. Amount is 0 when the item is not selected.
type LineItem struct {
	Code   string  `json:"code"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Breakdown is the result of one estimate. Money fields are whole currency
// units; multipliers and rates are unrounded.
type Breakdown struct {
	RateCardVersion string      `json:"ratecard_version"`
	Currency        string      `json:"currency"`
	BaseCost        float64     `json:"base_cost"`
	Multipliers     Multipliers `json:"multipliers"`
	MultipliedBase  float64     `json:"multiplied_base"`
	Items           []LineItem  `json:"items"`
	ItemsTotal      float64     `json:"items_total"`
	AdjustedCost    float64     `json:"adjusted_cost"`
	ComplexityScore float64     `json:"complexity_score"`
	ContingencyTier string      `json:"contingency_tier"`
	ContingencyRate float64     `json:"contingency_rate"`
	Contingency     float64     `json:"contingency"`
	VATRate         float64     `json:"vat_rate"`
	VAT             float64     `json:"vat"`
	Total           float64     `json:"total"`
	CostPerSqm      float64     `json:"cost_per_sqm"`
	DurationWeeks   int         `json:"duration_weeks"`
}

// Item returns the line item with the given code.
func (b Breakdown) Item(code string) (LineItem, bool) {
	for _, it := range b.Items {
		if it.Code == code {
			return it, true
		}
	}
	return LineItem{}, false
}

// Engine prices inputs against a single rate card.
type Engine struct {
	card ratecard.Card
}

// NewEngine returns an engine bound to a private copy of card.
func NewEngine(card ratecard.Card) Engine {
	return Engine{card: card.Clone()}
}

// Card returns a copy of the engine's rate card.
func (e Engine) Card() ratecard.Card {
	return e.card.Clone()
}

// Estimate prices in. It never fails: unknown categorical values are priced
// neutrally and unset counts contribute nothing.
func (e Engine) Estimate(in Input) Breakdown {
	return Estimate(in, &e.card)
}

// Estimate prices in against card.
func Estimate(in Input, card *ratecard.Card) Breakdown {
	base := BaseCost(in, card)
	mult := CompositeMultiplier(in, card)
	score := mult.Complexity

	raw := rawWorkItems(in, card)
	itemsTotal := 0.0
	items := make([]LineItem, len(raw))
	for i, it := range raw {
		itemsTotal += it.Amount
		items[i] = LineItem{Code: it.Code, Label: it.Label, Amount: roundMoney(it.Amount)}
	}

	// Contingency and VAT apply to the rounded adjusted cost, so Total is
	// exactly the sum of the displayed lines.
	multiplied := base * mult.Composite
	adjusted := roundMoney(multiplied + itemsTotal)

	tier := card.ContingencyFor(score)
	contingency := roundMoney(adjusted * tier.Rate)
	vatRate := card.VATRate
	if !(vatRate > 0) {
		vatRate = 0
	}
	vat := roundMoney(adjusted * vatRate)
	total := adjusted + contingency + vat

	return Breakdown{
		RateCardVersion: card.Version,
		Currency:        card.Currency,
		BaseCost:        roundMoney(base),
		Multipliers:     mult,
		MultipliedBase:  roundMoney(multiplied),
		Items:           items,
		ItemsTotal:      roundMoney(itemsTotal),
		AdjustedCost:    adjusted,
		ComplexityScore: score,
		ContingencyTier: tier.Name,
		ContingencyRate: tier.Rate,
		Contingency:     contingency,
		VATRate:         vatRate,
		VAT:             vat,
		Total:           total,
		CostPerSqm:      roundMoney(total / in.AreaSqm),
		DurationWeeks:   DurationWeeks(in, card),
	}
}

// BaseCost sums the unit cost of every room type whose renovation flag is set,
// times its count, plus one living room and one hallway.
func BaseCost(in Input, card *ratecard.Card) float64 {
	w := in.Work
	base := card.RoomUnitCost(ratecard.RoomLivingRoom) + card.RoomUnitCost(ratecard.RoomHallway)
	if w.RenovateBathrooms {
		base += card.RoomUnitCost(ratecard.RoomBathroom) * count(in.Rooms.Bathrooms)
	}
	if w.RenovateKitchen {
		base += card.RoomUnitCost(ratecard.RoomKitchen) * count(in.Rooms.Kitchens)
	}
	if w.RenovateBedrooms {
		base += card.RoomUnitCost(ratecard.RoomBedroom) * count(in.Rooms.Bedrooms)
	}
	return base
}

// CompositeMultiplier looks up each factor independently and multiplies them.
// The floor factor is 1.0 unless the property is a flat or maisonette.
func CompositeMultiplier(in Input, card *ratecard.Card) Multipliers {
	bracket, _ := card.SizeBracketFor(in.AreaSqm)
	m := Multipliers{
		SizeBracket: bracket.Name,
		Size:        card.SizeMultiplier(in.AreaSqm),
		Location:    card.LocationMultiplier(in.Location),
		Property:    card.PropertyMultiplier(in.PropertyType),
		Era:         card.EraMultiplier(in.Era),
		Floor:       1.0,
		Complexity:  ComplexityScore(in, card),
	}
	if in.PropertyType.IsMultiFloorUnit() {
		m.Floor = card.FloorMultiplier(in.FloorLevel)
	}
	m.Composite = m.Size * m.Location * m.Property * m.Era * m.Floor * m.Complexity
	return m
}

// ComplexityScore starts at 1.0 and adds the card's penalties for structural,
// services and multi-room work, never below 1.
func ComplexityScore(in Input, card *ratecard.Card) float64 {
	p := card.Complexity
	w := in.Work

	score := 1.0
	if w.RemoveWalls {
		score += p.WallRemoval
		if w.LoadBearingWalls {
			score += p.LoadBearing
		}
	}
	if w.Rewire {
		score += p.Rewire
	}
	if w.ReplaceHeating {
		score += p.Heating
	}

	rooms := 0
	for _, set := range []bool{w.RenovateBathrooms, w.RenovateKitchen, w.RenovateBedrooms} {
		if set {
			rooms++
		}
	}
	switch {
	case rooms >= 3:
		score += p.ThreeOrMoreRooms
	case rooms == 2:
		score += p.TwoRooms
	}

	return max(score, 1)
}

func roundMoney(v float64) float64 {
	return math.Round(v)
}

// count converts a room count, treating negatives as absent.
func count(n int) float64 {
	if n < 0 {
		return 0
	}
	return float64(n)
}

// ceilCount rounds a fixture count up, ignoring float noise just above a
// whole number.
func ceilCount(v float64) float64 {
	c := math.Ceil(v - 1e-9)
	if c < 0 {
		return 0
	}
	return c
}
