package pricing

import "github.com/Simplici0/renoquote/internal/ratecard"

// Range brackets what the engine can quote for a set of room counts.
type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// MinScenario is the cheapest project the range estimator considers: a
// terraced house in the outermost zone, modern construction, with only the
// bathrooms and kitchen renovated.
func MinScenario(area float64, bedrooms, bathrooms, kitchens int) Input {
	return Input{
		PropertyType: ratecard.PropertyTerraced,
		Location:     ratecard.LocationZone5,
		Era:          ratecard.EraPost1950,
		FloorLevel:   ratecard.FloorGround,
		AreaSqm:      area,
		Rooms:        Rooms{Bedrooms: bedrooms, Bathrooms: bathrooms, Kitchens: kitchens},
		Work: Work{
			RenovateBathrooms: true,
			RenovateKitchen:   true,
		},
	}
}

// MaxScenario is the most expensive one: a top-floor flat in the innermost
// zone, period construction, every flag on and wood flooring.
func MaxScenario(area float64, bedrooms, bathrooms, kitchens int) Input {
	return Input{
		PropertyType: ratecard.PropertyFlat,
		Location:     ratecard.LocationZone1,
		Era:          ratecard.EraPre1900Period,
		FloorLevel:   ratecard.FloorFifth,
		AreaSqm:      area,
		Rooms:        Rooms{Bedrooms: bedrooms, Bathrooms: bathrooms, Kitchens: kitchens},
		Work: Work{
			RemoveWallpaper:   true,
			RenovateBathrooms: true,
			RenovateKitchen:   true,
			RenovateBedrooms:  true,
			RemoveWalls:       true,
			LoadBearingWalls:  true,
			Rewire:            true,
			ReplaceHeating:    true,
			SkimWalls:         true,
			SkimCeilings:      true,
			ReplaceDoors:      true,
			ReplaceFloors:     true,
			FloorMaterial:     ratecard.FloorWood,
		},
	}
}

// EstimateRange prices the min and max scenarios for the given area and room
// counts.
func (e Engine) EstimateRange(area float64, bedrooms, bathrooms, kitchens int) Range {
	return EstimateRange(area, bedrooms, bathrooms, kitchens, &e.card)
}

func EstimateRange(area float64, bedrooms, bathrooms, kitchens int, card *ratecard.Card) Range {
	lo := Estimate(MinScenario(area, bedrooms, bathrooms, kitchens), card).Total
	hi := Estimate(MaxScenario(area, bedrooms, bathrooms, kitchens), card).Total
	return Range{
		Min:     lo,
		Max:     hi,
		Average: roundMoney((lo + hi) / 2),
	}
}
