package pricing

import "github.com/Simplici0/renoquote/internal/ratecard"

// Line item codes, in breakdown order.
const (
	ItemWallpaperRemoval = "wallpaper_removal"
	ItemWallRemoval      = "wall_removal"
	ItemRewire           = "rewire"
	ItemHeating          = "heating"
	ItemWallSkim         = "wall_skim"
	ItemCeilingSkim      = "ceiling_skim"
	ItemDoors            = "doors"
	ItemFlooring         = "flooring"
)

type itemFunc func(Input, *ratecard.Card) float64

var itemTable = []struct {
	code  string
	label string
	cost  itemFunc
}{
	{ItemWallpaperRemoval, "Wallpaper removal", WallpaperRemovalCost},
	{ItemWallRemoval, "Wall removal", WallRemovalCost},
	{ItemRewire, "Full rewire", RewireCost},
	{ItemHeating, "Heating replacement", HeatingCost},
	{ItemWallSkim, "Wall skim", WallSkimCost},
	{ItemCeilingSkim, "Ceiling skim", CeilingSkimCost},
	{ItemDoors, "Doors and frames", DoorsCost},
	{ItemFlooring, "Flooring", FlooringCost},
}

// WorkItems returns every line item rounded to whole currency units. Items
// whose flag is unset are present with a zero amount.
func WorkItems(in Input, card *ratecard.Card) []LineItem {
	items := rawWorkItems(in, card)
	for i := range items {
		items[i].Amount = roundMoney(items[i].Amount)
	}
	return items
}

// ItemCost returns the unrounded cost of the line item with the given code.
func ItemCost(code string, in Input, card *ratecard.Card) (float64, bool) {
	for _, it := range itemTable {
		if it.code == code {
			return it.cost(in, card), true
		}
	}
	return 0, false
}

func rawWorkItems(in Input, card *ratecard.Card) []LineItem {
	items := make([]LineItem, 0, len(itemTable))
	for _, it := range itemTable {
		items = append(items, LineItem{Code: it.code, Label: it.label, Amount: it.cost(in, card)})
	}
	return items
}

// WallpaperRemovalCost prices stripping the papered share of the floor area.
func WallpaperRemovalCost(in Input, card *ratecard.Card) float64 {
	if !in.Work.RemoveWallpaper {
		return 0
	}
	return card.Assumptions.PaperedWallShare * in.AreaSqm * card.WorkItems.WallpaperRemovalPerSqm
}

// WallRemovalCost bills a fixed number of walls per renovated room. With
// load-bearing walls, a share of them is billed again at the structural rate
// plus one steel beam each.
func WallRemovalCost(in Input, card *ratecard.Card) float64 {
	w := in.Work
	if !w.RemoveWalls {
		return 0
	}

	walls := card.Assumptions.WallsPerRenovatedRoom * renovatedRooms(in)
	cost := walls * card.WorkItems.WallRemovalPerWall
	if w.LoadBearingWalls {
		structural := ceilCount(card.Assumptions.StructuralWallShare * walls)
		cost += structural * (card.WorkItems.StructuralWallPerWall + card.WorkItems.SteelBeam)
	}
	return cost
}

// RewireCost prices a full rewire: per-sqm labour, a consumer unit, and
// sockets and lighting points sized from the floor area.
func RewireCost(in Input, card *ratecard.Card) float64 {
	if !in.Work.Rewire {
		return 0
	}
	r := card.WorkItems
	a := card.Assumptions
	return in.AreaSqm*r.RewirePerSqm +
		r.ConsumerUnit +
		ceilCount(in.AreaSqm/a.SqmPerSocket)*r.Socket +
		ceilCount(in.AreaSqm/a.SqmPerLightingPoint)*r.LightingPoint
}

func HeatingCost(in Input, card *ratecard.Card) float64 {
	if !in.Work.ReplaceHeating {
		return 0
	}
	return card.WorkItems.Boiler + ceilCount(in.AreaSqm/card.Assumptions.SqmPerRadiator)*card.WorkItems.Radiator
}

func WallSkimCost(in Input, card *ratecard.Card) float64 {
	if !in.Work.SkimWalls {
		return 0
	}
	return card.Assumptions.PaperedWallShare * in.AreaSqm * card.WorkItems.SkimWallPerSqm
}

func CeilingSkimCost(in Input, card *ratecard.Card) float64 {
	if !in.Work.SkimCeilings {
		return 0
	}
	return in.AreaSqm * card.WorkItems.SkimCeilingPerSqm
}

// DoorsCost replaces one door per room plus the card's extra doors. The
// external doors come out of that total; the rest are internal door and
// frame pairs.
func DoorsCost(in Input, card *ratecard.Card) float64 {
	if !in.Work.ReplaceDoors {
		return 0
	}
	total := count(in.Rooms.Bedrooms) + count(in.Rooms.Bathrooms) + count(in.Rooms.Kitchens) +
		float64(max(card.Assumptions.ExtraDoors, 0))
	external := min(float64(max(card.Assumptions.ExternalDoors, 0)), total)
	internal := total - external

	r := card.WorkItems
	return external*r.ExternalDoor + internal*(r.InternalDoor+r.DoorFrame)
}

// FlooringCost prices material and underlay over the whole area. An unset
// material is priced as the card's fallback.
func FlooringCost(in Input, card *ratecard.Card) float64 {
	if !in.Work.ReplaceFloors {
		return 0
	}
	return in.AreaSqm*card.FloorMaterialRate(in.Work.FloorMaterial) + in.AreaSqm*card.WorkItems.UnderlayPerSqm
}

// renovatedRooms counts the rooms whose type has its renovation flag set.
func renovatedRooms(in Input) float64 {
	n := 0.0
	if in.Work.RenovateBathrooms {
		n += count(in.Rooms.Bathrooms)
	}
	if in.Work.RenovateKitchen {
		n += count(in.Rooms.Kitchens)
	}
	if in.Work.RenovateBedrooms {
		n += count(in.Rooms.Bedrooms)
	}
	return n
}
