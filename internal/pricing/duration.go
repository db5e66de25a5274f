package pricing

import "github.com/Simplici0/renoquote/internal/ratecard"

// DurationWeeks estimates the programme length: a general allowance per
// square metre, per-room time for each renovated room, and a fixed allowance
// for each selected work item. The result is at least one week.
func DurationWeeks(in Input, card *ratecard.Card) int {
	t := card.Timeline
	w := in.Work

	weeks := 0.0
	if t.SqmPerWeek > 0 && in.AreaSqm > 0 {
		weeks += in.AreaSqm / t.SqmPerWeek
	}
	if w.RenovateBathrooms {
		weeks += count(in.Rooms.Bathrooms) * t.BathroomWeeks
	}
	if w.RenovateKitchen {
		weeks += count(in.Rooms.Kitchens) * t.KitchenWeeks
	}
	if w.RenovateBedrooms {
		weeks += count(in.Rooms.Bedrooms) * t.BedroomWeeks
	}

	for _, step := range []struct {
		on    bool
		weeks float64
	}{
		{w.RemoveWallpaper, t.WallpaperWeeks},
		{w.RemoveWalls, t.WallRemovalWeeks},
		{w.RemoveWalls && w.LoadBearingWalls, t.StructuralWeeks},
		{w.Rewire, t.RewireWeeks},
		{w.ReplaceHeating, t.HeatingWeeks},
		{w.SkimWalls, t.WallSkimWeeks},
		{w.SkimCeilings, t.CeilingSkimWeeks},
		{w.ReplaceDoors, t.DoorsWeeks},
		{w.ReplaceFloors, t.FloorsWeeks},
	} {
		if step.on && step.weeks > 0 {
			weeks += step.weeks
		}
	}

	return max(int(ceilCount(weeks)), 1)
}
