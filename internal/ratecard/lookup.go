package ratecard

// neutral is returned by every multiplier lookup that has no entry.
const neutral = 1.0

// tierEpsilon absorbs float noise when a score sits exactly on a tier
// threshold, so ties resolve to the higher tier.
const tierEpsilon = 1e-9

// RoomUnitCost returns the base cost of renovating one room of type t, or 0
// when the card has no price for it.
func (c *Card) RoomUnitCost(t RoomType) float64 {
	if v, ok := c.RoomUnitCosts[t]; ok && v > 0 {
		return v
	}
	return 0
}

// SizeBracketFor returns the bracket containing area. When no bracket matches
// (NaN or negative area) the designated default bracket is used.
func (c *Card) SizeBracketFor(area float64) (SizeBracket, bool) {
	for _, b := range c.SizeBrackets {
		if b.Contains(area) {
			return b, true
		}
	}
	for _, b := range c.SizeBrackets {
		if b.Name == c.DefaultSizeBracket {
			return b, false
		}
	}
	return SizeBracket{Name: c.DefaultSizeBracket, Multiplier: neutral}, false
}

// SizeMultiplier returns the multiplier of the bracket containing area.
func (c *Card) SizeMultiplier(area float64) float64 {
	b, _ := c.SizeBracketFor(area)
	return positiveOrNeutral(b.Multiplier)
}

func (c *Card) LocationMultiplier(l Location) float64 {
	return positiveOrNeutral(c.LocationMultipliers[l])
}

func (c *Card) PropertyMultiplier(p PropertyType) float64 {
	return positiveOrNeutral(c.PropertyMultipliers[p])
}

func (c *Card) EraMultiplier(e Era) float64 {
	return positiveOrNeutral(c.EraMultipliers[e])
}

// FloorMultiplier returns the floor-level factor. It does not know the
// property type; the engine decides whether to apply it.
func (c *Card) FloorMultiplier(f FloorLevel) float64 {
	return positiveOrNeutral(c.FloorMultipliers[f])
}

// FloorMaterialRate returns the per-sqm rate of material m. Unset or unknown
// materials are priced as the fallback material.
func (c *Card) FloorMaterialRate(m FloorMaterial) float64 {
	if v, ok := c.FloorMaterialRates[m]; ok && v >= 0 {
		return v
	}
	if v, ok := c.FloorMaterialRates[c.Assumptions.FallbackFloorMaterial]; ok && v >= 0 {
		return v
	}
	return 0
}

// ContingencyFor selects the highest tier whose MinScore the score reaches.
// Scores below every tier get the lowest tier.
func (c *Card) ContingencyFor(score float64) ContingencyTier {
	if len(c.ContingencyTiers) == 0 {
		return ContingencyTier{}
	}
	selected := c.ContingencyTiers[0]
	for _, t := range c.ContingencyTiers {
		if score+tierEpsilon >= t.MinScore && t.MinScore >= selected.MinScore {
			selected = t
		}
	}
	if selected.Rate < 0 {
		selected.Rate = 0
	}
	return selected
}

func positiveOrNeutral(v float64) float64 {
	// v > 0 is false for NaN as well.
	if v > 0 {
		return v
	}
	return neutral
}
