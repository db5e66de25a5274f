package ratecard

// DefaultVersion is the version string of the built-in card.
const DefaultVersion = "2024.1"

const (
	TierStandard    = "standard"
	TierComplex     = "complex"
	TierVeryComplex = "very_complex"
)

// Default returns the built-in rate card. Every call returns a fresh copy, so
// callers may modify the result to derive a new version.
func Default() Card {
	return Card{
		Version:  DefaultVersion,
		Currency: "GBP",
		RoomUnitCosts: map[RoomType]float64{
			RoomBathroom:   6500,
			RoomKitchen:    12000,
			RoomBedroom:    3000,
			RoomLivingRoom: 4000,
			RoomHallway:    1500,
		},
		// Multipliers only grow with area: the base cost does not depend on
		// area, so a falling multiplier would make larger projects cheaper.
		SizeBrackets: []SizeBracket{
			{Name: "compact", Min: 0, Max: 50, Multiplier: 1.00},
			{Name: "small", Min: 50, Max: 80, Multiplier: 1.05},
			{Name: "medium", Min: 80, Max: 120, Multiplier: 1.10},
			{Name: "large", Min: 120, Max: 200, Multiplier: 1.20},
			{Name: "very_large", Min: 200, Max: 0, Multiplier: 1.30},
		},
		DefaultSizeBracket: "medium",
		LocationMultipliers: map[Location]float64{
			LocationZone1: 1.35,
			LocationZone2: 1.25,
			LocationZone3: 1.15,
			LocationZone4: 1.05,
			LocationZone5: 1.00,
		},
		PropertyMultipliers: map[PropertyType]float64{
			PropertyTerraced:     1.00,
			PropertySemiDetached: 1.05,
			PropertyDetached:     1.10,
			PropertyMaisonette:   1.08,
			PropertyFlat:         1.12,
		},
		EraMultipliers: map[Era]float64{
			EraPre1901:       1.15,
			Era1901To1910:    1.10,
			EraPost1950:      1.00,
			EraNewBuild:      1.00,
			EraPre1900Period: 1.20,
		},
		FloorMultipliers: map[FloorLevel]float64{
			FloorGround: 1.00,
			FloorFirst:  1.02,
			FloorSecond: 1.04,
			FloorThird:  1.06,
			FloorFourth: 1.08,
			FloorFifth:  1.10,
		},
		WorkItems: WorkItemRates{
			WallpaperRemovalPerSqm: 8,
			WallRemovalPerWall:     1200,
			StructuralWallPerWall:  2500,
			SteelBeam:              1800,
			RewirePerSqm:           45,
			ConsumerUnit:           650,
			Socket:                 85,
			LightingPoint:          95,
			Boiler:                 3200,
			Radiator:               450,
			SkimWallPerSqm:         18,
			SkimCeilingPerSqm:      22,
			InternalDoor:           280,
			DoorFrame:              120,
			ExternalDoor:           1400,
			UnderlayPerSqm:         6,
		},
		FloorMaterialRates: map[FloorMaterial]float64{
			FloorLaminate: 30,
			FloorVinyl:    28,
			FloorCarpet:   25,
			FloorTile:     55,
			FloorWood:     70,
		},
		ContingencyTiers: []ContingencyTier{
			{Name: TierStandard, MinScore: 1.00, Rate: 0.10},
			{Name: TierComplex, MinScore: 1.25, Rate: 0.15},
			{Name: TierVeryComplex, MinScore: 1.50, Rate: 0.20},
		},
		VATRate: 0.20,
		Assumptions: Assumptions{
			PaperedWallShare:      0.7,
			StructuralWallShare:   0.3,
			WallsPerRenovatedRoom: 2,
			ExtraDoors:            3,
			ExternalDoors:         2,
			SqmPerSocket:          10,
			SqmPerLightingPoint:   15,
			SqmPerRadiator:        20,
			FallbackFloorMaterial: FloorWood,
		},
		Complexity: ComplexityPenalties{
			WallRemoval:      0.10,
			LoadBearing:      0.15,
			Rewire:           0.10,
			Heating:          0.10,
			TwoRooms:         0.10,
			ThreeOrMoreRooms: 0.20,
		},
		Timeline: Timeline{
			SqmPerWeek:       30,
			BathroomWeeks:    1.5,
			KitchenWeeks:     2,
			BedroomWeeks:     0.5,
			WallpaperWeeks:   0.5,
			WallRemovalWeeks: 1,
			StructuralWeeks:  1,
			RewireWeeks:      2,
			HeatingWeeks:     1,
			WallSkimWeeks:    1,
			CeilingSkimWeeks: 0.5,
			DoorsWeeks:       0.5,
			FloorsWeeks:      1,
		},
	}
}
