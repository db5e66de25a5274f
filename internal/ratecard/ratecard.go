// Package ratecard holds the versioned pricing reference data used by the
// renovation cost engine: unit costs, multiplier tables, contingency tiers and
// the modeling constants the formulas depend on.
//
// A Card is plain data. Lookups never fail; unknown keys resolve to a neutral
// value so the engine always has something to multiply by.
package ratecard

// PropertyType is the kind of dwelling being renovated.
type PropertyType string

const (
	PropertyTerraced     PropertyType = "terraced"
	PropertySemiDetached PropertyType = "semi_detached"
	PropertyDetached     PropertyType = "detached"
	PropertyFlat         PropertyType = "flat"
	PropertyMaisonette   PropertyType = "maisonette"
)

// Valid reports whether p is one of the known property types.
func (p PropertyType) Valid() bool {
	switch p {
	case PropertyTerraced, PropertySemiDetached, PropertyDetached, PropertyFlat, PropertyMaisonette:
		return true
	}
	return false
}

// IsMultiFloorUnit reports whether the floor level of the unit affects price.
func (p PropertyType) IsMultiFloorUnit() bool {
	return p == PropertyFlat || p == PropertyMaisonette
}

// Location is a concentric pricing zone. Zone 1 is the most expensive.
type Location string

const (
	LocationZone1 Location = "zone1"
	LocationZone2 Location = "zone2"
	LocationZone3 Location = "zone3"
	LocationZone4 Location = "zone4"
	LocationZone5 Location = "zone5"
)

func (l Location) Valid() bool {
	switch l {
	case LocationZone1, LocationZone2, LocationZone3, LocationZone4, LocationZone5:
		return true
	}
	return false
}

// Era is the construction period of the property.
type Era string

const (
	EraPre1901       Era = "pre_1901"
	Era1901To1910    Era = "1901_1910"
	EraPost1950      Era = "post_1950"
	EraNewBuild      Era = "new_build"
	EraPre1900Period Era = "pre_1900_period"
)

func (e Era) Valid() bool {
	switch e {
	case EraPre1901, Era1901To1910, EraPost1950, EraNewBuild, EraPre1900Period:
		return true
	}
	return false
}

// FloorLevel is the storey a flat or maisonette starts on.
type FloorLevel string

const (
	FloorGround FloorLevel = "ground"
	FloorFirst  FloorLevel = "first"
	FloorSecond FloorLevel = "second"
	FloorThird  FloorLevel = "third"
	FloorFourth FloorLevel = "fourth"
	FloorFifth  FloorLevel = "fifth"
)

func (f FloorLevel) Valid() bool {
	switch f {
	case FloorGround, FloorFirst, FloorSecond, FloorThird, FloorFourth, FloorFifth:
		return true
	}
	return false
}

// RoomType keys the base unit cost table.
type RoomType string

const (
	RoomBathroom   RoomType = "bathroom"
	RoomKitchen    RoomType = "kitchen"
	RoomBedroom    RoomType = "bedroom"
	RoomLivingRoom RoomType = "living_room"
	RoomHallway    RoomType = "hallway"
)

// FloorMaterial is the finish chosen for floor replacement.
type FloorMaterial string

const (
	FloorLaminate FloorMaterial = "laminate"
	FloorVinyl    FloorMaterial = "vinyl"
	FloorCarpet   FloorMaterial = "carpet"
	FloorTile     FloorMaterial = "tile"
	FloorWood     FloorMaterial = "wood"
)

func (m FloorMaterial) Valid() bool {
	switch m {
	case FloorLaminate, FloorVinyl, FloorCarpet, FloorTile, FloorWood:
		return true
	}
	return false
}

// SizeBracket maps a floor-area range to a multiplier. Min is inclusive, Max
// exclusive; a zero Max leaves the bracket open above.
type SizeBracket struct {
	Name       string  `json:"name"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Multiplier float64 `json:"multiplier"`
}

// Contains reports whether area falls inside the bracket.
func (b SizeBracket) Contains(area float64) bool {
	if area < b.Min {
		return false
	}
	return b.Max == 0 || area < b.Max
}

// WorkItemRates are the unit costs of the optional work items.
type WorkItemRates struct {
	WallpaperRemovalPerSqm float64 `json:"wallpaper_removal_per_sqm"`
	WallRemovalPerWall     float64 `json:"wall_removal_per_wall"`
	StructuralWallPerWall  float64 `json:"structural_wall_per_wall"`
	SteelBeam              float64 `json:"steel_beam"`
	RewirePerSqm           float64 `json:"rewire_per_sqm"`
	ConsumerUnit           float64 `json:"consumer_unit"`
	Socket                 float64 `json:"socket"`
	LightingPoint          float64 `json:"lighting_point"`
	Boiler                 float64 `json:"boiler"`
	Radiator               float64 `json:"radiator"`
	SkimWallPerSqm         float64 `json:"skim_wall_per_sqm"`
	SkimCeilingPerSqm      float64 `json:"skim_ceiling_per_sqm"`
	InternalDoor           float64 `json:"internal_door"`
	DoorFrame              float64 `json:"door_frame"`
	ExternalDoor           float64 `json:"external_door"`
	UnderlayPerSqm         float64 `json:"underlay_per_sqm"`
}

// Assumptions are the fixed modeling constants behind the work-item formulas.
type Assumptions struct {
	// Share of floor area that is papered (or skimmed) wall surface.
	PaperedWallShare float64 `json:"papered_wall_share"`
	// Share of removed walls billed as load-bearing.
	StructuralWallShare   float64       `json:"structural_wall_share"`
	WallsPerRenovatedRoom float64       `json:"walls_per_renovated_room"`
	ExtraDoors            int           `json:"extra_doors"`
	ExternalDoors         int           `json:"external_doors"`
	SqmPerSocket          float64       `json:"sqm_per_socket"`
	SqmPerLightingPoint   float64       `json:"sqm_per_lighting_point"`
	SqmPerRadiator        float64       `json:"sqm_per_radiator"`
	FallbackFloorMaterial FloorMaterial `json:"fallback_floor_material"`
}

// ComplexityPenalties are added to a base score of 1.0.
type ComplexityPenalties struct {
	WallRemoval      float64 `json:"wall_removal"`
	LoadBearing      float64 `json:"load_bearing"`
	Rewire           float64 `json:"rewire"`
	Heating          float64 `json:"heating"`
	TwoRooms         float64 `json:"two_rooms"`
	ThreeOrMoreRooms float64 `json:"three_or_more_rooms"`
}

// ContingencyTier applies Rate to projects whose complexity score is at
// least MinScore.
type ContingencyTier struct {
	Name     string  `json:"name"`
	MinScore float64 `json:"min_score"`
	Rate     float64 `json:"rate"`
}

// Timeline holds the duration model, in weeks.
type Timeline struct {
	SqmPerWeek       float64 `json:"sqm_per_week"`
	BathroomWeeks    float64 `json:"bathroom_weeks"`
	KitchenWeeks     float64 `json:"kitchen_weeks"`
	BedroomWeeks     float64 `json:"bedroom_weeks"`
	WallpaperWeeks   float64 `json:"wallpaper_weeks"`
	WallRemovalWeeks float64 `json:"wall_removal_weeks"`
	StructuralWeeks  float64 `json:"structural_weeks"`
	RewireWeeks      float64 `json:"rewire_weeks"`
	HeatingWeeks     float64 `json:"heating_weeks"`
	WallSkimWeeks    float64 `json:"wall_skim_weeks"`
	CeilingSkimWeeks float64 `json:"ceiling_skim_weeks"`
	DoorsWeeks       float64 `json:"doors_weeks"`
	FloorsWeeks      float64 `json:"floors_weeks"`
}

// Card is one version of the pricing reference data. It must be treated as
// read-only once handed to the engine; use Clone to derive a new version.
type Card struct {
	Version             string                    `json:"version"`
	Currency            string                    `json:"currency"`
	RoomUnitCosts       map[RoomType]float64      `json:"room_unit_costs"`
	SizeBrackets        []SizeBracket             `json:"size_brackets"`
	DefaultSizeBracket  string                    `json:"default_size_bracket"`
	LocationMultipliers map[Location]float64      `json:"location_multipliers"`
	PropertyMultipliers map[PropertyType]float64  `json:"property_multipliers"`
	EraMultipliers      map[Era]float64           `json:"era_multipliers"`
	FloorMultipliers    map[FloorLevel]float64    `json:"floor_multipliers"`
	WorkItems           WorkItemRates             `json:"work_items"`
	FloorMaterialRates  map[FloorMaterial]float64 `json:"floor_material_rates"`
	ContingencyTiers    []ContingencyTier         `json:"contingency_tiers"`
	VATRate             float64                   `json:"vat_rate"`
	Assumptions         Assumptions               `json:"assumptions"`
	Complexity          ComplexityPenalties       `json:"complexity"`
	Timeline            Timeline                  `json:"timeline"`
}

// Clone returns a deep copy of c.
func (c Card) Clone() Card {
	out := c
	out.RoomUnitCosts = cloneMap(c.RoomUnitCosts)
	out.SizeBrackets = append([]SizeBracket(nil), c.SizeBrackets...)
	out.LocationMultipliers = cloneMap(c.LocationMultipliers)
	out.PropertyMultipliers = cloneMap(c.PropertyMultipliers)
	out.EraMultipliers = cloneMap(c.EraMultipliers)
	out.FloorMultipliers = cloneMap(c.FloorMultipliers)
	out.FloorMaterialRates = cloneMap(c.FloorMaterialRates)
	out.ContingencyTiers = append([]ContingencyTier(nil), c.ContingencyTiers...)
	return out
}

func cloneMap[K comparable](m map[K]float64) map[K]float64 {
	if m == nil {
		return nil
	}
	out := make(map[K]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
