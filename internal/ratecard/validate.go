package ratecard

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidCard is wrapped by every validation failure.
var ErrInvalidCard = errors.New("invalid rate card")

const schemaURL = "ratecard.schema.json"

//go:embed schema.json
var schemaJSON string

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add rate card schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile rate card schema: %w", err)
	}
	return schema, nil
})

// Parse decodes a JSON rate card, checking it against the document schema
// first and the semantic rules second.
func Parse(data []byte) (Card, error) {
	schema, err := compiledSchema()
	if err != nil {
		return Card{}, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Card{}, fmt.Errorf("%w: body is not valid JSON: %v", ErrInvalidCard, err)
	}
	if err := schema.Validate(raw); err != nil {
		return Card{}, fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}

	var card Card
	if err := json.Unmarshal(data, &card); err != nil {
		return Card{}, fmt.Errorf("%w: decode: %v", ErrInvalidCard, err)
	}
	if err := card.Validate(); err != nil {
		return Card{}, err
	}
	return card, nil
}

// Marshal encodes c as JSON.
func Marshal(c Card) ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode rate card: %w", err)
	}
	return b, nil
}

// Validate checks the rules the schema cannot express: bracket continuity,
// tier ordering and the presence of referenced entries.
func (c *Card) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.Version) == "" {
		add("version is required")
	}

	for _, rt := range []RoomType{RoomBathroom, RoomKitchen, RoomBedroom, RoomLivingRoom, RoomHallway} {
		v, ok := c.RoomUnitCosts[rt]
		if !ok {
			add("room_unit_costs.%s is required", rt)
			continue
		}
		if !nonNegative(v) {
			add("room_unit_costs.%s must be >= 0", rt)
		}
	}

	validateBrackets(c, add)

	checkMultipliers("location_multipliers", c.LocationMultipliers, add)
	checkMultipliers("property_multipliers", c.PropertyMultipliers, add)
	checkMultipliers("era_multipliers", c.EraMultipliers, add)
	checkMultipliers("floor_multipliers", c.FloorMultipliers, add)

	for name, v := range c.WorkItems.fields() {
		if !nonNegative(v) {
			add("work_items.%s must be >= 0", name)
		}
	}

	for m, v := range c.FloorMaterialRates {
		if !nonNegative(v) {
			add("floor_material_rates.%s must be >= 0", m)
		}
	}
	if _, ok := c.FloorMaterialRates[c.Assumptions.FallbackFloorMaterial]; !ok {
		add("fallback floor material %q has no rate", c.Assumptions.FallbackFloorMaterial)
	}

	if len(c.ContingencyTiers) == 0 {
		add("at least one contingency tier is required")
	}
	for i, t := range c.ContingencyTiers {
		if t.Rate < 0 || t.Rate > 1 {
			add("contingency tier %q rate must be within [0, 1]", t.Name)
		}
		if i > 0 && t.MinScore <= c.ContingencyTiers[i-1].MinScore {
			add("contingency tiers must be ordered by ascending min_score")
		}
	}

	if !(c.VATRate >= 0 && c.VATRate < 1) {
		add("vat_rate must be within [0, 1)")
	}

	a := c.Assumptions
	if !(a.PaperedWallShare >= 0 && a.PaperedWallShare <= 1) {
		add("papered_wall_share must be within [0, 1]")
	}
	if !(a.StructuralWallShare >= 0 && a.StructuralWallShare <= 1) {
		add("structural_wall_share must be within [0, 1]")
	}
	if a.SqmPerSocket <= 0 || a.SqmPerLightingPoint <= 0 || a.SqmPerRadiator <= 0 {
		add("sqm_per_socket, sqm_per_lighting_point and sqm_per_radiator must be > 0")
	}
	if a.ExtraDoors < 0 || a.ExternalDoors < 0 {
		add("door counts must be >= 0")
	}
	if c.Timeline.SqmPerWeek <= 0 {
		add("timeline.sqm_per_week must be > 0")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCard, strings.Join(problems, "; "))
	}
	return nil
}

func validateBrackets(c *Card, add func(string, ...any)) {
	if len(c.SizeBrackets) == 0 {
		add("at least one size bracket is required")
		return
	}

	defaultFound := false
	for i, b := range c.SizeBrackets {
		if b.Name == c.DefaultSizeBracket {
			defaultFound = true
		}
		if !(b.Multiplier > 0) || math.IsInf(b.Multiplier, 0) {
			add("size bracket %q multiplier must be > 0", b.Name)
		}
		last := i == len(c.SizeBrackets)-1
		switch {
		case i == 0 && b.Min != 0:
			add("first size bracket must start at 0")
		case i > 0 && b.Min != c.SizeBrackets[i-1].Max:
			add("size bracket %q must start where %q ends", b.Name, c.SizeBrackets[i-1].Name)
		}
		if last && b.Max != 0 {
			add("last size bracket must be open-ended (max 0)")
		}
		if !last && b.Max <= b.Min {
			add("size bracket %q must have max > min", b.Name)
		}
		if i > 0 && b.Multiplier < c.SizeBrackets[i-1].Multiplier {
			add("size bracket %q multiplier must not be lower than the previous bracket", b.Name)
		}
	}
	if !defaultFound {
		add("default size bracket %q is not defined", c.DefaultSizeBracket)
	}
}

func checkMultipliers[K ~string](name string, m map[K]float64, add func(string, ...any)) {
	for k, v := range m {
		if !(v > 0) || math.IsInf(v, 0) {
			add("%s.%s must be > 0", name, k)
		}
	}
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func (w WorkItemRates) fields() map[string]float64 {
	return map[string]float64{
		"wallpaper_removal_per_sqm": w.WallpaperRemovalPerSqm,
		"wall_removal_per_wall":     w.WallRemovalPerWall,
		"structural_wall_per_wall":  w.StructuralWallPerWall,
		"steel_beam":                w.SteelBeam,
		"rewire_per_sqm":            w.RewirePerSqm,
		"consumer_unit":             w.ConsumerUnit,
		"socket":                    w.Socket,
		"lighting_point":            w.LightingPoint,
		"boiler":                    w.Boiler,
		"radiator":                  w.Radiator,
		"skim_wall_per_sqm":         w.SkimWallPerSqm,
		"skim_ceiling_per_sqm":      w.SkimCeilingPerSqm,
		"internal_door":             w.InternalDoor,
		"door_frame":                w.DoorFrame,
		"external_door":             w.ExternalDoor,
		"underlay_per_sqm":          w.UnderlayPerSqm,
	}
}

// LoadFile reads and parses a rate card document from disk.
func LoadFile(path string) (Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Card{}, fmt.Errorf("read rate card %s: %w", path, err)
	}
	return Parse(data)
}
