package repository

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// SeedTarget is any store that can take configuration records.
type SeedTarget interface {
	SaveRestaurant(ctx context.Context, r *model.Restaurant) error
	SaveSpace(ctx context.Context, s *model.Space) error
	SaveOperatingWindow(ctx context.Context, w *model.OperatingWindow) error
}

// Seed is the YAML description of restaurants, their weekly hours and
// their private dining spaces:
//
//  restaurants:
//    - id: 1
//      name: Harbor House
//      hours:
//        - {weekday: friday, open: "18:00", close: "23:00"}
//        - {weekday: monday, closed: true}
//      spaces:
//        - {id: 10, name: Wine Cellar, slot_duration_minutes: 90, max_capacity: 12}
type Seed struct {
	Restaurants []SeedRestaurant `yaml:"restaurants"`
}

type SeedRestaurant struct {
	model.Restaurant `yaml:",inline"`
	Hours            []SeedWindow  `yaml:"hours"`
	Spaces           []model.Space `yaml:"spaces"`
}

type SeedWindow struct {
	Weekday Weekday          `yaml:"weekday"`
	Open    *model.TimeOfDay `yaml:"open"`
	Close   *model.TimeOfDay `yaml:"close"`
	Closed  bool             `yaml:"closed"`
}

// Weekday accepts either a number (0=Sunday) or an English day name.
type Weekday time.Weekday

func (w *Weekday) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: weekday must be a scalar", value.Line)
	}
	if n, err := strconv.Atoi(value.Value); err == nil {
		if n < 0 || n > 6 {
			return fmt.Errorf("line %d: weekday %d out of range 0-6", value.Line, n)
		}
		*w = Weekday(n)
		return nil
	}
	name := strings.ToLower(strings.TrimSpace(value.Value))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			*w = Weekday(d)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown weekday %q", value.Line, value.Value)
}

// LoadSeed reads and validates a seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates seed YAML.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate rejects configurations the engine cannot book against.
func (s *Seed) Validate() error {
	restaurants := map[uint64]bool{}
	spaces := map[uint64]bool{}
	for _, r := range s.Restaurants {
		if r.ID == 0 {
			return fmt.Errorf("%w: restaurant %q has no id", ErrInvalidSeed, r.Name)
		}
		if restaurants[r.ID] {
			return fmt.Errorf("%w: duplicate restaurant id %d", ErrInvalidSeed, r.ID)
		}
		restaurants[r.ID] = true

		days := map[Weekday]bool{}
		for _, h := range r.Hours {
			if days[h.Weekday] {
				return fmt.Errorf("%w: restaurant %d lists %s twice", ErrInvalidSeed, r.ID, time.Weekday(h.Weekday))
			}
			days[h.Weekday] = true
			// A close of 00:00 is representable; the validator refuses
			// every slot that would end there.
			if h.Open != nil && h.Close != nil && *h.Close != 0 && *h.Close <= *h.Open {
				return fmt.Errorf("%w: restaurant %d closes before it opens on %s", ErrInvalidSeed, r.ID, time.Weekday(h.Weekday))
			}
		}
		for _, sp := range r.Spaces {
			switch {
			case sp.ID == 0:
				return fmt.Errorf("%w: space %q has no id", ErrInvalidSeed, sp.Name)
			case spaces[sp.ID]:
				return fmt.Errorf("%w: duplicate space id %d", ErrInvalidSeed, sp.ID)
			case sp.SlotDurationMinutes <= 0 || sp.SlotDurationMinutes >= model.MinutesPerDay:
				return fmt.Errorf("%w: space %d needs a slot duration between 1 and %d minutes", ErrInvalidSeed, sp.ID, model.MinutesPerDay-1)
			case sp.MaxCapacity <= 0:
				return fmt.Errorf("%w: space %d needs a positive max capacity", ErrInvalidSeed, sp.ID)
			case sp.BufferMinutes < 0 || sp.MinCapacity < 0:
				return fmt.Errorf("%w: space %d has negative buffer or min capacity", ErrInvalidSeed, sp.ID)
			}
			spaces[sp.ID] = true
		}
	}
	return nil
}

// Apply writes every record of the seed to target.  It is idempotent for
// stores that upsert.
func (s *Seed) Apply(ctx context.Context, target SeedTarget) error {
	for _, r := range s.Restaurants {
		rest := r.Restaurant
		if err := target.SaveRestaurant(ctx, &rest); err != nil {
			return fmt.Errorf("seed restaurant %d: %w", r.ID, err)
		}
		for _, h := range r.Hours {
			w := model.OperatingWindow{
				RestaurantID: r.ID,
				Weekday:      time.Weekday(h.Weekday),
				OpenTime:     h.Open,
				CloseTime:    h.Close,
				Closed:       h.Closed,
			}
			if err := target.SaveOperatingWindow(ctx, &w); err != nil {
				return fmt.Errorf("seed hours %d/%s: %w", r.ID, w.Weekday, err)
			}
		}
		for _, sp := range r.Spaces {
			sp.RestaurantID = r.ID
			if err := target.SaveSpace(ctx, &sp); err != nil {
				return fmt.Errorf("seed space %d: %w", sp.ID, err)
			}
		}
	}
	return nil
}
