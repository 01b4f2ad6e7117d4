// Package rules contains the randomization rule configuration. The rules
// are loaded and reported, no decoder applies them.
package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules is the root of a rules configuration file.
type Rules struct {
	Trainers    TrainerRules           `yaml:"trainers"`
	Wild        WildPokemonRules       `yaml:"wild"`
	Evolution   EvolutionRandomization `yaml:"evolution"`
	Palette     PaletteRandomization   `yaml:"palette"`
	DefaultSeed string                 `yaml:"default_seed"`
}

// TrainerRules controls trainer randomization.
type TrainerRules struct {
	RandomizeRecurringCharacters bool             `yaml:"randomize_recurring_characters"`
	RandomizeTrainers            bool             `yaml:"randomize_trainers"`
	SillyClassNames              bool             `yaml:"silly_class_names"`
	RandomizeTrainerNames        bool             `yaml:"randomize_trainer_names"`
	Gyms                         GymRandomization `yaml:"gyms"`
}

// WildPokemonRules controls wild encounter randomization.
type WildPokemonRules struct {
	Randomization        WildRandomization `yaml:"randomization"`
	EnsureAllPhylaAppear bool              `yaml:"ensure_all_phyla_appear"`
}

// PaletteRandomization controls palette changes.
type PaletteRandomization struct {
	Randomize                bool `yaml:"randomize"`
	TypeColors               bool `yaml:"type_colors"`
	RandomizeSecondaryColors bool `yaml:"randomize_secondary_colors"`
}

// Default returns the rules used for all values missing in a configuration file.
func Default() Rules {
	return Rules{
		Wild: WildPokemonRules{
			EnsureAllPhylaAppear: true,
		},
		Palette: PaletteRandomization{
			RandomizeSecondaryColors: true,
		},
	}
}

// Load reads a rules file. Unknown keys are rejected.
func Load(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("reading rules file: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return Rules{}, fmt.Errorf("parsing rules file '%s': %w", path, err)
	}
	return r, nil
}

// Parse decodes YAML rules on top of the defaults.
func Parse(data []byte) (Rules, error) {
	r := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&r); err != nil && !errors.Is(err, io.EOF) {
		return Rules{}, err
	}
	return r, nil
}
