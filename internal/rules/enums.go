package rules

import "fmt"

// GymRandomization selects how gym leaders are randomized.
type GymRandomization int

const (
	GymVanilla GymRandomization = iota
	GymRandom
	GymTypeThemed
)

var gymNames = []string{"vanilla", "random", "type-themed"}

// WildRandomization selects how wild encounters are randomized.
type WildRandomization int

const (
	WildVanilla WildRandomization = iota
	WildArea
	WildIndividual
)

var wildNames = []string{"vanilla", "area", "individual"}

// EvolutionRandomization selects how evolution lines are randomized.
type EvolutionRandomization int

const (
	EvolutionVanilla EvolutionRandomization = iota
	EvolutionRandom
	EvolutionMonophyletic
	EvolutionTypePhyletic
)

var evolutionNames = []string{"vanilla", "random", "monophyletic", "type-phyletic"}

func (g GymRandomization) String() string { return enumName(gymNames, int(g)) }
func (w WildRandomization) String() string { return enumName(wildNames, int(w)) }
func (e EvolutionRandomization) String() string { return enumName(evolutionNames, int(e)) }

func (g GymRandomization) MarshalText() ([]byte, error) { return []byte(g.String()), nil }
func (w WildRandomization) MarshalText() ([]byte, error) { return []byte(w.String()), nil }
func (e EvolutionRandomization) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText parses a gym randomization name.
func (g *GymRandomization) UnmarshalText(text []byte) error {
	i, err := enumValue("gym randomization", gymNames, string(text))
	*g = GymRandomization(i)
	return err
}

// UnmarshalText parses a wild randomization name.
func (w *WildRandomization) UnmarshalText(text []byte) error {
	i, err := enumValue("wild randomization", wildNames, string(text))
	*w = WildRandomization(i)
	return err
}

// UnmarshalText parses an evolution randomization name.
func (e *EvolutionRandomization) UnmarshalText(text []byte) error {
	i, err := enumValue("evolution randomization", evolutionNames, string(text))
	*e = EvolutionRandomization(i)
	return err
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func enumValue(kind string, names []string, s string) (int, error) {
	for i, name := range names {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unsupported %s '%s'", kind, s)
}
