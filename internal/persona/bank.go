// Package persona holds the static per-persona fallback comment bank used
// when generative output is missing or degenerate.
package persona

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Default is the persona applied when a request omits one or names a
// persona the bank does not know.
const Default = "Professional"

// SlotCount is the number of suggestions per generation batch. Each persona
// carries exactly one fallback comment per slot.
const SlotCount = 3

//go:embed personas.yml
var rawBank []byte

type bankFile struct {
	Personas []struct {
		Name      string   `yaml:"name"`
		Fallbacks []string `yaml:"fallbacks"`
	} `yaml:"personas"`
}

// Bank resolves persona names to their slot-ordered fallback comments.
type Bank struct {
	fallbacks map[string][]string
	order     []string
}

// Load parses the embedded persona catalog.
func Load() (*Bank, error) {
	return parse(rawBank)
}

// MustLoad is Load for callers where a broken embedded catalog is a
// programming error.
func MustLoad() *Bank {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

func parse(raw []byte) (*Bank, error) {
	var file bankFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse persona bank: %w", err)
	}

	b := &Bank{fallbacks: make(map[string][]string)}
	for _, p := range file.Personas {
		if len(p.Fallbacks) != SlotCount {
			return nil, fmt.Errorf("persona %q has %d fallbacks, want %d", p.Name, len(p.Fallbacks), SlotCount)
		}
		b.fallbacks[p.Name] = p.Fallbacks
		b.order = append(b.order, p.Name)
	}

	if _, ok := b.fallbacks[Default]; !ok {
		return nil, fmt.Errorf("persona bank is missing the default persona %q", Default)
	}

	return b, nil
}

// Resolve maps an arbitrary persona string to a known persona name.
// Unknown or empty personas resolve to the default.
func (b *Bank) Resolve(name string) string {
	if _, ok := b.fallbacks[name]; ok {
		return name
	}
	return Default
}

// Fallbacks returns the slot-ordered fallback comments for a persona,
// resolving unknown names to the default persona's set.
func (b *Bank) Fallbacks(name string) []string {
	return b.fallbacks[b.Resolve(name)]
}

// Names lists known personas in catalog order.
func (b *Bank) Names() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}
