package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedBank(t *testing.T) {
	bank, err := Load()
	require.NoError(t, err)

	names := bank.Names()
	assert.Contains(t, names, Default)
	assert.Contains(t, names, "SaaS Founder")

	for _, name := range names {
		assert.Len(t, bank.Fallbacks(name), SlotCount, "persona %q", name)
	}
}

func TestBank_Resolve(t *testing.T) {
	bank := MustLoad()

	assert.Equal(t, "SaaS Founder", bank.Resolve("SaaS Founder"))
	assert.Equal(t, Default, bank.Resolve(""))
	assert.Equal(t, Default, bank.Resolve("Astronaut"))
	// Lookup is exact, not case-folded.
	assert.Equal(t, Default, bank.Resolve("saas founder"))
}

func TestBank_FallbacksForUnknownPersona(t *testing.T) {
	bank := MustLoad()
	assert.Equal(t, bank.Fallbacks(Default), bank.Fallbacks("Astronaut"))
}

func TestParse_Validation(t *testing.T) {
	t.Run("wrong fallback count", func(t *testing.T) {
		_, err := parse([]byte(`
personas:
  - name: Professional
    fallbacks:
      - "one"
      - "two"
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fallbacks")
	})

	t.Run("missing default persona", func(t *testing.T) {
		_, err := parse([]byte(`
personas:
  - name: Casual
    fallbacks:
      - "one"
      - "two"
      - "three"
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default persona")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := parse([]byte("personas: [unclosed"))
		assert.Error(t, err)
	})
}
