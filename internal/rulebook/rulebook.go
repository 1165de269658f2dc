// Package rulebook loads marker vocabulary extensions from YAML.
//
// A rulebook only appends phrases to the engine's named marker sets. Rule
// order, thresholds, levels, confidences and explanations are fixed in
// code and cannot be changed from a file.
//
//	markers:
//	  chest_pain: ["tức ngực", "chest pain"]
//	  cough: ["cough"]
package rulebook

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/linnemanlabs/acuity/internal/acuity"
)

// Rulebook is the on-disk vocabulary extension.
type Rulebook struct {
	Markers map[string][]string `yaml:"markers"`
}

// Parse decodes a rulebook. Unknown top-level keys are rejected so a typo
// does not silently drop vocabulary. An empty document is an empty rulebook.
func Parse(data []byte) (*Rulebook, error) {
	var rb Rulebook
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rb); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode rulebook: %w", err)
	}
	return &rb, nil
}

// Load reads and parses the rulebook at path.
func Load(path string) (*Rulebook, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator config, not request input
	if err != nil {
		return nil, fmt.Errorf("read rulebook: %w", err)
	}
	rb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rb, nil
}

// Vocabulary returns the default vocabulary extended by rb.
func (rb *Rulebook) Vocabulary() (acuity.Vocabulary, error) {
	v, err := acuity.DefaultVocabulary().Extend(rb.Markers)
	if err != nil {
		return nil, fmt.Errorf("apply rulebook: %w", err)
	}
	return v, nil
}

// PhraseCount is the number of phrases rb adds before deduplication.
func (rb *Rulebook) PhraseCount() int {
	n := 0
	for _, p := range rb.Markers {
		n += len(p)
	}
	return n
}

// Engine builds the triage engine for a rulebook path. An empty path
// yields the default engine.
func Engine(path string) (*acuity.Engine, error) {
	if path == "" {
		return acuity.Default(), nil
	}
	rb, err := Load(path)
	if err != nil {
		return nil, err
	}
	v, err := rb.Vocabulary()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return acuity.New(v)
}
