package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// configHeader holds the fields read before the rest of a config file
type configHeader struct {
	Preset string `json:"preset"`
}

// LoadConfig reads a JSON scene file. Values start from the preset named by
// the file's "preset" field, or from base when it has none, and every field
// present in the file overrides them. The result is validated.
func LoadConfig(path string, base *Scene) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data, base)
}

// ParseConfig is LoadConfig on an in-memory document
func ParseConfig(data []byte, base *Scene) (*Scene, error) {
	var header configHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var s *Scene
	switch {
	case header.Preset != "":
		preset, err := Create(header.Preset)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		s = preset
	case base != nil:
		copied := *base
		s = &copied
	default:
		s = NewDefaultScene()
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	var overlay struct {
		configHeader
		*Scene
	}
	overlay.Scene = s
	if err := decoder.Decode(&overlay); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveConfig writes the scene as indented JSON
func (s *Scene) SaveConfig(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
