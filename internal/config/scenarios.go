package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/openfield-comfort/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadMatrix reads a scenario matrix from a YAML file. An empty path returns
// the default matrix. Dimensions left out of the file keep their defaults and
// ground properties left out take the reference ground's values.
func LoadMatrix(path string) (domain.Matrix, error) {
	if path == "" {
		return domain.DefaultMatrix(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Matrix{}, fmt.Errorf("read SCENARIO_FILE: %w", err)
	}
	m, err := ParseMatrix(data)
	if err != nil {
		return domain.Matrix{}, fmt.Errorf("SCENARIO_FILE %s: %w", path, err)
	}
	return m, nil
}

// ParseMatrix decodes a YAML scenario matrix and validates it.
func ParseMatrix(data []byte) (domain.Matrix, error) {
	var m domain.Matrix
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return domain.Matrix{}, fmt.Errorf("decode scenario matrix: %w", err)
	}

	def := domain.DefaultMatrix()
	if m.Grounds == nil {
		m.Grounds = def.Grounds
	}
	if m.Shading == nil {
		m.Shading = def.Shading
	}
	if m.EvaporativeCooling == nil {
		m.EvaporativeCooling = def.EvaporativeCooling
	}
	if m.Wind == nil {
		m.Wind = def.Wind
	}
	for i := range m.Grounds {
		m.Grounds[i] = m.Grounds[i].WithDefaults()
	}

	if err := m.Validate(); err != nil {
		return domain.Matrix{}, err
	}
	return m, nil
}
