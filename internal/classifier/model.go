package classifier

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Model is a linear scorer over the one-hot word encoding: one weight row of
// Window*len(Alphabet) entries and one bias per label.
type Model struct {
	Window   int         `toml:"window"`
	Alphabet string      `toml:"alphabet"`
	Labels   []string    `toml:"labels"`
	Weights  [][]float64 `toml:"weights"`
	Bias     []float64   `toml:"bias"`
}

// Validate checks the shape of the model.
func (m *Model) Validate() error {
	if m.Window < 1 {
		return fmt.Errorf("window must be > 0")
	}
	size := len([]rune(m.Alphabet))
	if size == 0 {
		return fmt.Errorf("alphabet is empty")
	}
	if len(m.Labels) == 0 {
		return fmt.Errorf("model has no labels")
	}
	if len(m.Weights) != len(m.Labels) || len(m.Bias) != len(m.Labels) {
		return fmt.Errorf("model has %d labels, %d weight rows and %d biases", len(m.Labels), len(m.Weights), len(m.Bias))
	}
	for i, row := range m.Weights {
		if len(row) != m.Window*size {
			return fmt.Errorf("weight row %d has %d entries, want %d", i, len(row), m.Window*size)
		}
	}
	return nil
}

// LoadModel reads a TOML model artifact. Any failure wraps
// ErrClassifierUnavailable.
func LoadModel(path string) (*Model, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: model path is empty", ErrClassifierUnavailable)
	}
	var m Model
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("%w: failed to decode model %s: %v", ErrClassifierUnavailable, path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid model %s: %v", ErrClassifierUnavailable, path, err)
	}
	return &m, nil
}

// Save writes the model atomically.
func (m *Model) Save(path string) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid model: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create model dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "model-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp model: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if err := toml.NewEncoder(tmpFile).Encode(m); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close model: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}
