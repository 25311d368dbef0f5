package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/andresuchdata/restock-forecast/internal/domain"
)

// FeatureCount is the width of the model input vector.
const FeatureCount = 5

var (
	ErrUnknownItem     = errors.New("item not in encoder classes")
	ErrInvalidArtifact = errors.New("invalid model artifact")
)

// Artifact is the on-disk form of a trained model. The encoder classes are
// stored next to the coefficients so the two can never drift apart.
type Artifact struct {
	Version string          `json:"version"`
	Encoder EncoderSpec     `json:"encoder"`
	Model   LinearModelSpec `json:"model"`
}

type EncoderSpec struct {
	Classes []string `json:"classes"`
}

type LinearModelSpec struct {
	Kind         string    `json:"kind"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// LabelEncoder maps item ids to the integer index of their class.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("%w: duplicate encoder class %q", ErrInvalidArtifact, c)
		}
		index[c] = i
	}
	return &LabelEncoder{classes: append([]string(nil), classes...), index: index}, nil
}

func (e *LabelEncoder) Encode(itemID string) (int, error) {
	i, ok := e.index[itemID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	return i, nil
}

// Known reports whether itemID was seen at training time.
func (e *LabelEncoder) Known(itemID string) bool {
	_, ok := e.index[itemID]
	return ok
}

func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// LinearModel is a fitted linear regressor (ridge at training time).
type LinearModel struct {
	intercept    float64
	coefficients [FeatureCount]float64
}

func (m *LinearModel) score(x [FeatureCount]float64) float64 {
	y := m.intercept
	for i, c := range m.coefficients {
		y += c * x[i]
	}
	return y
}

// Model bundles a versioned encoder with its regressor. It is loaded once
// and safe for concurrent use.
type Model struct {
	version string
	encoder *LabelEncoder
	linear  *LinearModel
}

// NewModel validates an artifact and builds a Model from it.
func NewModel(a Artifact) (*Model, error) {
	if len(a.Model.Coefficients) != FeatureCount {
		return nil, fmt.Errorf("%w: expected %d coefficients, got %d",
			ErrInvalidArtifact, FeatureCount, len(a.Model.Coefficients))
	}
	if len(a.Encoder.Classes) == 0 {
		return nil, fmt.Errorf("%w: encoder has no classes", ErrInvalidArtifact)
	}
	for _, c := range a.Model.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: non-finite coefficient", ErrInvalidArtifact)
		}
	}
	if a.Model.Kind != "" && a.Model.Kind != "ridge" && a.Model.Kind != "linear" {
		return nil, fmt.Errorf("%w: unsupported model kind %q", ErrInvalidArtifact, a.Model.Kind)
	}

	enc, err := NewLabelEncoder(a.Encoder.Classes)
	if err != nil {
		return nil, err
	}

	lm := &LinearModel{intercept: a.Model.Intercept}
	copy(lm.coefficients[:], a.Model.Coefficients)

	return &Model{version: a.Version, encoder: enc, linear: lm}, nil
}

func (m *Model) Version() string { return m.version }

func (m *Model) Encoder() *LabelEncoder { return m.encoder }

// Encode delegates to the bundled encoder.
func (m *Model) Encode(itemID string) (int, error) {
	return m.encoder.Encode(itemID)
}

// Predict scores every vector and returns one raw quantity per vector in
// the same order. A vector whose encoded item is outside the encoder range
// fails the batch.
func (m *Model) Predict(ctx context.Context, vectors []domain.NextDayFeatureVector) ([]float64, error) {
	out := make([]float64, len(vectors))
	for i, v := range vectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if v.ItemEncoded < 0 || v.ItemEncoded >= len(m.encoder.classes) {
			return nil, fmt.Errorf("%w: encoded value %d for %s", ErrUnknownItem, v.ItemEncoded, v.ItemID)
		}
		out[i] = m.linear.score(v.Features())
	}
	return out, nil
}

// Parse reads an artifact document.
func Parse(r io.Reader) (*Model, error) {
	var a Artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return NewModel(a)
}

// LoadFile reads an artifact from the local filesystem.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact %s: %w", path, err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load model artifact %s: %w", path, err)
	}
	return m, nil
}

// ObjectGetter is the slice of object storage needed to fetch artifacts.
type ObjectGetter interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// LoadObject fetches an artifact from object storage.
func LoadObject(ctx context.Context, store ObjectGetter, key string) (*Model, error) {
	data, err := store.GetObject(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch model artifact %s: %w", key, err)
	}
	m, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load model artifact %s: %w", key, err)
	}
	return m, nil
}
