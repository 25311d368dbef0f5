package predictor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Source says where the serving process loads its artifact from.
type Source struct {
	Path      string
	ObjectKey string
	Objects   ObjectGetter
}

// Load resolves the artifact once at startup. Object storage wins when a
// key and a store are both configured.
func Load(ctx context.Context, src Source) (*Model, error) {
	var (
		m   *Model
		err error
	)
	switch {
	case src.ObjectKey != "" && src.Objects != nil:
		m, err = LoadObject(ctx, src.Objects, src.ObjectKey)
	case src.Path != "":
		m, err = LoadFile(src.Path)
	default:
		return nil, fmt.Errorf("no model artifact source configured")
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("version", m.Version()).
		Int("classes", len(m.encoder.classes)).
		Msg("model artifact loaded")
	return m, nil
}
