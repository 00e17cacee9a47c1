package blob

import (
	"go.uber.org/fx"

	"github.com/polkiloo/pdfshop/internal/config"
)

// Module provides the filesystem blob store.
var Module = fx.Provide(newStore)

type storeParams struct {
	fx.In

	Config *config.Config
}

func newStore(p storeParams) (Store, error) {
	return NewFileStore(p.Config.BlobDir, p.Config.PublicBaseURL, p.Config.BlobSecret)
}
