package api

import (
	"github.com/globaltide/tidenews/app/news"
)

type GeneratorInterface interface {
	Run(payload news.Payload) (string, error)
}

var _ GeneratorInterface = (*news.Generator)(nil)

type Handler struct {
	aggregator  *news.Aggregator
	generator   GeneratorInterface
	configCache *news.ConfigCache
}
