package websearch

import (
	"context"
	"errors"

	"github.com/prepwise/prepwise/tools/websearch/brave"
	"github.com/prepwise/prepwise/tools/websearch/models"
	"github.com/prepwise/prepwise/tools/websearch/serper"
	"github.com/prepwise/prepwise/tools/websearch/tavily"
)

// Searcher is the capability the report pipeline calls for each query.
// Implementations must be safe for concurrent use.
type Searcher interface {
	Search(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	TavilyProvider Provider = "tavily"
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
)

var ErrUnsupportedProvider = errors.New("unsupported search provider")

func NewSearcher(provider Provider, apiKey string) (Searcher, error) {
	switch provider {
	case TavilyProvider:
		return tavily.Search{ApiKey: apiKey}, nil
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	case BraveProvider:
		return brave.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
