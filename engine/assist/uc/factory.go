package uc

import (
	assistadapter "github.com/substratehq/substrate/engine/assist/adapter"
	"github.com/substratehq/substrate/engine/core"
)

// Defaults are applied when a request leaves generation knobs unset
type Defaults struct {
	MaxTokens   int
	Temperature float64
}

// Factory wires use cases to the completion client
type Factory struct {
	client   assistadapter.Client
	defaults Defaults
}

// NewFactory creates a new use case factory
func NewFactory(client assistadapter.Client, defaults Defaults) *Factory {
	if defaults.MaxTokens <= 0 {
		defaults.MaxTokens = defaultMaxTokens
	}
	return &Factory{client: client, defaults: defaults}
}

func (f *Factory) Complete(userID core.ID, input *CompleteInput) *Complete {
	return NewComplete(f.client, f.defaults, userID, input)
}
