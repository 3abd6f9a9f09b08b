package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopSuggestionProviderAlwaysReturnsEmpty(t *testing.T) {
	var p SuggestionProvider = NoopSuggestionProvider{}

	text, err := p.Suggest(context.Background(), "altText", "a photo of a cat")
	assert.NoError(t, err)
	assert.Empty(t, text)
}
