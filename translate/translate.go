// Package translate provides the text translation used by the
// /api/translate endpoint.
package translate

import (
	"context"
)

// Translator translates text into a configured target language. Empty input
// yields empty output without a remote call.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Placeholder marks text as translated without changing it. It stands in
// when no translation backend is configured.
type Placeholder struct{}

// Ensure Placeholder implements Translator at compile time.
var _ Translator = Placeholder{}

func (Placeholder) Translate(_ context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	return "[Translated] " + text, nil
}
