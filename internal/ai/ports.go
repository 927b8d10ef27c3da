// Package ai talks to the chat-completion provider. It knows nothing about
// Telegram or the ledger; fallback texts and error classification live in
// the services layer.
package ai

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the provider answers without any
// usable text.
var ErrEmptyCompletion = errors.New("ai: empty completion")

// Completer sends one system instruction plus one user prompt and returns
// the generated text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
