// Package nlg turns structured handler results into conversational replies.
package nlg

import (
	"context"
	"fmt"
)

// Generator produces natural-language text from a prompt. Implementations
// may call out to a model; the orchestrator only needs the string back.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// maxEchoLen bounds how much of the prompt the stub echoes back.
const maxEchoLen = 120

// Stub is the offline generator used when no model backend is configured.
// It echoes a truncated view of the prompt so flows stay inspectable
// end to end without network access.
type Stub struct{}

// NewStub creates the offline generator.
func NewStub() *Stub {
	return &Stub{}
}

func (s *Stub) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	echo := prompt
	if len(echo) > maxEchoLen {
		echo = echo[:maxEchoLen] + "..."
	}
	return fmt.Sprintf("Mock response based on: %s", echo), nil
}
