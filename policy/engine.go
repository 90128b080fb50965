// Package policy evaluates checkout policy before payment attempts.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine guarding payment processing.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a policy engine from rego policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.checkout_policy.decision"),
		rego.Module("checkout_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Input describes a payment about to be attempted.
type Input struct {
	OrderID string  `json:"order_id"`
	UserID  string  `json:"user_id"`
	Method  string  `json:"method"`
	Amount  float64 `json:"amount"`
	Channel string  `json:"channel"`
}

// Evaluate returns "allow" or "block" for the given payment input. An empty
// result set falls back to allow; the shipped policies always define a
// default.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "allow", nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return "allow", nil
}

// DefaultPolicy allows every payment; zero- and negative-amount charges are
// blocked as obviously malformed.
const DefaultPolicy = `
package checkout_policy

default decision = "allow"

decision = "block" {
	input.amount <= 0
}
`
