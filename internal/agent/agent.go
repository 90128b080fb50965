// Package agent implements the capability handlers dispatched by the
// orchestrator: payment, fulfillment, inventory, loyalty, post-purchase and
// recommendation.
//
// Each handler locates its target order, performs a single domain state
// transition and returns a structured result. A missing order is a domain
// outcome ("no_order"), never an error.
package agent

// NoOrderResult is the uniform outcome when no qualifying order exists for
// the user.
type NoOrderResult struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func noOrder(handlerType, message string) NoOrderResult {
	return NoOrderResult{Type: handlerType, Status: "no_order", Message: message}
}
