// Package policy gates remote tool calls through an OPA rego policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by Evaluate.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.autopilot_policy.decision"),
		rego.Module("autopilot_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks the tool policy. Input is a map with keys tool_name and
// args. Returns the decision (allow or block) and an optional reason.
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, "default", nil
	}

	val := results[0].Expressions[0].Value
	if s, ok := val.(string); ok {
		return s, "", nil
	}
	return DecisionAllow, "unexpected return type", nil
}

// DefaultPolicy is the default policy content: everything is allowed except
// disabling the driver remotely while a playback session could be holding it,
// and input actions on a small deny list.
const DefaultPolicy = `
package autopilot_policy

default decision = "allow"

# Block synthetic input actions that could detach the session.
decision = "block" {
	input.tool_name == "driver/press_input"
	input.args.action_name == "Quit"
}

decision = "block" {
	input.tool_name == "driver/press_input"
	input.args.action_name == "OpenConsole"
}
`
