// Package engine authorizes API requests with an in-process OPA Rego policy.
package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const allowQuery = "data.techtrends.authz.allow"

// DefaultPolicy lets every known role read everything except the audit log, lets writers and
// admins change job telemetry, and lets admins do anything.
const DefaultPolicy = `package techtrends.authz

default allow := false

known_roles := {"reader", "writer", "admin"}

read_methods := {"GET", "HEAD"}

write_methods := {"POST", "PUT", "DELETE"}

allow if {
	input.role in known_roles
	input.method in read_methods
	not startswith(input.path, "/api/AuditLogs")
}

allow if {
	input.role in {"writer", "admin"}
	input.method in write_methods
	startswith(input.path, "/api/JobTelemetries")
}

allow if input.role == "admin"
`

// Input is the document a request is authorized against.
type Input struct {
	Role   string `json:"role"`
	Method string `json:"method"`
	Path   string `json:"path"`
	UserID string `json:"user_id"`
}

// Authorizer decides whether a request may proceed.
type Authorizer interface {
	Allow(ctx context.Context, in Input) (bool, error)
}

// OPAEvaluator evaluates a prepared Rego query. Safe for concurrent use.
type OPAEvaluator struct {
	query  rego.PreparedEvalQuery
	policy string
}

// NewOPAEvaluator compiles policy (DefaultPolicy when empty) and prepares the allow query.
func NewOPAEvaluator(ctx context.Context, policy string) (*OPAEvaluator, error) {
	if policy == "" {
		policy = DefaultPolicy
	}
	q, err := rego.New(
		rego.Query(allowQuery),
		rego.Module("authz.rego", policy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare authz policy: %w", err)
	}
	return &OPAEvaluator{query: q, policy: policy}, nil
}

// NewOPAEvaluatorFromFile reads a Rego policy from path. An empty path selects DefaultPolicy.
func NewOPAEvaluatorFromFile(ctx context.Context, path string) (*OPAEvaluator, error) {
	if path == "" {
		return NewOPAEvaluator(ctx, "")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read authz policy: %w", err)
	}
	return NewOPAEvaluator(ctx, string(b))
}

// Allow reports whether the policy allows in. An undefined result is a deny.
func (e *OPAEvaluator) Allow(ctx context.Context, in Input) (bool, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(in))
	if err != nil {
		return false, fmt.Errorf("eval authz policy: %w", err)
	}
	return rs.Allowed(), nil
}

// HealthCheck verifies that the policy still compiles and the prepared query evaluates.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	if _, err := ast.CompileModules(map[string]string{"authz.rego": e.policy}); err != nil {
		return fmt.Errorf("compile authz policy: %w", err)
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(Input{Role: "reader", Method: "GET", Path: "/healthz"}))
	if err != nil {
		return fmt.Errorf("eval authz policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}
