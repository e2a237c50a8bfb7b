package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"go.uber.org/zap"

	"storefront-gateway/internal/apphost"
	identitydomain "storefront-gateway/internal/identity/domain"
	"storefront-gateway/internal/policy/repository"
	rolesdomain "storefront-gateway/internal/roles/domain"
)

const policyQuery = "data.storefront.access.allow"

// Default Rego policy used when an application has no enabled policy
// documents: everyone who made it past the role check is allowed. A stored
// document replaces this module entirely, so it must carry its own default.
const defaultRegoPolicy = `package storefront.access

default allow = true
`

// OPAEvaluator evaluates per-application access policies using OPA Rego.
type OPAEvaluator struct {
	policyRepo repository.Repository
	logger     *zap.Logger
}

// NewOPAEvaluator returns an OPA-based access policy evaluator.
func NewOPAEvaluator(policyRepo repository.Repository, logger *zap.Logger) *OPAEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OPAEvaluator{policyRepo: policyRepo, logger: logger}
}

// HealthCheck verifies that the in-process OPA Rego engine can compile and
// evaluate the default policy. Does not call the policy repo or database.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	allowed, err := evaluate(ctx, []string{defaultRegoPolicy}, buildInput(apphost.AppCustomer, identitydomain.Principal{}, nil))
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("default policy did not allow")
	}
	return nil
}

// Allow evaluates the enabled policy documents for app against the principal
// and its role assignment. When the app has no enabled documents the default
// allow-everything policy applies. Any failure to load, compile or evaluate
// the policy is returned as an error; callers deny on error.
func (e *OPAEvaluator) Allow(ctx context.Context, app apphost.App, principal identitydomain.Principal, assignment rolesdomain.Assignment) (bool, error) {
	policies := []string{defaultRegoPolicy}
	if e.policyRepo != nil {
		docs, err := e.policyRepo.ListEnabledByApp(ctx, string(app))
		if err != nil {
			return false, fmt.Errorf("load policies for app %s: %w", app, err)
		}
		var rules []string
		for _, d := range docs {
			if d.Enabled && d.Rules != "" {
				rules = append(rules, d.Rules)
			}
		}
		if len(rules) > 0 {
			policies = rules
		}
	}

	allowed, err := evaluate(ctx, policies, buildInput(app, principal, assignment))
	if err != nil {
		e.logger.Warn("access policy evaluation failed",
			zap.String("app", string(app)),
			zap.String("principal_id", principal.ID),
			zap.Error(err))
		return false, err
	}
	return allowed, nil
}

func buildInput(app apphost.App, principal identitydomain.Principal, assignment rolesdomain.Assignment) map[string]interface{} {
	roleNames := []interface{}{}
	for _, r := range assignment.Roles() {
		roleNames = append(roleNames, string(r))
	}
	return map[string]interface{}{
		"app": string(app),
		"principal": map[string]interface{}{
			"id":    principal.ID,
			"email": principal.Email,
		},
		"roles": roleNames,
	}
}

func evaluate(ctx context.Context, policies []string, input map[string]interface{}) (bool, error) {
	modules := make(map[string]string, len(policies))
	for i, policy := range policies {
		modules[fmt.Sprintf("policy_%d.rego", i)] = policy
	}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return false, fmt.Errorf("compile policies: %w", err)
	}

	q := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval policies: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("policy query returned no result")
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy allow is not a boolean")
	}
	return allowed, nil
}
