package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	recordingdomain "gui-replay/backend/internal/recording/domain"
)

const policyQueryPrefix = "data.guireplay.privacy."

// Default Rego policy: unscrubbed recordings must be scrubbed before export
// and only scrubbed derivatives may be exported.
const defaultRegoPolicy = `package guireplay.privacy

default scrub_required = false
default export_allowed = false
default retention_days = 90

scrub_required if {
	not input.recording.scrubbed
}

export_allowed if {
	input.recording.scrubbed
}

retention_days = input.platform.retention_days if {
	input.platform.retention_days > 0
}
`

// OPAEvaluator evaluates privacy policy using OPA Rego.
type OPAEvaluator struct {
	policies      []string
	retentionDays int
}

// NewOPAEvaluator returns an OPA-based privacy evaluator. policies may be
// empty to use the default policy; retentionDays feeds the policy input and
// may be 0 for the policy default.
func NewOPAEvaluator(policies []string, retentionDays int) *OPAEvaluator {
	return &OPAEvaluator{policies: policies, retentionDays: retentionDays}
}

// HealthCheck verifies that the in-process OPA Rego engine can compile and
// evaluate the configured policy. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	compiler, err := e.compile()
	if err != nil {
		return err
	}
	input := e.buildInput(&recordingdomain.Recording{})
	q := rego.New(
		rego.Query(policyQueryPrefix+"scrub_required"),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

// Evaluate decides scrub and export handling for the recording. On
// evaluation failure the conservative defaults are returned: scrub required,
// export denied.
func (e *OPAEvaluator) Evaluate(ctx context.Context, recording *recordingdomain.Recording) (Result, error) {
	compiler, err := e.compile()
	if err != nil {
		log.Printf("privacy: policy compile failed: %v, using defaults", err)
		return e.defaultResult(), nil
	}
	input := e.buildInput(recording)

	out := e.defaultResult()
	if v, ok := e.queryBool(ctx, compiler, input, "scrub_required"); ok {
		out.ScrubRequired = v
	}
	if v, ok := e.queryBool(ctx, compiler, input, "export_allowed"); ok {
		out.ExportAllowed = v
	}
	if v, ok := e.queryInt(ctx, compiler, input, "retention_days"); ok && v > 0 {
		out.RetentionDays = v
	}
	return out, nil
}

func (e *OPAEvaluator) compile() (*ast.Compiler, error) {
	policies := e.policies
	if len(policies) == 0 {
		policies = []string{defaultRegoPolicy}
	}
	modules := make(map[string]string)
	for i, policy := range policies {
		modules[fmt.Sprintf("policy_%d.rego", i)] = policy
	}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return nil, fmt.Errorf("compile policies: %w", err)
	}
	return compiler, nil
}

func (e *OPAEvaluator) buildInput(recording *recordingdomain.Recording) map[string]interface{} {
	rec := map[string]interface{}{
		"id":               "",
		"scrubbed":         false,
		"finished":         false,
		"task_description": "",
		"platform_name":    "",
	}
	if recording != nil {
		rec["id"] = recording.ID
		rec["scrubbed"] = recording.IsScrubbed()
		rec["finished"] = recording.FinishedAt != nil
		rec["task_description"] = recording.TaskDescription
		rec["platform_name"] = recording.PlatformName
	}
	return map[string]interface{}{
		"recording": rec,
		"platform": map[string]interface{}{
			"retention_days": e.retentionDays,
		},
	}
}

func (e *OPAEvaluator) queryBool(ctx context.Context, compiler *ast.Compiler, input map[string]interface{}, name string) (bool, bool) {
	q := rego.New(
		rego.Query(policyQueryPrefix+name),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil || len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, false
	}
	v, ok := rs[0].Expressions[0].Value.(bool)
	return v, ok
}

func (e *OPAEvaluator) queryInt(ctx context.Context, compiler *ast.Compiler, input map[string]interface{}, name string) (int, bool) {
	q := rego.New(
		rego.Query(policyQueryPrefix+name),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil || len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return 0, false
	}
	switch v := rs[0].Expressions[0].Value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
	case float64:
		return int(v), true
	case int64:
		return int(v), true
	}
	return 0, false
}

func (e *OPAEvaluator) defaultResult() Result {
	days := e.retentionDays
	if days <= 0 {
		days = 90
	}
	return Result{ScrubRequired: true, ExportAllowed: false, RetentionDays: days}
}
