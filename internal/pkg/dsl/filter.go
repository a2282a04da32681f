// Package dsl evaluates CEL filter expressions over recommendation results.
//
// The variable `result` exposes id, kind, title, score, matched_skills,
// skills_gap, reasons and sub_scores (dimension to value), e.g.
//
//	result.kind == "job" && result.score >= 0.6
//	"go" in result.matched_skills && size(result.skills_gap) <= 2
//	result.sub_scores.location == 1.0
package dsl

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"skill-match/internal/domain/matching"

	"github.com/google/cel-go/cel"
)

const (
	maxExpressionLength = 512
	costLimit           = 10000
	maxCachedFilters    = 256
)

var ErrInvalidExpression = errors.New("invalid filter expression")

var (
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once

	cacheMu sync.Mutex
	cache   = map[string]*Filter{}
)

func env() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("result", cel.MapType(cel.StringType, cel.DynType)),
		)
	})
	return celEnv, celEnvErr
}

// Filter is a compiled boolean expression. It is safe for concurrent use.
type Filter struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr. Compiled filters are cached by
// expression text.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}
	if len(expr) > maxExpressionLength {
		return nil, fmt.Errorf("%w: longer than %d characters", ErrInvalidExpression, maxExpressionLength)
	}

	cacheMu.Lock()
	f, ok := cache[expr]
	cacheMu.Unlock()
	if ok {
		return f, nil
	}

	e, err := env()
	if err != nil {
		return nil, err
	}
	ast, issues := e.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, issues.Err())
	}
	if t := ast.OutputType(); t != cel.BoolType && t != cel.DynType {
		return nil, fmt.Errorf("%w: expression must return bool, got %s", ErrInvalidExpression, t)
	}
	prg, err := e.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	f = &Filter{expr: expr, prg: prg}
	cacheMu.Lock()
	if len(cache) >= maxCachedFilters {
		cache = map[string]*Filter{}
	}
	cache[expr] = f
	cacheMu.Unlock()
	return f, nil
}

func (f *Filter) String() string {
	return f.expr
}

// Match evaluates the filter against one result. Evaluation errors, such as
// a missing sub-score key, count as no match and are returned for logging.
func (f *Filter) Match(r matching.MatchResult) (bool, error) {
	out, _, err := f.prg.Eval(map[string]any{"result": input(r)})
	if err != nil {
		return false, err
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression returned %T, want bool", out.Value())
	}
	return b, nil
}

// Apply keeps the results the filter matches, in order.
func (f *Filter) Apply(results []matching.MatchResult) ([]matching.MatchResult, []error) {
	out := make([]matching.MatchResult, 0, len(results))
	var errs []error
	for _, r := range results {
		ok, err := f.Match(r)
		if err != nil {
			errs = append(errs, fmt.Errorf("candidate %s: %w", r.CandidateID, err))
			continue
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, errs
}

func input(r matching.MatchResult) map[string]any {
	subs := make(map[string]any, len(r.SubScores))
	for _, s := range r.SubScores {
		subs[string(s.Dimension)] = s.Value
	}
	return map[string]any{
		"id":             r.CandidateID.String(),
		"kind":           string(r.Kind),
		"title":          r.Title,
		"score":          r.Score,
		"matched_skills": strList(r.MatchedSkills),
		"skills_gap":     strList(r.SkillsGap),
		"reasons":        strList(r.Reasons),
		"sub_scores":     subs,
	}
}

func strList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
