// Package filter evaluates CEL expressions against conversations, backing
// the `filter` parameter of the list API.
package filter

import (
	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"

	"github.com/duetcast/duetcast/store"
)

// Engine compiles and runs list-filter expressions. Expressions see two
// variables: `topic` (string) and `created_ts` (int, unix seconds), e.g.
//
//	topic.contains("pizza") && created_ts > 1700000000
type Engine struct {
	env *cel.Env
}

// NewEngine creates a filter engine.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("topic", cel.StringType),
		cel.Variable("created_ts", cel.IntType),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create CEL environment")
	}
	return &Engine{env: env}, nil
}

// Program is a compiled filter ready for repeated evaluation.
type Program struct {
	program cel.Program
}

// Compile parses and type-checks a filter expression.
func (e *Engine) Compile(expression string) (*Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrap(issues.Err(), "failed to compile filter")
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, errors.Errorf("filter must evaluate to a boolean, got %s", ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build filter program")
	}
	return &Program{program: program}, nil
}

// Match evaluates the filter against one conversation.
func (p *Program) Match(conversation *store.Conversation) (bool, error) {
	out, _, err := p.program.Eval(map[string]any{
		"topic":      conversation.Topic,
		"created_ts": conversation.CreatedTs,
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to evaluate filter")
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, errors.New("filter did not evaluate to a boolean")
	}
	return matched, nil
}
