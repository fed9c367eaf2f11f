package runtime

import (
	"fmt"

	"github.com/ManitVig/scriptx/pkg/ast"
	"github.com/ManitVig/scriptx/pkg/expr"
	"github.com/ManitVig/scriptx/pkg/types"
)

// StatementResult is the value bound by one executed let statement.
type StatementResult struct {
	Name  ast.Identifier `json:"name" yaml:"name"`
	Value types.Value    `json:"value" yaml:"value"`
}

// Result is the outcome of a successful run.
type Result struct {
	Statements []StatementResult `json:"results" yaml:"results"`
	Bindings   *Scope            `json:"bindings" yaml:"bindings"`
}

// Engine executes a parsed program.
type Engine struct {
	program *ast.Program
}

// NewEngine creates an engine for program.
func NewEngine(program *ast.Program) *Engine {
	return &Engine{program: program}
}

// Run executes the program's statements in order against a copy of
// scope. Each let statement sees the bindings made before it. The first
// failing statement aborts the run; scope itself is never modified.
func (e *Engine) Run(scope *Scope) (*Result, error) {
	if scope == nil {
		scope = NewScope()
	}
	work := scope.Clone()
	result := &Result{}

	for i, stmt := range e.program.Statements {
		switch s := stmt.(type) {
		case *ast.LetStatement:
			v, err := expr.Evaluate(s.Value, work)
			if err != nil {
				return nil, fmt.Errorf("statement %d (let %s): %w", i+1, s.Name, err)
			}
			work.Set(s.Name, v)
			result.Statements = append(result.Statements, StatementResult{Name: s.Name, Value: v})
		case *ast.EndStatement:
			result.Bindings = work
			return result, nil
		default:
			return nil, fmt.Errorf("statement %d: unsupported statement type %T", i+1, stmt)
		}
	}

	result.Bindings = work
	return result, nil
}
