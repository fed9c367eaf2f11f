// Package store provides in-memory storage for programs and executions.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ManitVig/scriptx/pkg/runtime"
	"github.com/ManitVig/scriptx/pkg/types"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrNotActive     = errors.New("not active")
)

// ExecutionState represents the state of a program execution.
type ExecutionState string

const (
	ExecutionActive    ExecutionState = "ACTIVE"
	ExecutionSucceeded ExecutionState = "SUCCEEDED"
	ExecutionFailed    ExecutionState = "FAILED"
)

// Program is a stored scriptx source.
type Program struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	RevisionID  string    `json:"revisionId"`
	CreateTime  time.Time `json:"createTime"`
	UpdateTime  time.Time `json:"updateTime"`
	Source      string    `json:"sourceContents"`
}

// Execution is one run of a stored program.
type Execution struct {
	Name              string                    `json:"name"`
	State             ExecutionState            `json:"state"`
	Arguments         *runtime.Scope            `json:"arguments,omitempty"`
	Results           []runtime.StatementResult `json:"results,omitempty"`
	Bindings          *runtime.Scope            `json:"bindings,omitempty"`
	Error             *ExecutionError           `json:"error,omitempty"`
	StartTime         time.Time                 `json:"startTime"`
	EndTime           time.Time                 `json:"endTime,omitempty"`
	ProgramRevisionID string                    `json:"programRevisionId"`
}

// ExecutionError describes why an execution failed.
type ExecutionError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Store is a thread-safe in-memory storage for programs and executions.
type Store struct {
	mu         sync.RWMutex
	programs   map[string]*Program
	executions map[string]*Execution

	// Counters for generating unique IDs
	execCounter int64
	revCounter  int64
}

// New creates a new empty store.
func New() *Store {
	return &Store{
		programs:   make(map[string]*Program),
		executions: make(map[string]*Execution),
	}
}

// ProgramName returns the resource name of a program ID.
func ProgramName(programID string) string {
	return "programs/" + programID
}

// ExecutionName returns the resource name of an execution of a program.
func ExecutionName(programName, executionID string) string {
	return programName + "/executions/" + executionID
}

// CreateProgram stores a new program.
func (s *Store) CreateProgram(programID, source, description string) (*Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := ProgramName(programID)
	if _, exists := s.programs[name]; exists {
		return nil, fmt.Errorf("program '%s' %w", name, ErrAlreadyExists)
	}

	s.revCounter++
	now := time.Now()
	p := &Program{
		Name:        name,
		Description: description,
		RevisionID:  fmt.Sprintf("%06d-000", s.revCounter),
		CreateTime:  now,
		UpdateTime:  now,
		Source:      source,
	}
	s.programs[name] = p
	return p, nil
}

// GetProgram retrieves a program by its full name.
func (s *Store) GetProgram(name string) (*Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.programs[name]
	if !ok {
		return nil, fmt.Errorf("program '%s' %w", name, ErrNotFound)
	}
	return p, nil
}

// ListPrograms returns all programs sorted by name.
func (s *Store) ListPrograms() []*Program {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Program, 0, len(s.programs))
	for _, p := range s.programs {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// UpdateProgram replaces a program's source and bumps its revision. An
// empty description leaves the current one in place.
func (s *Store) UpdateProgram(name, source, description string) (*Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.programs[name]
	if !ok {
		return nil, fmt.Errorf("program '%s' %w", name, ErrNotFound)
	}

	s.revCounter++
	p.Source = source
	if description != "" {
		p.Description = description
	}
	p.RevisionID = fmt.Sprintf("%06d-000", s.revCounter)
	p.UpdateTime = time.Now()

	return p, nil
}

// DeleteProgram removes a program and all of its executions.
func (s *Store) DeleteProgram(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.programs[name]; !ok {
		return fmt.Errorf("program '%s' %w", name, ErrNotFound)
	}
	delete(s.programs, name)

	prefix := name + "/executions/"
	for execName := range s.executions {
		if strings.HasPrefix(execName, prefix) {
			delete(s.executions, execName)
		}
	}
	return nil
}

// CreateExecution creates an ACTIVE execution record for a program.
func (s *Store) CreateExecution(programName string, args *runtime.Scope) (*Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.programs[programName]
	if !ok {
		return nil, fmt.Errorf("program '%s' %w", programName, ErrNotFound)
	}

	s.execCounter++
	exec := &Execution{
		Name:              ExecutionName(programName, fmt.Sprintf("exec-%d", s.execCounter)),
		State:             ExecutionActive,
		Arguments:         args,
		StartTime:         time.Now(),
		ProgramRevisionID: p.RevisionID,
	}
	s.executions[exec.Name] = exec
	return exec, nil
}

// GetExecution retrieves an execution by name.
func (s *Store) GetExecution(name string) (*Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exec, ok := s.executions[name]
	if !ok {
		return nil, fmt.Errorf("execution '%s' %w", name, ErrNotFound)
	}
	return exec, nil
}

// ListExecutions returns the executions of a program sorted by name.
func (s *Store) ListExecutions(programName string) []*Execution {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Execution
	prefix := programName + "/executions/"
	for name, exec := range s.executions {
		if strings.HasPrefix(name, prefix) {
			result = append(result, exec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// CompleteExecution marks an execution as succeeded with its results.
func (s *Store) CompleteExecution(name string, result *runtime.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exec, err := s.activeExecution(name)
	if err != nil {
		return err
	}

	exec.State = ExecutionSucceeded
	exec.EndTime = time.Now()
	exec.Results = result.Statements
	exec.Bindings = result.Bindings
	return nil
}

// FailExecution marks an execution as failed. Language errors keep their
// kind; anything else is reported as an InternalError.
func (s *Store) FailExecution(name string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exec, e := s.activeExecution(name)
	if e != nil {
		return e
	}

	kind := "InternalError"
	if k, ok := types.KindOf(err); ok {
		kind = k.String()
	}
	exec.State = ExecutionFailed
	exec.EndTime = time.Now()
	exec.Error = &ExecutionError{Kind: kind, Message: err.Error()}
	return nil
}

// activeExecution must be called with s.mu held.
func (s *Store) activeExecution(name string) (*Execution, error) {
	exec, ok := s.executions[name]
	if !ok {
		return nil, fmt.Errorf("execution '%s' %w", name, ErrNotFound)
	}
	if exec.State != ExecutionActive {
		return nil, fmt.Errorf("execution '%s' is %w (state: %s)", name, ErrNotActive, exec.State)
	}
	return exec, nil
}
