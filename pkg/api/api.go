// Package api implements the REST API for storing and running scriptx
// programs.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManitVig/scriptx/pkg/ast"
	"github.com/ManitVig/scriptx/pkg/lexer"
	"github.com/ManitVig/scriptx/pkg/parser"
	"github.com/ManitVig/scriptx/pkg/runtime"
	"github.com/ManitVig/scriptx/pkg/store"
	"github.com/ManitVig/scriptx/pkg/types"
)

// Server is the REST API server.
type Server struct {
	app   *fiber.App
	store *store.Store
	opts  []parser.Option

	mu     sync.Mutex
	parsed map[string]*ast.Program // keyed by program name
}

// New creates a new API server. Sources are parsed with opts.
func New(s *store.Store, opts ...parser.Option) *Server {
	srv := &Server{
		store:  s,
		opts:   opts,
		parsed: make(map[string]*ast.Program),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	// Programs API
	app.Post("/v1/programs", srv.createProgram)
	app.Get("/v1/programs", srv.listPrograms)
	app.Get("/v1/programs/:program", srv.getProgram)
	app.Patch("/v1/programs/:program", srv.updateProgram)
	app.Delete("/v1/programs/:program", srv.deleteProgram)

	// Executions API
	app.Post("/v1/programs/:program/executions", srv.createExecution)
	app.Get("/v1/programs/:program/executions", srv.listExecutions)
	app.Get("/v1/programs/:program/executions/:execution", srv.getExecution)

	app.Post("/v1/source\\:tokenize", srv.tokenize)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

// --- Program Handlers ---

type programRequest struct {
	SourceContents string `json:"sourceContents"`
	Description    string `json:"description"`
}

func (s *Server) createProgram(c *fiber.Ctx) error {
	programID := c.Query("programId")
	if programID == "" {
		return errorResponse(c, 400, "programId query parameter is required")
	}

	var req programRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, 400, fmt.Sprintf("invalid request body: %v", err))
	}

	prog, err := parser.ParseSource(req.SourceContents, s.opts...)
	if err != nil {
		return errorResponse(c, 400, fmt.Sprintf("invalid program: %v", err))
	}

	p, err := s.store.CreateProgram(programID, req.SourceContents, req.Description)
	if err != nil {
		return storeError(c, err)
	}

	s.cache(p.Name, prog)
	return c.JSON(programToJSON(p))
}

func (s *Server) getProgram(c *fiber.Ctx) error {
	p, err := s.store.GetProgram(store.ProgramName(c.Params("program")))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(programToJSON(p))
}

func (s *Server) listPrograms(c *fiber.Ctx) error {
	programs := s.store.ListPrograms()

	items := make([]fiber.Map, len(programs))
	for i, p := range programs {
		items[i] = programToJSON(p)
	}

	return c.JSON(fiber.Map{
		"programs": items,
	})
}

func (s *Server) updateProgram(c *fiber.Ctx) error {
	name := store.ProgramName(c.Params("program"))

	var req programRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, 400, fmt.Sprintf("invalid request body: %v", err))
	}

	prog, err := parser.ParseSource(req.SourceContents, s.opts...)
	if err != nil {
		return errorResponse(c, 400, fmt.Sprintf("invalid program: %v", err))
	}

	p, err := s.store.UpdateProgram(name, req.SourceContents, req.Description)
	if err != nil {
		return storeError(c, err)
	}

	s.cache(p.Name, prog)
	return c.JSON(programToJSON(p))
}

func (s *Server) deleteProgram(c *fiber.Ctx) error {
	name := store.ProgramName(c.Params("program"))

	if err := s.store.DeleteProgram(name); err != nil {
		return storeError(c, err)
	}

	s.mu.Lock()
	delete(s.parsed, name)
	s.mu.Unlock()

	return c.JSON(fiber.Map{})
}

// --- Execution Handlers ---

type executionRequest struct {
	Bindings json.RawMessage `json:"bindings"`
}

func (s *Server) createExecution(c *fiber.Ctx) error {
	name := store.ProgramName(c.Params("program"))

	var req executionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorResponse(c, 400, fmt.Sprintf("invalid request body: %v", err))
		}
	}

	args, err := runtime.DecodeBindings(req.Bindings)
	if err != nil {
		return errorResponse(c, 400, fmt.Sprintf("invalid bindings: %v", err))
	}

	prog, err := s.program(name)
	if err != nil {
		return storeError(c, err)
	}

	exec, err := s.store.CreateExecution(name, args)
	if err != nil {
		return storeError(c, err)
	}

	result, runErr := runtime.NewEngine(prog).Run(args)
	if runErr != nil {
		log.Printf("Execution %s failed: %v", exec.Name, runErr)
		err = s.store.FailExecution(exec.Name, runErr)
	} else {
		err = s.store.CompleteExecution(exec.Name, result)
	}
	if err != nil {
		return errorResponse(c, 500, err.Error())
	}

	exec, err = s.store.GetExecution(exec.Name)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(executionToJSON(exec))
}

func (s *Server) getExecution(c *fiber.Ctx) error {
	name := store.ExecutionName(store.ProgramName(c.Params("program")), c.Params("execution"))

	exec, err := s.store.GetExecution(name)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(executionToJSON(exec))
}

func (s *Server) listExecutions(c *fiber.Ctx) error {
	name := store.ProgramName(c.Params("program"))
	if _, err := s.store.GetProgram(name); err != nil {
		return storeError(c, err)
	}

	executions := s.store.ListExecutions(name)
	items := make([]fiber.Map, len(executions))
	for i, exec := range executions {
		items[i] = executionToJSON(exec)
	}

	return c.JSON(fiber.Map{
		"executions": items,
	})
}

// --- Source Handlers ---

type tokenizeRequest struct {
	Source string `json:"source"`
}

func (s *Server) tokenize(c *fiber.Ctx) error {
	var req tokenizeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, 400, fmt.Sprintf("invalid request body: %v", err))
	}

	tokens := lexer.New(req.Source).Tokenize()
	items := make([]fiber.Map, len(tokens))
	for i, tok := range tokens {
		items[i] = fiber.Map{
			"type":  tok.Type.String(),
			"value": tok.Value,
			"pos":   tok.Pos,
		}
	}

	return c.JSON(fiber.Map{
		"tokens": items,
	})
}

// --- Helpers ---

func (s *Server) cache(name string, prog *ast.Program) {
	s.mu.Lock()
	s.parsed[name] = prog
	s.mu.Unlock()
}

// program returns the parsed form of a stored program, parsing it again
// if it is not cached.
func (s *Server) program(name string) (*ast.Program, error) {
	s.mu.Lock()
	prog, ok := s.parsed[name]
	s.mu.Unlock()
	if ok {
		return prog, nil
	}

	p, err := s.store.GetProgram(name)
	if err != nil {
		return nil, err
	}
	prog, err = parser.ParseSource(p.Source, s.opts...)
	if err != nil {
		return nil, err
	}
	s.cache(name, prog)
	return prog, nil
}

func errorResponse(c *fiber.Ctx, code int, message string) error {
	status := "INTERNAL"
	switch code {
	case 400:
		status = "INVALID_ARGUMENT"
	case 404:
		status = "NOT_FOUND"
	case 409:
		status = "ALREADY_EXISTS"
	}
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
			"status":  status,
		},
	})
}

func storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errorResponse(c, 404, err.Error())
	case errors.Is(err, store.ErrAlreadyExists):
		return errorResponse(c, 409, err.Error())
	}
	if _, ok := types.KindOf(err); ok {
		return errorResponse(c, 400, err.Error())
	}
	return errorResponse(c, 500, err.Error())
}

func programToJSON(p *store.Program) fiber.Map {
	return fiber.Map{
		"name":           p.Name,
		"description":    p.Description,
		"revisionId":     p.RevisionID,
		"createTime":     p.CreateTime.Format(time.RFC3339),
		"updateTime":     p.UpdateTime.Format(time.RFC3339),
		"sourceContents": p.Source,
	}
}

func executionToJSON(exec *store.Execution) fiber.Map {
	result := fiber.Map{
		"name":              exec.Name,
		"state":             exec.State,
		"startTime":         exec.StartTime.Format(time.RFC3339),
		"programRevisionId": exec.ProgramRevisionID,
	}

	if exec.Arguments != nil {
		result["arguments"] = exec.Arguments
	}
	if exec.Results != nil {
		items := make([]fiber.Map, len(exec.Results))
		for i, r := range exec.Results {
			items[i] = fiber.Map{
				"name":  r.Name,
				"type":  r.Value.Type().String(),
				"value": r.Value,
			}
		}
		result["results"] = items
	}
	if exec.Bindings != nil {
		result["bindings"] = exec.Bindings
	}
	if exec.Error != nil {
		result["error"] = fiber.Map{
			"kind":    exec.Error.Kind,
			"message": exec.Error.Message,
		}
	}
	if !exec.EndTime.IsZero() {
		result["endTime"] = exec.EndTime.Format(time.RFC3339)
	}

	return result
}
