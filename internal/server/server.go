package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/gradekit/gradekit/internal/render"
	"github.com/gradekit/gradekit/internal/source"
)

// Server speaks line-delimited JSON-RPC 2.0 over stdio, exposing the
// grading engine to a local client: load a source image, render interactive
// previews, export at full resolution. Previews get a per-source Session so
// a burst of slider movements resolves to the most recent request's result.
type Server struct {
	store  *source.Store
	engine *render.Engine
	log    *slog.Logger

	in  io.Reader
	out io.Writer

	mu       sync.Mutex
	sessions map[string]*render.Session
}

// Request is an incoming JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an outgoing JSON-RPC response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes. Validation failures (bad tone curve, unknown
// region type) map to invalid-params; render failures to the generic
// server error range.
const (
	codeParseError    = -32700
	codeMethodMissing = -32601
	codeInvalidParams = -32602
	codeRenderFailed  = -32000
)

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server log destination.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIO overrides the transport streams, used by tests. The default is
// stdin/stdout.
func WithIO(in io.Reader, out io.Writer) ServerOption {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// WithEngine injects a preconfigured render engine.
func WithEngine(e *render.Engine) ServerOption {
	return func(s *Server) {
		s.engine = e
	}
}

// New creates a grading server with a fresh source store and render engine.
func New(opts ...ServerOption) *Server {
	s := &Server{
		store:    source.NewStore(),
		engine:   render.New(),
		log:      slog.Default(),
		in:       os.Stdin,
		out:      os.Stdout,
		sessions: make(map[string]*render.Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads requests line by line until EOF. Most methods are handled in
// arrival order, but grade/preview is dispatched to its own goroutine so
// that a client moving a slider can issue a newer preview while an older
// one is still rendering; the older one then comes back flagged stale.
// Clients therefore match preview responses to requests by ID rather than
// by position in the stream.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(s.in)
	// Base64 image payloads make for long lines.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 64*1024*1024)

	encoder := json.NewEncoder(s.out)
	var encMu sync.Mutex
	write := func(resp *Response) error {
		encMu.Lock()
		defer encMu.Unlock()
		return encoder.Encode(resp)
	}

	var previews sync.WaitGroup
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("unparseable request", "err", err)
			if err := write(s.errorResponse(nil, codeParseError, "parse error", err.Error())); err != nil {
				previews.Wait()
				return fmt.Errorf("write response: %w", err)
			}
			continue
		}

		if req.Method == "grade/preview" {
			preview := req
			previews.Add(1)
			go func() {
				defer previews.Done()
				if err := write(s.handleGradePreview(&preview)); err != nil {
					s.log.Error("write preview response", "err", err)
				}
			}()
			continue
		}

		resp := s.handleRequest(&req)
		if resp == nil {
			continue
		}
		if err := write(resp); err != nil {
			previews.Wait()
			return fmt.Errorf("write response: %w", err)
		}
	}
	previews.Wait()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request stream: %w", err)
	}
	return nil
}

func (s *Server) handleRequest(req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "ping":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{}}
	case "source/load":
		return s.handleSourceLoad(req)
	case "source/evict":
		return s.handleSourceEvict(req)
	case "grade/preview":
		return s.handleGradePreview(req)
	case "grade/export":
		return s.handleGradeExport(req)
	default:
		return s.errorResponse(req.ID, codeMethodMissing, fmt.Sprintf("method not found: %s", req.Method), nil)
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"serverInfo": map[string]interface{}{
				"name":    "gradekit",
				"version": "0.1.0",
			},
		},
	}
}

// session returns the preview session for a source, creating it on first
// use. One session per source keeps last-request-wins scoped to the image
// being edited.
func (s *Server) session(src render.Source) *render.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[src.ID]; ok {
		return sess
	}
	sess := render.NewSession(s.engine, src)
	s.sessions[src.ID] = sess
	return sess
}

func (s *Server) dropSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message, Data: data},
	}
}
