// Package server implements the Server Core (C9): a JSON-RPC/stdio LSP
// transport grounded on the teacher's ServeStdio/handleRequest loop
// (internal/mangle/lsp.go), enriched with the richer capability block
// and custom endpoint breadth shown in
// SeleniaProject-Orizon/internal/tools/lsp/server.go, wiring together
// every other component (C1-C8, C10-C12).
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/spring-rs/spring-lsp/internal/completion"
	"github.com/spring-rs/spring-lsp/internal/diagnostics"
	"github.com/spring-rs/spring-lsp/internal/document"
	"github.com/spring-rs/spring-lsp/internal/index"
	"github.com/spring-rs/spring-lsp/internal/logging"
	"github.com/spring-rs/spring-lsp/internal/model"
	"github.com/spring-rs/spring-lsp/internal/position"
	"github.com/spring-rs/spring-lsp/internal/rustmacro"
	"github.com/spring-rs/spring-lsp/internal/schema"
	"github.com/spring-rs/spring-lsp/internal/serverconfig"
	"github.com/spring-rs/spring-lsp/internal/tomldoc"
	"github.com/spring-rs/spring-lsp/internal/watcher"
)

// State is the server's lifecycle state machine, per §4.9.
type State int32

const (
	StateUninitialized State = iota
	StateInitialized
	StateShuttingDown
)

// Server owns every wired component and the stdio transport loop.
type Server struct {
	reader *bufio.Reader
	writer io.Writer
	writeMu sync.Mutex

	state atomic.Int32

	id            string
	cfg           *serverconfig.Config
	workspaceRoot string

	docs        *document.Store
	schemaProv  *schema.Provider
	indexMgr    *index.Manager
	diagStore   *diagnostics.Store

	openMu sync.Mutex
	open   map[string]struct{}

	watchMu sync.Mutex
	watch   *watcher.Watcher

	startedAt        time.Time
	requestCount     atomic.Uint64
	errorCount       atomic.Uint64
	completionCount  atomic.Uint64
	hoverCount       atomic.Uint64
}

// New builds a Server wired to the given transport and configuration.
func New(in io.Reader, out io.Writer, cfg *serverconfig.Config) *Server {
	return &Server{
		reader:     bufio.NewReader(in),
		writer:     out,
		id:         uuid.NewString(),
		cfg:        cfg,
		docs:       document.NewStore(),
		schemaProv: schema.NewProvider(cfg.Schema.URL),
		indexMgr:   index.NewManager(),
		diagStore:  diagnostics.NewStore(),
		open:       make(map[string]struct{}),
		startedAt:  time.Now(),
	}
}

// Serve runs the Content-Length framed JSON-RPC loop until EOF, a fatal
// transport error, or ctx is cancelled. Per §4.9 the server otherwise
// only stops on an "exit" notification.
func (s *Server) Serve(ctx context.Context) error {
	defer s.StopWatcher()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		resp := s.dispatch(ctx, req)
		if resp != nil {
			s.writeMessage(resp)
		}
		if s.state.Load() == int32(StateShuttingDown) && req.Method == "exit" {
			return nil
		}
	}
}

const (
	maxHeaderBytes   = 32 << 10
	maxHeaderLines   = 100
	maxContentLength = 8 << 20
)

// readMessage reads one Content-Length framed JSON-RPC message,
// enforcing the header/body safety limits shown in Orizon's Run loop.
func (s *Server) readMessage() (Request, error) {
	contentLength := -1
	headerBytes, headerLines := 0, 0

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return Request{}, err
		}
		headerBytes += len(line)
		headerLines++
		if headerBytes > maxHeaderBytes || headerLines > maxHeaderLines {
			return Request{}, fmt.Errorf("headers exceeded safety limit")
		}
		if line == "\r\n" || line == "\n" {
			break
		}
		if idx := strings.IndexByte(line, ':'); idx >= 0 {
			name := strings.TrimSpace(strings.ToLower(line[:idx]))
			if name == "content-length" {
				val := strings.TrimSpace(line[idx+1:])
				if n, perr := strconv.Atoi(val); perr == nil {
					contentLength = n
				}
			}
		}
	}
	if contentLength < 0 || contentLength > maxContentLength {
		return Request{}, fmt.Errorf("missing or invalid Content-Length")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		return Request{}, err
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

func (s *Server) writeMessage(resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error(logging.CategoryServer, "marshal response", map[string]any{"error": err.Error()})
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n", len(data))
	s.writer.Write(data)
}

// dispatch gates methods by state, tracks request counters, and routes
// recognized methods to their handlers.
func (s *Server) dispatch(ctx context.Context, req Request) *Response {
	s.requestCount.Add(1)

	state := State(s.state.Load())
	if state == StateUninitialized && req.Method != "initialize" && req.Method != "exit" {
		return s.maybeError(req, ErrServerNotInitialized, "server not initialized")
	}
	if state == StateShuttingDown && req.Method != "exit" && req.Method != "shutdown" {
		return s.maybeError(req, ErrInvalidRequest, "server is shutting down")
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "initialized":
		s.handleInitialized(ctx)
		return nil
	case "shutdown":
		s.state.Store(int32(StateShuttingDown))
		return resultResponse(req.ID, nil)
	case "exit":
		return nil
	case "workspace/didChangeConfiguration":
		return nil

	case "textDocument/didOpen":
		s.handleDidOpen(req)
		return nil
	case "textDocument/didChange":
		s.handleDidChange(req)
		return nil
	case "textDocument/didClose":
		s.handleDidClose(req)
		return nil
	case "textDocument/didSave":
		s.handleDidSave(ctx, req)
		return nil

	case "textDocument/completion":
		return s.handleCompletion(req)
	case "textDocument/hover":
		return s.handleHover(req)
	case "textDocument/definition":
		return s.handleDefinition(req)
	case "textDocument/references":
		return resultResponse(req.ID, nil)
	case "textDocument/rename":
		return resultResponse(req.ID, nil)

	case "spring/components":
		return resultResponse(req.ID, map[string]any{"components": mapComponents(s.indexMgr.AllComponents())})
	case "spring/routes":
		return resultResponse(req.ID, map[string]any{"routes": mapRoutes(s.indexMgr.AllRoutes())})
	case "spring/jobs":
		return resultResponse(req.ID, map[string]any{"jobs": mapJobs(s.indexMgr.AllJobs())})
	case "spring/plugins":
		return resultResponse(req.ID, map[string]any{"plugins": mapPlugins(s.indexMgr.AllPlugins())})
	case "spring/configurations":
		return resultResponse(req.ID, map[string]any{"configurations": mapConfigurables(s.indexMgr.AllConfigurables())})
	case "spring/dependencyGraph":
		return resultResponse(req.ID, graphWireFrom(s.indexMgr.DependencyGraph()))
	case "spring/componentLocation":
		return s.handleComponentLocation(req)
	case "spring-lsp/status":
		return resultResponse(req.ID, s.status())

	default:
		if req.ID == nil {
			return nil
		}
		return errorResponse(req.ID, ErrMethodNotFound, "method not found: "+req.Method)
	}
}

func (s *Server) uptimeSeconds() float64 {
	return time.Since(s.startedAt).Seconds()
}

// maybeError returns an error response for requests (ID present) and
// nil for notifications, since a notification never expects a reply.
func (s *Server) maybeError(req Request, code int, msg string) *Response {
	s.errorCount.Add(1)
	if req.ID == nil {
		return nil
	}
	return errorResponse(req.ID, code, msg)
}

