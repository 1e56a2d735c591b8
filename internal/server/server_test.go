package server

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spring-rs/spring-lsp/internal/serverconfig"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(&bytes.Buffer{}, &bytes.Buffer{}, serverconfig.Default())
}

func rawID(n int) json.RawMessage {
	data, _ := json.Marshal(n)
	return data
}

func rawParams(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestUninitializedServerRejectsEverythingButInitializeAndExit(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp := s.dispatch(ctx, Request{JSONRPC: "2.0", ID: rawID(1), Method: "textDocument/hover"})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrServerNotInitialized, resp.Error.Code)

	resp = s.dispatch(ctx, Request{JSONRPC: "2.0", ID: rawID(2), Method: "initialize", Params: rawParams(t, map[string]any{})})
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)
}

func TestLifecycleInitializeThenShutdownThenExit(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp := s.dispatch(ctx, Request{JSONRPC: "2.0", ID: rawID(1), Method: "initialize", Params: rawParams(t, map[string]any{})})
	require.Nil(t, resp.Error)
	assert.Equal(t, StateUninitialized, State(s.state.Load()))

	s.dispatch(ctx, Request{JSONRPC: "2.0", Method: "initialized"})
	assert.Equal(t, StateInitialized, State(s.state.Load()))

	resp = s.dispatch(ctx, Request{JSONRPC: "2.0", ID: rawID(2), Method: "shutdown"})
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)
	assert.Equal(t, StateShuttingDown, State(s.state.Load()))

	resp = s.dispatch(ctx, Request{JSONRPC: "2.0", ID: rawID(3), Method: "textDocument/hover"})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrInvalidRequest, resp.Error.Code)

	// shutdown is idempotent
	resp = s.dispatch(ctx, Request{JSONRPC: "2.0", ID: rawID(4), Method: "shutdown"})
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)
}

func initializedServer(t *testing.T) *Server {
	t.Helper()
	s := newTestServer(t)
	ctx := context.Background()
	s.dispatch(ctx, Request{JSONRPC: "2.0", ID: rawID(1), Method: "initialize", Params: rawParams(t, map[string]any{})})
	s.dispatch(ctx, Request{JSONRPC: "2.0", Method: "initialized"})
	return s
}

type didOpenWire struct {
	TextDocument struct {
		URI        string `json:"uri"`
		LanguageID string `json:"languageId"`
		Version    int    `json:"version"`
		Text       string `json:"text"`
	} `json:"textDocument"`
}

func openDoc(t *testing.T, s *Server, uri, lang, text string) {
	t.Helper()
	var p didOpenWire
	p.TextDocument.URI = uri
	p.TextDocument.LanguageID = lang
	p.TextDocument.Version = 1
	p.TextDocument.Text = text
	s.dispatch(context.Background(), Request{JSONRPC: "2.0", Method: "textDocument/didOpen", Params: rawParams(t, p)})
}

// TestScenarioS1UndefinedSection drives the S1 end-to-end scenario
// through the public dispatch surface: opening a TOML document with an
// undefined section publishes exactly one undefined-section diagnostic.
func TestScenarioS1UndefinedSection(t *testing.T) {
	s := initializedServer(t)
	openDoc(t, s, "file:///app.toml", "toml", "[unknown]\nkey = \"x\"\n")

	diags := s.diagStore.Get("file:///app.toml")
	require.Len(t, diags, 1)
	assert.Equal(t, "undefined-section", diags[0].Code)
}

func TestHandleCompletionUnknownDocumentReturnsEmptyItems(t *testing.T) {
	s := initializedServer(t)
	resp := s.dispatch(context.Background(), Request{
		JSONRPC: "2.0", ID: rawID(5), Method: "textDocument/completion",
		Params: rawParams(t, map[string]any{
			"textDocument": map[string]any{"uri": "file:///missing.toml"},
			"position":     map[string]any{"line": 0, "character": 0},
		}),
	})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
}

func TestStatusEndpointReflectsRequestCount(t *testing.T) {
	s := initializedServer(t)
	before := s.status().RequestCount

	s.dispatch(context.Background(), Request{JSONRPC: "2.0", ID: rawID(9), Method: "spring-lsp/status"})

	after := s.status().RequestCount
	assert.Greater(t, after, before)
}

func TestUnknownMethodNotificationIsSilentlyIgnored(t *testing.T) {
	s := initializedServer(t)
	resp := s.dispatch(context.Background(), Request{JSONRPC: "2.0", Method: "workspace/unknownThing"})
	assert.Nil(t, resp)
}

func TestUnknownMethodRequestYieldsMethodNotFound(t *testing.T) {
	s := initializedServer(t)
	resp := s.dispatch(context.Background(), Request{JSONRPC: "2.0", ID: rawID(10), Method: "workspace/unknownThing"})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrMethodNotFound, resp.Error.Code)
}
