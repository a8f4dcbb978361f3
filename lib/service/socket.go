// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/hangar-foundation/hangar/lib/clock"
	"github.com/hangar-foundation/hangar/lib/codec"
	"github.com/hangar-foundation/hangar/lib/operator"
)

// ActionFunc processes a socket request for a specific action. The raw
// parameter is the full CBOR request (including the "action" field).
// The handler decodes action-specific fields from this raw message.
//
// Return a value to include in the success response, or an error for
// a failure response. If the returned value is nil, the response
// contains only {ok: true}. If non-nil, the value is marshaled as
// CBOR and placed in the response's "data" field.
type ActionFunc func(ctx context.Context, raw []byte) (any, error)

// AuthActionFunc processes a request whose operator token has already
// been verified. The token carries the caller's subject, party, and
// scopes; handlers for privileged actions pass token.Party as the
// actor for the store's role checks.
type AuthActionFunc func(ctx context.Context, token *operator.Token, raw []byte) (any, error)

// StreamFunc handles an authenticated action whose response is a raw
// byte stream rather than a single envelope. The handler owns the
// connection after authentication: it writes a length-prefixed
// Response header with WriteStreamHeader, then any number of body
// bytes. The connection closes when the handler returns.
type StreamFunc func(ctx context.Context, token *operator.Token, raw []byte, conn net.Conn)

// Response is the wire-format envelope for all socket protocol
// responses. Handlers return a result value (or nil) and an error;
// the server wraps these into a Response before encoding.
type Response struct {
	OK    bool             `cbor:"ok"`
	Error string           `cbor:"error,omitempty"`
	Data  codec.RawMessage `cbor:"data,omitempty"`
}

// AuthConfig supplies what the server needs to verify operator tokens.
type AuthConfig struct {
	// PublicKey verifies token signatures. This is the public half of
	// the keypair written by hangar-keygen (or generated on first
	// boot).
	PublicKey ed25519.PublicKey

	// Clock supplies the time for token expiry checks. Tests inject a
	// fake.
	Clock clock.Clock
}

// registration is one routed action. Exactly one of plain, auth, or
// stream is set; scope applies to auth and stream registrations.
type registration struct {
	scope  string
	plain  ActionFunc
	auth   AuthActionFunc
	stream StreamFunc
}

// SocketServer serves a CBOR request-response protocol on a Unix
// socket. Each connection handles exactly one request-response cycle:
// the client writes a CBOR value, the server processes it and writes
// a CBOR response, then the connection closes.
//
// Actions are registered with Handle, HandleAuth, or HandleAuthStream
// before calling Serve. Unknown actions receive an error response.
type SocketServer struct {
	socketPath string
	handlers   map[string]registration
	auth       *AuthConfig
	logger     *slog.Logger

	// activeConnections tracks in-flight request handlers for graceful
	// shutdown. Serve waits for all active connections to complete
	// before returning.
	activeConnections sync.WaitGroup
}

// NewSocketServer creates a server that will listen on socketPath.
// auth may be nil for servers that register only unauthenticated
// actions. Register actions before calling Serve.
func NewSocketServer(socketPath string, logger *slog.Logger, auth *AuthConfig) *SocketServer {
	return &SocketServer{
		socketPath: socketPath,
		handlers:   make(map[string]registration),
		auth:       auth,
		logger:     logger,
	}
}

// Handle registers an unauthenticated handler for the given action
// name. Panics if the action is already registered.
func (s *SocketServer) Handle(action string, handler ActionFunc) {
	s.register(action, registration{plain: handler})
}

// HandleAuth registers an authenticated handler. The request's
// operator token must verify against the server's public key and
// carry the given scope; the empty scope accepts any valid token
// (used for read-only actions). Panics if the server has no
// AuthConfig or the action is already registered.
func (s *SocketServer) HandleAuth(action, scope string, handler AuthActionFunc) {
	if s.auth == nil {
		panic(fmt.Sprintf("service.SocketServer: HandleAuth(%q) requires AuthConfig", action))
	}
	s.register(action, registration{scope: scope, auth: handler})
}

// HandleAuthStream registers an authenticated stream handler. Token
// requirements match HandleAuth. Panics if the server has no
// AuthConfig or the action is already registered.
func (s *SocketServer) HandleAuthStream(action, scope string, handler StreamFunc) {
	if s.auth == nil {
		panic(fmt.Sprintf("service.SocketServer: HandleAuthStream(%q) requires AuthConfig", action))
	}
	s.register(action, registration{scope: scope, stream: handler})
}

func (s *SocketServer) register(action string, reg registration) {
	if _, exists := s.handlers[action]; exists {
		panic(fmt.Sprintf("service.SocketServer: duplicate handler for action %q", action))
	}
	s.handlers[action] = reg
}

// Serve starts accepting connections on the Unix socket and dispatches
// requests to registered action handlers. Blocks until ctx is
// cancelled, then stops accepting new connections and waits for active
// handlers to complete.
//
// Any existing socket file at the configured path is removed before
// listening. The socket file is removed on return.
func (s *SocketServer) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	// Unblock Accept when the context is cancelled.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("socket server listening", "path", s.socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

// readTimeout is how long we wait for the client to send its request.
// A well-behaved client sends the request immediately after connecting.
const readTimeout = 30 * time.Second

// writeTimeout is how long we wait for the response to be written.
// Stream handlers clear the deadline themselves once the header is
// out.
const writeTimeout = 10 * time.Second

// maxRequestSize is the maximum size of a single CBOR request.
// 1 MB is generous for any mint-service operation; the largest
// realistic requests are airdrop recipient lists, at ~50 bytes per
// entry.
const maxRequestSize = 1024 * 1024

// handleConnection processes one request-response cycle.
func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))

	// Decode one CBOR value from the connection. CBOR is self-
	// delimiting so no framing protocol is needed. LimitReader
	// prevents a malicious client from exhausting memory.
	var raw codec.RawMessage
	if err := codec.NewDecoder(io.LimitReader(conn, maxRequestSize)).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			// Client connected but sent nothing.
			return
		}
		s.writeError(conn, fmt.Sprintf("invalid request: %v", err))
		return
	}

	// Extract the action field for routing.
	var header struct {
		Action string `cbor:"action"`
	}
	if err := codec.Unmarshal(raw, &header); err != nil {
		s.writeError(conn, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if header.Action == "" {
		s.writeError(conn, "missing required field: action")
		return
	}

	reg, exists := s.handlers[header.Action]
	if !exists {
		s.writeError(conn, fmt.Sprintf("unknown action %q", header.Action))
		return
	}

	var token *operator.Token
	if reg.auth != nil || reg.stream != nil {
		var err error
		token, err = s.authenticate(header.Action, raw, reg.scope)
		if err != nil {
			s.writeError(conn, err.Error())
			return
		}
	}

	if reg.stream != nil {
		// The stream handler owns the connection from here; it writes
		// its own header and body.
		reg.stream(ctx, token, []byte(raw), conn)
		return
	}

	var result any
	var err error
	if reg.auth != nil {
		result, err = reg.auth(ctx, token, []byte(raw))
	} else {
		result, err = reg.plain(ctx, []byte(raw))
	}
	if err != nil {
		s.logger.Debug("action failed",
			"action", header.Action,
			"error", err,
		)
		s.writeError(conn, err.Error())
		return
	}

	s.writeSuccess(conn, result)
}

// authenticate extracts the request's token field and verifies it for
// the given scope (empty scope checks validity only). The returned
// error is what the client sees: signature and decode failures
// collapse to one generic message, while expiry and scope failures
// name their cause so callers know to refresh or re-mint. The
// underlying verification error goes to the log.
func (s *SocketServer) authenticate(action string, raw []byte, scope string) (*operator.Token, error) {
	var fields struct {
		Token []byte `cbor:"token"`
	}
	if err := codec.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("invalid request: %v", err)
	}
	if len(fields.Token) == 0 {
		return nil, errors.New("missing token field")
	}

	now := s.auth.Clock.Now()
	var token *operator.Token
	var err error
	if scope == "" {
		token, err = operator.VerifyAt(s.auth.PublicKey, fields.Token, now)
	} else {
		token, err = operator.VerifyForScopeAt(s.auth.PublicKey, fields.Token, scope, now)
	}
	if err != nil {
		s.logger.Warn("authentication failed",
			"action", action,
			"error", err,
		)
		switch {
		case errors.Is(err, operator.ErrTokenExpired):
			return nil, errors.New("token expired")
		case errors.Is(err, operator.ErrScopeMissing):
			return nil, fmt.Errorf("token lacks %q scope", scope)
		default:
			return nil, errors.New("authentication failed")
		}
	}
	return token, nil
}

// writeError sends a failure response: {ok: false, error: "..."}.
// Write failures are logged at debug level; the connection is closing
// regardless, and the caller has already received the error.
func (s *SocketServer) writeError(conn net.Conn, message string) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := codec.NewEncoder(conn).Encode(Response{
		OK:    false,
		Error: message,
	}); err != nil {
		s.logger.Debug("failed to write error response", "error", err)
	}
}

// writeSuccess sends a success response. If result is nil, the
// response is {ok: true}. If non-nil, the value is marshaled as CBOR
// and placed in the "data" field: {ok: true, data: <cbor>}.
func (s *SocketServer) writeSuccess(conn net.Conn, result any) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	response := Response{OK: true}

	if result != nil {
		data, err := codec.Marshal(result)
		if err != nil {
			s.writeError(conn, fmt.Sprintf("internal: marshaling response: %v", err))
			return
		}
		response.Data = data
	}

	if err := codec.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Debug("failed to write success response", "error", err)
	}
}
