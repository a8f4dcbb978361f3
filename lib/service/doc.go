// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

// Package service implements the CBOR request-response protocol the
// mint service speaks on its Unix socket, plus the client used by the
// hangar CLI and gateway relays.
//
// # Protocol
//
// Each connection carries exactly one request-response cycle. The
// client writes a single CBOR map containing an "action" field, any
// action-specific fields, and (for authenticated actions) a "token"
// field with raw operator token bytes. The server routes on the
// action name, runs the handler, writes a [Response] envelope, and
// closes the connection. CBOR is self-delimiting, so there is no
// framing layer on either side.
//
// # Authentication
//
// Actions registered with [SocketServer.HandleAuth] require an
// operator token (lib/operator): the server verifies the Ed25519
// signature and expiry, checks the token carries the scope the action
// demands, and passes the decoded token to the handler. The handler
// uses token.Party as the actor for the store's own role checks, so
// the token gates the action class while the ledger's role grants
// gate the mutation itself.
//
// # Streams
//
// Actions whose response is too large for a single envelope (snapshot
// export) register with [SocketServer.HandleAuthStream]. The handler
// owns the connection after authentication: it writes a
// length-prefixed [Response] header with [WriteStreamHeader] and then
// raw body bytes. [ServiceClient.CallStream] returns the body as an
// io.ReadCloser.
package service
