// Package client contains the client-side building blocks that talk to the
// draft backend and open the local database.
//
// # Overview
//
//  1. A transport-agnostic API contract (Client): create, update, publish
//     and discard drafts, upload images, toggle likes, ping.
//  2. A gRPC implementation (GRPCClient) that sends google.protobuf.Struct
//     messages to drafts.v1.DraftService, injects the access token through a
//     unary interceptor and maps status codes to sentinel errors.
//  3. A REST implementation (HTTPClient) for the /posts API.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) opening an
//     SQLite database and applying the embedded goose migrations.
//
// # Error Handling
//
// Transport failures are reported as sentinel errors matched with errors.Is:
// ErrUnavailable, ErrUnauthorized, ErrNotFound, ErrBadResponse.
//
// Both transports are safe for concurrent use. All calls honor context
// cancellation.
package client
