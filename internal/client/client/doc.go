// Package client is the REST transport of the docadmin console.
//
// # Overview
//
//  1. Client, the interface services depend on: JSON Get/Post/Patch/Delete,
//     binary Download and streaming multipart Upload with progress.
//  2. RESTClient, the net/http implementation. Before every request it asks
//     its TokenSource for the bearer token and sets
//     "Authorization: Bearer <token>"; an empty token or a read failure sends
//     the request unauthenticated. Each request carries an X-Request-ID.
//     There are no retries and no token refresh.
//  3. InitDatabase and RunMigrations, which open the local SQLite store and
//     apply the embedded goose migrations.
//
// # Error Handling
//
// Non-2xx responses are returned as *StatusError, which unwraps to one of
// ErrUnauthorized, ErrNotFound, ErrBadRequest, ErrUnavailable or ErrServer.
// Transport failures wrap ErrUnavailable. Match with errors.Is.
package client
