// Package backend is the client handle to the hosted backend.
//
// A Client is created once at startup and composes four parts:
//
//   - Auth: password sign-in/sign-up against the GoTrue REST API, the
//     in-memory session and the session-change stream.
//   - Store: identity and post reads/writes, either through the PostgREST data
//     API (RestStore) or a direct Postgres connection (PostgresStore).
//   - PostEvents: a push stream of inserted posts, either from the Realtime
//     websocket (Realtime) or Postgres LISTEN/NOTIFY (PgListener).
//
// Every call takes a context.Context and no request is retried; callers set
// deadlines. Failures carry common sentinel errors (ErrorNotFound,
// ErrInvalidCredentials, ErrUserAlreadyExists, ErrUnavailable) wrapped in
// *APIError where the backend produced a response.
package backend
