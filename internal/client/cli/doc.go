// Package cli provides the interactive ConnectHub command-line client.
//
// It wires configuration, the backend handle, avatar storage and the
// application services into a REPL that renders the views of the social
// network. Typical flow: show a loading screen until the session is resolved,
// then either the sign-in/sign-up forms or the home feed.
//
// Views:
//   - Auth: signin / signup forms with inline errors
//   - Home: composer, recent/trending tabs, numbered post cards, live inserts
//   - Profile: identity, stats, actions, posts/about tabs, edit and avatar
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
