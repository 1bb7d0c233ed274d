// Package cli provides the interactive grocery command-line client.
//
// It wires configuration, the local session database, the API transport,
// and an interactive REPL on top of the entity state synchronizer.
//
// Key features:
//   - Register / Login / Logout
//   - List, create, delete and select categories
//   - List, create and delete items of the selected category
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and Root for details.
package cli
