// Package cli provides the interactive docadmin console.
//
// It wires configuration, the local session store, the REST services and the
// screens of internal/client/views, then runs a REPL over the navigation
// shell. Typical flow: open the default PDF article list, log in, browse
// collections page by page and act on records.
//
// Key features:
//   - Login / Logout / Whoami
//   - Navigate routes and show the session-dependent menu
//   - Page, resize and filter lists
//   - Create, edit and delete records through form dialogs
//   - Upload and download files, read PDFs page by page
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
