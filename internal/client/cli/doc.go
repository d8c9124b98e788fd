// Package cli provides the interactive gophdraft command-line client.
//
// An App drives at most one draft session at a time: 'new' starts one,
// 'title' and 'body' edit it while autosave runs in the background,
// 'image' uploads a cover, and 'publish' or 'close' end it. Unsaved text is
// journaled locally and can be reopened with 'recover' after a crash.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command list.
package cli
