// Package dev provides development-mode hot reload.
//
// The browser connects to /_verso/reload via WebSocket. Messages are
// JSON-encoded:
//
//	{"type": "reload"}                // Triggers full page reload
//	{"type": "css", "file": "..."}    // Triggers CSS-only reload
//	{"type": "error", "error": "..."} // Shows error overlay
//	{"type": "clear"}                 // Clears error overlay
//
// A polling Watcher over the static directory feeds the Hub: CSS changes
// become css messages, everything else a full reload.
package dev
