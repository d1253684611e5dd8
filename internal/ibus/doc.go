// Package ibus connects a windowing host to the IBus input-method daemon
// so composed text (CJK and other multi-keystroke input) can be shown and
// committed inside the host's windows.
//
// # Architecture Overview
//
// The daemon runs on a private D-Bus instance whose address is published
// in a per-display file under the user's config home. The package owns
// the whole connection lifecycle:
//
//	Environment gate  →  is IBus the configured input method at all?
//	Address resolver  →  locate and read the daemon's address file
//	Session manager   →  connect, create input context, register caps,
//	                     detect staleness, reconnect
//	Context ops       →  push focus state and caret geometry
//	Dispatch pump     →  drain daemon replies/signals once per frame
//
// The daemon restarts whenever the user reconfigures input sources, which
// rewrites the address file. Staleness is therefore detected two ways: the
// connection reports itself dead, or the address file's mtime no longer
// matches the one captured when the address was read. Recovery is always
// pull-based: the next NotifyFocus, UpdateCursorGeometry, or Pump call
// re-validates the session; nothing runs on a timer.
//
// # Threading
//
// Everything is designed to be driven from the host's UI thread. Calls to
// the daemon are asynchronous (fire-and-forget, or completed later during
// Pump), so no method blocks on the bus. The only cross-goroutine touch
// point is the optional address-file watcher, which does nothing but flip
// an atomic staleness flag.
//
// # Failure model
//
// IME support is an optional enhancement. Every failure is reported
// through the logging sink and surfaces to the caller as, at worst, a
// false return; nothing here may take down the host event loop.
package ibus
