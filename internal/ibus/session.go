package ibus

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"

	"imebridge/internal/logging"
)

// DefaultClientName identifies this client to the daemon when creating
// an input context.
const DefaultClientName = "imebridge"

// Options configures a Session. The zero value is usable.
type Options struct {
	// ClientName is sent with CreateInputContext. Defaults to
	// DefaultClientName.
	ClientName string

	// AddressFile overrides the derived address-file path. The
	// IBUS_ADDRESS environment variable still takes precedence.
	AddressFile string

	// Reporter receives every error and debug line. Defaults to a
	// reporter on slog's default logger.
	Reporter *logging.Reporter

	// Dial opens the bus connection. Defaults to DialBus. Tests
	// substitute a fake.
	Dial DialFunc

	// LookupEnv defaults to os.LookupEnv. Tests substitute a map.
	LookupEnv func(string) (string, bool)

	// MachineID defaults to reading the local D-Bus machine ID.
	MachineID func() (string, error)
}

// Session owns the connection to the IBus daemon. One instance lives in
// the host windowing context; all methods except MarkStale must be
// called from the host's UI thread.
type Session struct {
	reporter   *logging.Reporter
	dial       DialFunc
	lookupEnv  func(string) (string, bool)
	machineID  func() (string, error)
	clientName string

	// fileOverride is the config-supplied address-file path, consulted
	// after the IBUS_ADDRESS env var and before derivation.
	fileOverride string

	activated bool
	ready     bool

	conn         Transport
	address      string
	addressFile  string
	addressMtime time.Time
	contextPath  dbus.ObjectPath

	// calls and signals are recreated on every connect so deliveries
	// from a torn-down connection can never reach the new session.
	calls   chan *dbus.Call
	signals chan *dbus.Signal

	// pending is the continuation for the in-flight CreateInputContext
	// call, invoked from Pump.
	pending func(*dbus.Call)

	// stale is set by the optional address-file watcher. Atomic because
	// the watcher runs on its own goroutine.
	stale atomic.Bool

	// SignalHook, when set, receives daemon signals drained by Pump.
	// The daemon pushes CommitText/UpdatePreeditText and friends here;
	// no handling is wired up yet and hosts that leave this nil lose
	// nothing but the raw events.
	SignalHook func(*dbus.Signal)
}

// NewSession creates an empty, unactivated session.
func NewSession(opts Options) *Session {
	if opts.ClientName == "" {
		opts.ClientName = DefaultClientName
	}
	if opts.Reporter == nil {
		opts.Reporter = logging.NewReporter(nil)
	}
	if opts.Dial == nil {
		opts.Dial = DialBus
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.MachineID == nil {
		opts.MachineID = localMachineID
	}
	return &Session{
		reporter:     opts.Reporter,
		dial:         opts.Dial,
		lookupEnv:    opts.LookupEnv,
		machineID:    opts.MachineID,
		clientName:   opts.ClientName,
		fileOverride: opts.AddressFile,
	}
}

// Activated reports whether the environment gate ever passed.
func (s *Session) Activated() bool { return s.activated }

// Ready reports whether an input context is fully established.
func (s *Session) Ready() bool { return s.ready }

// Address returns the daemon address last read from the address file.
func (s *Session) Address() string { return s.address }

// AddressFile returns the resolved address-file path, if any.
func (s *Session) AddressFile() string { return s.addressFile }

// ContextPath returns the daemon-side input context object path, or ""
// before one is created.
func (s *Session) ContextPath() dbus.ObjectPath { return s.contextPath }

// ActivateIfConfigured consults the environment gate once and, if it
// passes, attempts the initial connection. Subsequent calls are no-ops
// returning the current readiness. A false return with a passing gate
// means the daemon is unreachable right now; later EnsureConnected calls
// retry.
func (s *Session) ActivateIfConfigured() bool {
	if s.activated {
		return s.ready
	}
	if !shouldActivate(s.lookupEnv) {
		return false
	}
	s.activated = true
	return s.connect()
}

// connect performs a full session setup: resolve the address file, read
// the address, replace any previous connection, and issue the
// asynchronous CreateInputContext. Every step is a hard gate; any
// failure leaves the session not ready. ready itself is only set later,
// by the create-context continuation during Pump.
func (s *Session) connect() bool {
	s.ready = false

	path, err := s.addressFilePath()
	if err != nil {
		category := categoryConfig
		if errors.Is(err, ErrMalformedDisplay) {
			category = categoryDisplay
		}
		s.reporter.Error(category, err)
		return false
	}
	s.addressFile = path

	addr, mtime, err := readAddress(path)
	if err != nil {
		s.reporter.Error(categoryFile, err)
		return false
	}
	s.address, s.addressMtime = addr, mtime

	s.closeConn()
	s.stale.Store(false)

	s.reporter.Debug("connecting to IBus daemon", "address", addr)
	conn, err := s.dial(addr)
	if err != nil {
		s.reporter.Error(categoryConnection, err)
		return false
	}
	s.conn = conn
	s.calls = make(chan *dbus.Call, 4)
	s.signals = make(chan *dbus.Signal, 32)

	s.contextPath = ""
	s.pending = s.onContextCreated
	s.conn.Call(ibusService, ibusPath, ibusInterface+".CreateInputContext", s.calls, s.clientName)

	if err := s.conn.Subscribe(inputContextInterface, s.signals); err != nil {
		s.reporter.Error(categoryConnection, fmt.Errorf("subscribe input context signals: %w", err))
		s.closeConn()
		return false
	}
	return true
}

// onContextCreated is the CreateInputContext continuation. On success it
// stores the context path, advertises the default capabilities, primes
// focus to out and the caret to the origin, and only then marks the
// session ready. Any failure leaves ready false for this attempt.
func (s *Session) onContextCreated(call *dbus.Call) {
	if call.Err != nil {
		s.reporter.Error(categoryProtocol, fmt.Errorf("create input context: %w", call.Err))
		return
	}
	var path dbus.ObjectPath
	if err := call.Store(&path); err != nil {
		s.reporter.Error(categoryProtocol, fmt.Errorf("input context reply: %w", err))
		return
	}
	s.contextPath = path

	caps := DefaultCapabilities
	if err := s.conn.Send(ibusService, path, inputContextInterface+".SetCapabilities", uint32(caps)); err != nil {
		s.reporter.Error(categoryProtocol, fmt.Errorf("set capabilities %v: %w", caps, err))
		return
	}
	s.NotifyFocus(false)
	s.UpdateCursorGeometry(0, 0, 0, 0)
	s.reporter.Debug("connected to IBus daemon for IME input", "context", string(path), "capabilities", caps.String())
	s.ready = true
}

// EnsureConnected is the connectivity gate for every context operation
// and the sole retry path. A live connection wins outright. Otherwise
// the address file decides: gone or changed since the last read means
// the daemon restarted, so reconnect from scratch; unchanged means no
// daemon is reachable and the caller keeps treating IME as unavailable.
func (s *Session) EnsureConnected() bool {
	if !s.activated {
		return false
	}
	if s.conn != nil && s.conn.Connected() && !s.stale.Load() {
		return true
	}
	fi, err := os.Stat(s.addressFile)
	if err != nil || !fi.ModTime().Equal(s.addressMtime) || s.stale.Load() {
		return s.connect()
	}
	return false
}

// MarkStale flags the session for reconnection on the next
// EnsureConnected call. Safe to call from other goroutines; used by the
// address-file watcher.
func (s *Session) MarkStale() {
	s.stale.Store(true)
}

// Pump drains completed calls and pending daemon signals, once,
// non-blocking. The host event loop calls this every tick.
func (s *Session) Pump() {
	if s.conn == nil {
		return
	}
	for {
		select {
		case call := <-s.calls:
			if cb := s.pending; cb != nil {
				s.pending = nil
				cb(call)
			}
		case sig := <-s.signals:
			if s.SignalHook != nil {
				s.SignalHook(sig)
			}
		default:
			return
		}
	}
}

// Terminate closes the connection and clears all session state.
// Idempotent; the session can only come back through a fresh
// EnsureConnected (if it was ever activated).
func (s *Session) Terminate() {
	s.closeConn()
	s.address = ""
	s.addressFile = ""
	s.addressMtime = time.Time{}
}

// closeConn tears down the transport and everything scoped to it.
func (s *Session) closeConn() {
	if s.conn != nil {
		s.conn.Unsubscribe(s.signals)
		s.conn.Close()
		s.conn = nil
	}
	s.pending = nil
	s.contextPath = ""
	s.ready = false
}
