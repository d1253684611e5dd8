package ibus

import "errors"

// IBus D-Bus constants.
const (
	ibusService           = "org.freedesktop.IBus"
	ibusPath              = "/org/freedesktop/IBus"
	ibusInterface         = "org.freedesktop.IBus"
	inputContextInterface = "org.freedesktop.IBus.InputContext"
)

// addressKey is the key the daemon writes its bus address under in the
// per-display address file.
const addressKey = "IBUS_ADDRESS"

// Environment variables consulted by the gate and the resolver.
const (
	envAddressFile = "IBUS_ADDRESS" // explicit address-file path override
	envDisplay     = "DISPLAY"
	envConfigHome  = "XDG_CONFIG_HOME"
	envHome        = "HOME"
)

// Error-report categories passed to the logging sink.
const (
	categoryConfig     = "config"
	categoryDisplay    = "display"
	categoryFile       = "file"
	categoryProtocol   = "protocol"
	categoryConnection = "connection"
)

// Sentinel errors for the failures a caller may want to distinguish.
// File, protocol, and connection failures are wrapped os/dbus errors.
var (
	// ErrNoConfigHome means neither XDG_CONFIG_HOME nor HOME is set, so
	// no address-file path can be derived.
	ErrNoConfigHome = errors.New("ibus: cannot determine config home (no XDG_CONFIG_HOME or HOME)")

	// ErrMalformedDisplay means DISPLAY lacks the colon separating host
	// from display number.
	ErrMalformedDisplay = errors.New("ibus: DISPLAY has no colon")

	// ErrAddressNotFound means the address file had no IBUS_ADDRESS line.
	ErrAddressNotFound = errors.New("ibus: no IBUS_ADDRESS entry in address file")
)
