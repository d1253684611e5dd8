package ibus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Transport is the slice of a D-Bus connection the session needs. It
// exists so tests can substitute a fake bus; the real implementation is
// a thin wrapper over *dbus.Conn.
type Transport interface {
	// Connected reports whether the underlying connection is still live.
	Connected() bool

	// Close tears the connection down. Pending calls complete with an
	// error.
	Close() error

	// Call issues an asynchronous method call. The completed *dbus.Call
	// is delivered on done, which must be buffered. method is the full
	// interface-qualified name.
	Call(dest string, path dbus.ObjectPath, method string, done chan *dbus.Call, args ...interface{})

	// Send issues a fire-and-forget method call (no reply requested).
	// The returned error covers marshalling/queueing only.
	Send(dest string, path dbus.ObjectPath, method string, args ...interface{}) error

	// Subscribe registers a match rule for signals on the given
	// interface and delivers them on ch.
	Subscribe(iface string, ch chan<- *dbus.Signal) error

	// Unsubscribe stops delivery to ch.
	Unsubscribe(ch chan<- *dbus.Signal)
}

// DialFunc opens a Transport to a daemon at the given bus address.
type DialFunc func(address string) (Transport, error)

// DialBus is the default DialFunc. It dials the daemon's private bus,
// authenticates, and completes the Hello handshake.
func DialBus(address string) (Transport, error) {
	conn, err := dbus.Connect(address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return &busTransport{conn: conn}, nil
}

type busTransport struct {
	conn *dbus.Conn
}

func (t *busTransport) Connected() bool {
	return t.conn.Connected()
}

func (t *busTransport) Close() error {
	return t.conn.Close()
}

func (t *busTransport) Call(dest string, path dbus.ObjectPath, method string, done chan *dbus.Call, args ...interface{}) {
	t.conn.Object(dest, path).Go(method, 0, done, args...)
}

func (t *busTransport) Send(dest string, path dbus.ObjectPath, method string, args ...interface{}) error {
	call := t.conn.Object(dest, path).Go(method, dbus.FlagNoReplyExpected, nil, args...)
	return call.Err
}

func (t *busTransport) Subscribe(iface string, ch chan<- *dbus.Signal) error {
	if err := t.conn.AddMatchSignal(dbus.WithMatchInterface(iface)); err != nil {
		return err
	}
	t.conn.Signal(ch)
	return nil
}

func (t *busTransport) Unsubscribe(ch chan<- *dbus.Signal) {
	t.conn.RemoveSignal(ch)
}
