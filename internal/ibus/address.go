package ibus

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// The three variables desktops use to advertise the configured input
// method. IBus integration is attempted iff at least one names ibus.
var activationVars = []struct{ name, value string }{
	{"XMODIFIERS", "@im=ibus"},
	{"GTK_IM_MODULE", "ibus"},
	{"QT_IM_MODULE", "ibus"},
}

// shouldActivate is the environment gate: a pure function of the process
// environment, evaluated once per process (the session's activated flag
// enforces the once).
func shouldActivate(lookup func(string) (string, bool)) bool {
	for _, v := range activationVars {
		if got, ok := lookup(v.name); ok && got == v.value {
			return true
		}
	}
	return false
}

// localMachineID returns the machine's D-Bus machine ID, reading the
// same files libdbus's dbus_get_local_machine_id consults.
func localMachineID() (string, error) {
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("ibus: no machine id (tried /etc/machine-id, /var/lib/dbus/machine-id)")
}

// addressFilePath computes the path of the daemon's address file.
//
// An explicit IBUS_ADDRESS env value is taken verbatim as the file path.
// Otherwise the path is derived from DISPLAY (default ":0.0") as
// <config-home>/ibus/bus/<machine-id>-<host>-<display-number>, where an
// empty host means the local "unix" socket and config home falls back
// from XDG_CONFIG_HOME to HOME/.config.
func (s *Session) addressFilePath() (string, error) {
	if v, ok := s.lookupEnv(envAddressFile); ok && v != "" {
		return v, nil
	}
	if s.fileOverride != "" {
		return s.fileOverride, nil
	}

	display, _ := s.lookupEnv(envDisplay)
	if display == "" {
		display = ":0.0"
	}
	colon := strings.IndexByte(display, ':')
	if colon < 0 {
		return "", ErrMalformedDisplay
	}
	host := display[:colon]
	if host == "" {
		host = "unix"
	}
	num := display[colon+1:]
	if dot := strings.IndexByte(num, '.'); dot >= 0 {
		num = num[:dot]
	}

	confHome, ok := s.lookupEnv(envConfigHome)
	if !ok || confHome == "" {
		home, ok := s.lookupEnv(envHome)
		if !ok || home == "" {
			return "", ErrNoConfigHome
		}
		confHome = filepath.Join(home, ".config")
	}

	id, err := s.machineID()
	if err != nil {
		return "", err
	}
	return filepath.Join(confHome, "ibus", "bus", id+"-"+host+"-"+num), nil
}

// readAddress scans the address file for the IBUS_ADDRESS entry and
// returns it together with the file's mtime. Address and mtime come from
// the same stat/read so the staleness oracle matches the address in use.
// Lines may end in LF, CRLF, or bare CR; the returned value carries no
// line-ending characters.
func readAddress(path string) (string, time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("open address file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("stat address file: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("read address file: %w", err)
	}

	for _, line := range strings.FieldsFunc(string(data), func(r rune) bool {
		return r == '\n' || r == '\r'
	}) {
		if addr, ok := strings.CutPrefix(line, addressKey+"="); ok {
			return addr, fi.ModTime(), nil
		}
	}
	return "", time.Time{}, fmt.Errorf("%w: %s", ErrAddressNotFound, path)
}
