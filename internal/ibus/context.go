package ibus

// Context operations: fire-and-forget notifications to the daemon-side
// input context. Both are advisory and silently do nothing when no
// session can be established; IME never blocks or fails the host.

// NotifyFocus tells the daemon the text surface gained or lost focus.
func (s *Session) NotifyFocus(focused bool) {
	method := "FocusOut"
	if focused {
		method = "FocusIn"
	}
	s.contextSend(method)
}

// UpdateCursorGeometry tells the daemon where the caret is, in window
// coordinates, so it can place candidate popups next to it.
func (s *Session) UpdateCursorGeometry(x, y, w, h int32) {
	s.contextSend("SetCursorLocation", x, y, w, h)
}

func (s *Session) contextSend(method string, args ...interface{}) {
	if !s.EnsureConnected() || s.contextPath == "" {
		return
	}
	if err := s.conn.Send(ibusService, s.contextPath, inputContextInterface+"."+method, args...); err != nil {
		// Best effort only. Worth a debug line, never an error.
		s.reporter.Debug("input context send failed", "method", method, "error", err)
	}
}
