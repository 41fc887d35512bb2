// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package events

// Subscription is the cancellation token returned by Bus.Register.
type Subscription struct {
	bus      string
	listener string
	cancel   func() bool
}

// Bus returns the name of the bus the listener is registered on.
func (s *Subscription) Bus() string { return s.bus }

// Listener returns the listener name given at registration.
func (s *Subscription) Listener() string { return s.listener }

// Cancel removes the listener. It is idempotent and may be called from
// inside a dispatch, including from the listener itself. It reports whether
// this call removed the listener.
func (s *Subscription) Cancel() bool {
	if s == nil || s.cancel == nil {
		return false
	}
	return s.cancel()
}
