package sysinfo

import "time"

// Halt delays of the terminal actions
const (
	ResetDelay  = time.Second
	RebootDelay = 5 * time.Second
)

// System performs the terminal actions. Both block the caller for the
// fixed delay and then restart; there is no way to cancel them.
type System struct {
	// Wipe entfernt die gespeicherte Konfiguration
	Wipe func() error
	// Disconnect vergisst die WLAN-Zugangsdaten
	Disconnect func()
	// Restart beendet den Prozess
	Restart func(reason string)
	// Sleep wartet, in Tests ersetzbar
	Sleep func(time.Duration)

	OnError func(err error)
}

func (s *System) sleep(d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}

// FactoryReset wipes the configuration, forgets the network and restarts
func (s *System) FactoryReset() {
	s.sleep(ResetDelay)
	if s.Wipe != nil {
		if err := s.Wipe(); err != nil && s.OnError != nil {
			s.OnError(err)
		}
	}
	if s.Disconnect != nil {
		s.Disconnect()
	}
	s.sleep(ResetDelay)
	s.Restart("factory reset")
}

// Reboot restarts after RebootDelay
func (s *System) Reboot() {
	s.sleep(RebootDelay)
	s.Restart("reboot requested")
}
