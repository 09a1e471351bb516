package settings

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"heatmon/pkg/form"
)

// Manager owns the live configuration. It is used from the device loop only.
type Manager struct {
	store   *Store
	live    Record
	log     zerolog.Logger
	onReset func()
}

// NewManager creates a manager backed by store. The live record starts at
// the defaults until Load is called.
func NewManager(store *Store, log zerolog.Logger) *Manager {
	return &Manager{
		store: store,
		live:  Defaults(),
		log:   log.With().Str("component", "settings").Logger(),
	}
}

// OnCredentialReset registers the hook that is called when the stored
// configuration is missing or corrupt.
func (m *Manager) OnCredentialReset(fn func()) {
	m.onReset = fn
}

// Current returns a copy of the live record
func (m *Manager) Current() Record {
	return m.live
}

// Store returns the underlying store
func (m *Manager) Store() *Store {
	return m.store
}

// Load reads the live record from storage. A missing or corrupt file is
// treated like a first boot: defaults are used and the network credentials
// are reset. The error is returned for information only.
func (m *Manager) Load() error {
	rec, err := m.store.Load()
	m.live = rec
	if err == nil {
		m.log.Debug().Str("file", m.store.Path()).Msg("Configuration loaded")
		return nil
	}

	if errors.Is(err, ErrNoConfig) {
		m.log.Info().Str("file", m.store.Path()).Msg("No configuration found, using defaults")
	} else {
		m.log.Error().Err(err).Str("file", m.store.Path()).Msg("Failed to load configuration, using defaults")
	}
	if m.onReset != nil {
		m.onReset()
	}
	return err
}

// Apply merges a completed submission, persists the result and reloads the
// live record from storage. The fragments are discarded in every case.
// A storage error is returned next to the outcome; the live record still
// reflects what is on disk.
func (m *Manager) Apply(frags *form.Fragments) (Outcome, error) {
	scratch, outcome := Merge(m.live, frags)
	frags.Reset()

	if outcome == PasswordMismatch {
		m.log.Warn().Msg("OTA password mismatch, settings not saved")
		return outcome, nil
	}

	var saveErr error
	if err := m.store.Save(scratch); err != nil {
		saveErr = fmt.Errorf("save settings: %w", err)
		m.log.Error().Err(err).Msg("Failed to save configuration")
	}
	_ = m.Load()

	m.log.Info().Str("outcome", outcome.String()).Msg("Settings applied")
	return outcome, saveErr
}

// FactoryReset removes the stored configuration and reloads the defaults
func (m *Manager) FactoryReset() error {
	if err := m.store.Remove(); err != nil {
		return err
	}
	m.log.Warn().Msg("Configuration removed")
	_ = m.Load()
	return nil
}
