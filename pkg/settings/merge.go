package settings

import (
	"fmt"

	"heatmon/pkg/form"
)

// Outcome is the result of merging a settings submission
type Outcome int

const (
	SavedOK Outcome = iota
	ReconnectRequired
	PasswordMismatch
)

func (o Outcome) String() string {
	switch o {
	case ReconnectRequired:
		return "reconnect_required"
	case PasswordMismatch:
		return "password_mismatch"
	}
	return "saved_ok"
}

// Formularfelder, die nicht direkt in den Datensatz kopiert werden
const (
	fieldWifiSSID       = "wifi_ssid"
	fieldWifiPassword   = "wifi_password"
	fieldNewOTAPassword = "new_ota_password"
	fieldCurOTAPassword = "current_ota_password"
	fieldOTAPassword    = "ota_password"
	fieldUseS0          = "use_s0"
)

// Merge reconciles the submitted fragments with current and returns the
// record to persist. On PasswordMismatch the returned record is current,
// unchanged. Merge neither stores nor reconnects anything.
func Merge(current Record, frags *form.Fragments) (Record, Outcome) {
	scratch := current

	// Checkboxen fehlen im Submit wenn sie aus sind
	for _, f := range Schema {
		if f.Kind == KindFlag {
			*f.flag(&scratch) = false
		}
	}

	useS0 := false
	if v, ok := frags.Lookup(fieldUseS0); ok && v == Enabled {
		useS0 = true
	}

	var ssid, password, newOTA, curOTA *string
	frags.Each(func(name, value string) {
		switch name {
		case fieldWifiSSID:
			ssid = &value
			return
		case fieldWifiPassword:
			password = &value
			return
		case fieldNewOTAPassword:
			newOTA = &value
			return
		case fieldCurOTAPassword:
			curOTA = &value
			return
		case fieldOTAPassword:
			// nur über new/current änderbar
			return
		}

		f, ok := Lookup(name)
		if !ok {
			return
		}
		if f.S0 && !useS0 {
			return
		}
		f.Set(&scratch, value)
	})

	if present(newOTA) && present(curOTA) {
		if *curOTA != current.OTAPassword {
			return current, PasswordMismatch
		}
		scratch.OTAPassword = Truncate(*newOTA, byKey[fieldOTAPassword].Cap)
	}

	outcome := SavedOK
	if present(ssid) && present(password) {
		s := Truncate(*ssid, byKey[fieldWifiSSID].Cap)
		p := Truncate(*password, byKey[fieldWifiPassword].Cap)
		if s != current.SSID || p != current.WifiPassword {
			scratch.SSID = s
			scratch.WifiPassword = p
			outcome = ReconnectRequired
		}
	}
	return scratch, outcome
}

func present(s *string) bool {
	return s != nil && *s != ""
}

// Seed writes the stored value of every field except the OTA password into
// frags, as a settings form pre-filled from rec would submit it. Disabled
// flags are left out like unchecked checkboxes.
func Seed(rec Record, frags *form.Fragments) error {
	for _, f := range Schema {
		if f.Key == fieldOTAPassword {
			continue
		}
		if f.Kind == KindFlag && !f.Bool(&rec) {
			continue
		}
		if err := frags.Accept(f.Key, []byte(f.String(&rec))); err != nil {
			return fmt.Errorf("seed %s: %w", f.Key, err)
		}
	}
	return nil
}
