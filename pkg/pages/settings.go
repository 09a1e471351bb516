package pages

import (
	"heatmon/pkg/assets"
	"heatmon/pkg/render"
	"heatmon/pkg/settings"
)

// settingsKeys ist die Reihenfolge der Schlüssel in /getsettings
var settingsKeys = []string{
	"wifi_hostname", "wifi_ssid", "wifi_password", "current_ota_password", "new_ota_password",
	"mqtt_topic_base", "mqtt_server", "mqtt_port", "mqtt_username", "mqtt_password",
	"waitTime", "updateAllTime",
	"listenonly", "logMqtt", "logHexdump", "logSerial1", "optionalPCB",
	"use_1wire", "waitDallasTime", "updataAllDallasTime", "dallasResolution",
	"use_s0",
	"s0_1_gpio", "s0_1_ppkwh", "s0_1_interval", "s0_1_minpulsewidth", "s0_1_maxpulsewidth", "s0_1_minwatt",
	"s0_2_gpio", "s0_2_ppkwh", "s0_2_interval", "s0_2_minpulsewidth", "s0_2_maxpulsewidth", "s0_2_minwatt",
}

// settingValue writes the JSON value of key: strings quoted, flags as 0/1,
// numbers bare. The OTA password fields are always empty.
func settingValue(w *render.Writer, rec *settings.Record, key string) {
	switch key {
	case "current_ota_password", "new_ota_password":
		w.JSON("")
		return
	case "s0_1_minwatt":
		w.Int(rec.S0[0].MinWatt())
		return
	case "s0_2_minwatt":
		w.Int(rec.S0[1].MinWatt())
		return
	}

	f, ok := settings.Lookup(key)
	if !ok {
		w.String("null")
		return
	}
	switch f.Kind {
	case settings.KindFlag:
		if f.Bool(rec) {
			w.Int(1)
		} else {
			w.Int(0)
		}
	case settings.KindNumber:
		w.Int(f.Int(rec))
	default:
		w.JSON(f.String(rec))
	}
}

func (p *Pages) getSettings(*render.Exchange) *render.Stream {
	rec := p.d.Settings.Current()
	return render.NewStream(
		render.Text("{"),
		render.Paged(len(settingsKeys), ",", func(w *render.Writer, i int) {
			w.JSON(settingsKeys[i])
			w.String(":")
			settingValue(w, &rec, settingsKeys[i])
		}),
		render.Text("}"),
	)
}

func (p *Pages) settingsPage(*render.Exchange) *render.Stream {
	return render.NewStream(
		render.Text(assets.Header, assets.CSS, assets.BodyStart, assets.Settings1),
		render.Text(assets.SettingsForm, assets.MenuJS, assets.SettingsJS, assets.ScanWifiJS),
		render.Text(assets.ChangeSSIDJS, assets.GetSettingsJS, assets.Footer),
	)
}

// saveSettings führt den Merge beim Öffnen aus und wählt die Ergebnisseite
func (p *Pages) saveSettings(ex *render.Exchange) *render.Stream {
	outcome, err := p.d.Settings.Apply(ex.Form)
	if err != nil {
		p.log.Error().Err(err).Msg("Settings could not be stored")
	}
	p.d.Recorder.Outcome(outcome.String())

	switch outcome {
	case settings.PasswordMismatch:
		return p.passwordMismatchPage()
	case settings.ReconnectRequired:
		return p.reconnectPage()
	}
	return p.savedPage()
}

func (p *Pages) passwordMismatchPage() *render.Stream {
	return render.NewStream(
		render.Text(assets.Header, assets.CSS, assets.BodyStart),
		render.Text(assets.Settings1, assets.WarnPassword),
		render.Text(assets.RefreshMeta, assets.Footer),
	)
}

func (p *Pages) reconnectPage() *render.Stream {
	return render.NewStream(
		render.Text(assets.Header, assets.CSS, assets.BodyStart),
		render.Text(assets.Settings1, assets.WarnWifi, assets.MenuJS),
		render.Text(assets.RefreshMeta, assets.Footer),
		// erst nach der Warnung umschalten
		render.Action(func() {
			if p.d.Station == nil {
				return
			}
			rec := p.d.Settings.Current()
			p.d.Station.Configure(rec.SSID, rec.WifiPassword, rec.Hostname)
		}),
	)
}

func (p *Pages) savedPage() *render.Stream {
	return render.NewStream(
		render.Text(assets.Header, assets.CSS, assets.BodyStart),
		render.Text(assets.Settings1, assets.Saved, assets.MenuJS),
		render.Text(assets.RefreshMeta, assets.Footer),
	)
}
