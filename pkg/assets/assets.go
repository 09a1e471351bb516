// Package assets enthält die statischen Markup-Fragmente der Weboberfläche.
// Die Seiten werden aus diesen Fragmenten stückweise zusammengesetzt.
package assets

import (
	"embed"
	"strings"
)

//go:embed web/*.html
var files embed.FS

func load(name string) string {
	b, err := files.ReadFile("web/" + name + ".html")
	if err != nil {
		panic("assets: missing fragment " + name)
	}
	return strings.TrimRight(string(b), "\n")
}

// Page frame
var (
	Header      = load("header")
	CSS         = load("css")
	BodyStart   = load("body_start")
	Footer      = load("footer")
	EndDiv      = load("end_div")
	RefreshMeta = load("refresh_meta")
	MenuJS      = load("menu_js")
)

// Dashboard
var (
	Root1            = load("root1")
	Root2            = load("root2")
	TabDallas        = load("tab_dallas")
	TabS0            = load("tab_s0")
	TabConsole       = load("tab_console")
	StatusWifi       = load("status_wifi")
	StatusMemory     = load("status_memory")
	StatusReceived   = load("status_received")
	StatusReconnects = load("status_reconnects")
	StatusUptime     = load("status_uptime")
	ValuesHeatpump   = load("values_heatpump")
	ValuesDallas     = load("values_dallas")
	ValuesS0         = load("values_s0")
	Console          = load("console")
	RefreshJS        = load("refresh_js")
	SelectJS         = load("select_js")
	WebsocketJS      = load("websocket_js")
)

// Settings
var (
	Settings1     = load("settings1")
	SettingsForm  = load("settings_form")
	SettingsJS    = load("settings_js")
	ScanWifiJS    = load("scanwifi_js")
	ChangeSSIDJS  = load("changessid_js")
	GetSettingsJS = load("getsettings_js")
)

// Warnings and outcome messages
var (
	WarnPassword = load("warn_password")
	WarnWifi     = load("warn_wifi")
	Saved        = load("saved")
	WarnReboot   = load("warn_reboot")
	WarnReset    = load("warn_reset")
)

// Names lists every embedded fragment
func Names() []string {
	entries, err := files.ReadDir("web")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".html"))
	}
	return out
}
