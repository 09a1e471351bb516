// Package pages enthält die Routen der Weboberfläche. Jede Route beschreibt
// ihre Antwort als render.Stream; nichts davon blockiert oder puffert eine
// ganze Antwort.
package pages

import (
	"github.com/rs/zerolog"

	"heatmon/pkg/render"
	"heatmon/pkg/settings"
	"heatmon/pkg/sysinfo"
	"heatmon/pkg/topics"
	"heatmon/pkg/wifi"
)

// Routes of the request surface
const (
	RouteRoot         = "/"
	RouteSettings     = "/settings"
	RouteGetSettings  = "/getsettings"
	RouteSaveSettings = "/savesettings"
	RouteWifiScan     = "/wifiscan"
	RouteFactoryReset = "/factoryreset"
	RouteReboot       = "/reboot"
	RouteTableRefresh = "/tablerefresh"
	RouteTableDallas  = "/tablerefresh/1wire"
	RouteTableS0      = "/tablerefresh/s0"
	RouteJSON         = "/json"
	RouteDebug        = "/debug"
)

// DallasReading is one 1-wire temperature sensor
type DallasReading struct {
	Address     string
	Temperature float64
}

// Dallas provides the 1-wire sensor readings
type Dallas interface {
	Len() int
	Sensor(i int) DallasReading
}

// S0Reading is one S0 kWh meter
type S0Reading struct {
	Port          int
	Watt          float64
	Watthour      float64
	WatthourTotal float64
}

// S0 provides the S0 meter readings
type S0 interface {
	Len() int
	Meter(i int) S0Reading
}

// Status provides the link counters shown on the dashboard
type Status interface {
	ReadPercentage() int
	MQTTReconnects() int
}

// Actions performs the terminal actions
type Actions interface {
	FactoryReset()
	Reboot()
}

// Recorder receives page level statistics
type Recorder interface {
	Outcome(outcome string)
	ScanServed(networks int)
}

// Deps are the collaborators of the pages. Everything is accessed from the
// device loop only.
type Deps struct {
	Version  string
	Settings *settings.Manager
	Station  *wifi.Station
	Survey   *wifi.Survey
	Topics   *topics.Snapshot
	Dallas   Dallas
	S0       S0
	Status   Status
	Clock    *sysinfo.Clock
	Memory   *sysinfo.Memory
	Actions  Actions
	Recorder Recorder
	Log      zerolog.Logger
}

// Pages renders the routes from Deps
type Pages struct {
	d   Deps
	log zerolog.Logger
}

// New creates the pages. Missing sensor sources render as empty tables.
func New(d Deps) *Pages {
	if d.Dallas == nil {
		d.Dallas = Readings[DallasReading]{}
	}
	if d.S0 == nil {
		d.S0 = Readings[S0Reading]{}
	}
	if d.Status == nil {
		d.Status = &Counters{}
	}
	if d.Recorder == nil {
		d.Recorder = nopRecorder{}
	}
	return &Pages{d: d, log: d.Log.With().Str("component", "pages").Logger()}
}

// Register installs every route on r
func (p *Pages) Register(r *render.Renderer) {
	r.Handle(RouteRoot, render.Func(render.ContentHTML, p.dashboard))
	r.Handle(RouteSettings, render.Func(render.ContentHTML, p.settingsPage))
	r.Handle(RouteGetSettings, render.Func(render.ContentJSON, p.getSettings))
	r.Handle(RouteSaveSettings, render.Submit(render.ContentHTML, p.saveSettings))
	r.Handle(RouteWifiScan, render.Func(render.ContentJSON, p.wifiScan))
	r.Handle(RouteFactoryReset, render.Func(render.ContentHTML, p.factoryReset))
	r.Handle(RouteReboot, render.Func(render.ContentHTML, p.reboot))
	r.Handle(RouteTableRefresh, render.Func(render.ContentHTML, p.tableRefresh))
	r.Handle(RouteTableDallas, render.Func(render.ContentHTML, p.tableDallas))
	r.Handle(RouteTableS0, render.Func(render.ContentHTML, p.tableS0))
	r.Handle(RouteJSON, render.Func(render.ContentJSON, p.jsonOutput))
	r.Handle(RouteDebug, render.Func(render.ContentHTML, p.debug))
}

// Readings is a fixed list of sensor readings
type Readings[T any] []T

// Len returns the number of readings
func (r Readings[T]) Len() int { return len(r) }

// Sensor returns reading i
func (r Readings[T]) Sensor(i int) T { return r[i] }

// Meter returns reading i
func (r Readings[T]) Meter(i int) T { return r[i] }

// Counters is a settable Status
type Counters struct {
	Read       int
	Reconnects int
}

// ReadPercentage returns the share of correctly received frames
func (c *Counters) ReadPercentage() int { return c.Read }

// MQTTReconnects returns the broker reconnect count
func (c *Counters) MQTTReconnects() int { return c.Reconnects }

type nopRecorder struct{}

func (nopRecorder) Outcome(string) {}
func (nopRecorder) ScanServed(int) {}
