// Package settings verwaltet den persistierten Konfigurationsdatensatz des
// Geräts: Laden, Validieren, Speichern und das Zusammenführen eines
// Formular-Submits.
package settings

import (
	"strconv"
	"unicode/utf8"

	"heatmon/pkg/topics"
)

// Kind is the storage type of a record field
type Kind int

const (
	KindString Kind = iota
	KindFlag        // gespeichert als "enabled"/"disabled"
	KindNumber
)

// Flag markers as stored in the configuration file
const (
	Enabled  = "enabled"
	Disabled = "disabled"
)

// Channel is one S0 pulse counter input
type Channel struct {
	GPIO          int `json:"gpio"`
	PPKWh         int `json:"ppkwh"`    // pulses per kWh
	Interval      int `json:"interval"` // seconds
	MinPulseWidth int `json:"minpulsewidth"`
	MaxPulseWidth int `json:"maxpulsewidth"`
}

// MinWatt is the lowest power the channel can report within one interval.
// Integer arithmetic like the device, 0 when a divisor is 0.
func (c Channel) MinWatt() int {
	if c.PPKWh == 0 || c.Interval == 0 {
		return 0
	}
	return (3600000 / c.PPKWh) / c.Interval
}

// Record is the persisted device configuration
type Record struct {
	Hostname     string
	SSID         string
	WifiPassword string
	OTAPassword  string
	TopicBase    string
	MQTTServer   string
	MQTTPort     string
	MQTTUsername string
	MQTTPassword string

	Use1Wire    bool
	UseS0       bool
	ListenOnly  bool
	LogMQTT     bool
	LogHexdump  bool
	LogSerial1  bool
	OptionalPCB bool

	WaitTime            int
	WaitDallasTime      int
	DallasResolution    int
	UpdateAllTime       int
	UpdateAllDallasTime int

	S0 [2]Channel
}

// Defaults returns the first-boot configuration
func Defaults() Record {
	return Record{
		Hostname:            "HeishaMon",
		OTAPassword:         "heisha",
		TopicBase:           "panasonic_heat_pump",
		MQTTPort:            "1883",
		WaitTime:            5,
		WaitDallasTime:      5,
		DallasResolution:    12,
		UpdateAllTime:       300,
		UpdateAllDallasTime: 300,
		S0: [2]Channel{
			{GPIO: 12, PPKWh: 1000, Interval: 60, MinPulseWidth: 25, MaxPulseWidth: 100},
			{GPIO: 14, PPKWh: 1000, Interval: 60, MinPulseWidth: 25, MaxPulseWidth: 100},
		},
	}
}

// Normalize applies the load-time limits of the timers and truncates the
// strings to their capacity.
func (r *Record) Normalize() {
	if r.WaitTime < 5 {
		r.WaitTime = 5
	}
	if r.WaitDallasTime < 5 {
		r.WaitDallasTime = 5
	}
	if r.DallasResolution < 9 || r.DallasResolution > 12 {
		r.DallasResolution = 12
	}
	if r.UpdateAllTime < r.WaitTime {
		r.UpdateAllTime = r.WaitTime
	}
	if r.UpdateAllDallasTime < r.WaitDallasTime {
		r.UpdateAllDallasTime = r.WaitDallasTime
	}
	for _, f := range Schema {
		if f.Kind == KindString {
			p := f.str(r)
			*p = Truncate(*p, f.Cap)
		}
	}
}

// Field describes one key of the configuration file
type Field struct {
	Key  string
	Kind Kind
	Cap  int  // Bytes, nur für KindString
	S0   bool // gehört zu einem S0-Kanal, nur mit use_s0 übernommen

	str  func(*Record) *string
	flag func(*Record) *bool
	num  func(*Record) *int
}

func text(key string, capacity int, p func(*Record) *string) Field {
	return Field{Key: key, Kind: KindString, Cap: capacity, str: p}
}

func flag(key string, p func(*Record) *bool) Field {
	return Field{Key: key, Kind: KindFlag, flag: p}
}

func number(key string, p func(*Record) *int) Field {
	return Field{Key: key, Kind: KindNumber, num: p}
}

func channel(n int, name string, p func(*Channel) *int) Field {
	f := number("s0_"+strconv.Itoa(n+1)+"_"+name, func(r *Record) *int { return p(&r.S0[n]) })
	f.S0 = true
	return f
}

// Schema lists every persisted key in file order
var Schema = func() []Field {
	fields := []Field{
		text("wifi_hostname", 39, func(r *Record) *string { return &r.Hostname }),
		text("wifi_ssid", 32, func(r *Record) *string { return &r.SSID }),
		text("wifi_password", 64, func(r *Record) *string { return &r.WifiPassword }),
		text("ota_password", 39, func(r *Record) *string { return &r.OTAPassword }),
		text("mqtt_topic_base", 127, func(r *Record) *string { return &r.TopicBase }),
		text("mqtt_server", 63, func(r *Record) *string { return &r.MQTTServer }),
		text("mqtt_port", 5, func(r *Record) *string { return &r.MQTTPort }),
		text("mqtt_username", 63, func(r *Record) *string { return &r.MQTTUsername }),
		text("mqtt_password", 63, func(r *Record) *string { return &r.MQTTPassword }),

		flag("use_1wire", func(r *Record) *bool { return &r.Use1Wire }),
		flag("use_s0", func(r *Record) *bool { return &r.UseS0 }),
		flag("listenonly", func(r *Record) *bool { return &r.ListenOnly }),
		flag("logMqtt", func(r *Record) *bool { return &r.LogMQTT }),
		flag("logHexdump", func(r *Record) *bool { return &r.LogHexdump }),
		flag("logSerial1", func(r *Record) *bool { return &r.LogSerial1 }),
		flag("optionalPCB", func(r *Record) *bool { return &r.OptionalPCB }),

		number("waitTime", func(r *Record) *int { return &r.WaitTime }),
		number("waitDallasTime", func(r *Record) *int { return &r.WaitDallasTime }),
		number("dallasResolution", func(r *Record) *int { return &r.DallasResolution }),
		number("updateAllTime", func(r *Record) *int { return &r.UpdateAllTime }),
		number("updataAllDallasTime", func(r *Record) *int { return &r.UpdateAllDallasTime }),
	}
	for n := range 2 {
		fields = append(fields,
			channel(n, "gpio", func(c *Channel) *int { return &c.GPIO }),
			channel(n, "ppkwh", func(c *Channel) *int { return &c.PPKWh }),
			channel(n, "interval", func(c *Channel) *int { return &c.Interval }),
			channel(n, "minpulsewidth", func(c *Channel) *int { return &c.MinPulseWidth }),
			channel(n, "maxpulsewidth", func(c *Channel) *int { return &c.MaxPulseWidth }),
		)
	}
	return fields
}()

var byKey = func() map[string]Field {
	m := make(map[string]Field, len(Schema))
	for _, f := range Schema {
		m[f.Key] = f
	}
	return m
}()

// Lookup returns the field stored under key
func Lookup(key string) (Field, bool) {
	f, ok := byKey[key]
	return f, ok
}

// String returns the stored text of the field: strings verbatim, flags as
// enabled/disabled, numbers in decimal.
func (f Field) String(r *Record) string {
	switch f.Kind {
	case KindFlag:
		if *f.flag(r) {
			return Enabled
		}
		return Disabled
	case KindNumber:
		return strconv.Itoa(*f.num(r))
	}
	return *f.str(r)
}

// Bool returns the value of a flag field
func (f Field) Bool(r *Record) bool {
	if f.Kind != KindFlag {
		return false
	}
	return *f.flag(r)
}

// Int returns the value of a number field
func (f Field) Int(r *Record) int {
	if f.Kind != KindNumber {
		return 0
	}
	return *f.num(r)
}

// Set stores a submitted value: strings truncated to capacity, flags enabled
// only for the exact marker, numbers parsed with 0 for garbage.
func (f Field) Set(r *Record, v string) {
	switch f.Kind {
	case KindFlag:
		*f.flag(r) = v == Enabled
	case KindNumber:
		*f.num(r) = parseNumber(v)
	default:
		*f.str(r) = Truncate(v, f.Cap)
	}
}

// Truncate kürzt s auf höchstens n Bytes, ohne ein UTF-8 Zeichen zu zerteilen
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// parseNumber liest Zahlen wie die Firmware: führende Ziffern, sonst 0
func parseNumber(v string) int {
	return topics.ParseInt(v)
}
