package wifi

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	// DefaultHostname wird verwendet wenn kein Hostname konfiguriert ist
	DefaultHostname = "HeishaMon"
	// HotspotSSID is announced while no client network is configured
	HotspotSSID = "HeishaMon-Setup"

	procWireless = "/proc/net/wireless"
)

// Mode is the radio operating mode
type Mode int

const (
	ModeHotspot Mode = iota
	ModeClient
)

func (m Mode) String() string {
	if m == ModeClient {
		return "client"
	}
	return "hotspot"
}

// Station owns the configured credentials of the radio and reports the
// current link quality.
type Station struct {
	iface    string
	fs       afero.Fs
	log      zerolog.Logger
	mode     Mode
	ssid     string
	password string
	hostname string
	applied  int
}

// NewStation creates a station for iface. Link levels are read from
// /proc/net/wireless on fs.
func NewStation(iface string, fs afero.Fs, log zerolog.Logger) *Station {
	return &Station{
		iface:    iface,
		fs:       fs,
		log:      log.With().Str("component", "wifi").Logger(),
		hostname: DefaultHostname,
	}
}

// Configure switches to client mode for ssid, or to hotspot mode when ssid is
// empty. An empty hostname falls back to DefaultHostname.
func (s *Station) Configure(ssid, password, hostname string) {
	s.log.Info().Msg("Wifi reconnecting with new configuration...")
	s.applied++

	s.ssid = ssid
	s.password = password
	if ssid != "" {
		s.mode = ModeClient
		s.log.Info().Str("ssid", ssid).Bool("open", password == "").Msg("Wifi client mode...")
	} else {
		s.mode = ModeHotspot
		s.log.Info().Str("ssid", HotspotSSID).Msg("Wifi hotspot mode...")
	}

	s.hostname = hostname
	if s.hostname == "" {
		s.hostname = DefaultHostname
	}
}

// ResetCredentials forgets the stored network; used when the persisted
// configuration is missing or corrupt.
func (s *Station) ResetCredentials() {
	s.log.Warn().Msg("Forcing a network credential reset")
	s.ssid = ""
	s.password = ""
	s.mode = ModeHotspot
}

// Mode returns the current operating mode
func (s *Station) Mode() Mode { return s.mode }

// SSID returns the configured client network
func (s *Station) SSID() string { return s.ssid }

// Hostname returns the announced hostname
func (s *Station) Hostname() string { return s.hostname }

// Applied returns how often Configure was called
func (s *Station) Applied() int { return s.applied }

// RSSI returns the link level in dBm, ok is false without a link.
func (s *Station) RSSI() (int, bool) {
	if s.mode != ModeClient || s.fs == nil {
		return 0, false
	}
	f, err := s.fs.Open(procWireless)
	if err != nil {
		return 0, false
	}
	defer func() { _ = f.Close() }()
	return ParseProcWireless(f, s.iface)
}

// Quality returns the link quality 0..100, or -1 when not connected.
func (s *Station) Quality() int {
	level, ok := s.RSSI()
	if !ok {
		return -1
	}
	return Quality(level)
}

// ParseProcWireless liest den Signalpegel (dBm) eines Interfaces aus
// /proc/net/wireless. Format der Datenzeilen:
//
//	wlan0: 0000   70.  -40.  -256        0      0      0      0      0        0
func ParseProcWireless(r io.Reader, iface string) (int, bool) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name, rest, ok := strings.Cut(strings.TrimSpace(sc.Text()), ":")
		if !ok || name != iface {
			continue
		}
		fields := strings.Fields(rest)
		// status, link, level, noise
		if len(fields) < 3 {
			return 0, false
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[2], "."), 64)
		if err != nil {
			return 0, false
		}
		return int(level), true
	}
	return 0, false
}
