package wifi_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"heatmon/pkg/wifi"
)

func TestWifi(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Wifi Suite")
}

var _ = Describe("Quality", func() {
	It("should follow 2*(dBm+100) between -100 and -50", func() {
		for dBm := -100; dBm <= -50; dBm++ {
			Expect(wifi.Quality(dBm)).To(Equal(2*(dBm+100)), "dBm=%d", dBm)
		}
	})

	It("should clamp weak and strong signals", func() {
		Expect(wifi.Quality(-120)).To(Equal(0))
		Expect(wifi.Quality(-100)).To(Equal(0))
		Expect(wifi.Quality(-50)).To(Equal(100))
		Expect(wifi.Quality(-20)).To(Equal(100))
	})

	It("should map the no-signal sentinel to -1", func() {
		Expect(wifi.Quality(wifi.NoSignal)).To(Equal(-1))
	})

	It("should never decrease with stronger signal", func() {
		prev := wifi.Quality(-130)
		for dBm := -129; dBm <= 0; dBm++ {
			q := wifi.Quality(dBm)
			Expect(q).To(BeNumerically(">=", prev))
			Expect(q).To(BeNumerically("<=", 100))
			prev = q
		}
	})
})

var _ = Describe("Rank", func() {
	It("should sort by descending strength and keep the strongest duplicate", func() {
		in := []wifi.Entry{
			{SSID: "Home", RSSI: -80},
			{SSID: "Neighbour", RSSI: -60},
			{SSID: "Home", RSSI: -45},
			{SSID: "Cafe", RSSI: -70},
			{SSID: "Neighbour", RSSI: -90},
		}

		out := wifi.Rank(in)

		Expect(out).To(Equal([]wifi.Entry{
			{SSID: "Home", RSSI: -45},
			{SSID: "Neighbour", RSSI: -60},
			{SSID: "Cafe", RSSI: -70},
		}))
		// Eingabe bleibt unverändert
		Expect(in[0]).To(Equal(wifi.Entry{SSID: "Home", RSSI: -80}))
	})

	It("should keep the original order for equal strength", func() {
		out := wifi.Rank([]wifi.Entry{
			{SSID: "B", RSSI: -60},
			{SSID: "A", RSSI: -60},
			{SSID: "C", RSSI: -60},
		})
		Expect(out).To(Equal([]wifi.Entry{
			{SSID: "B", RSSI: -60},
			{SSID: "A", RSSI: -60},
			{SSID: "C", RSSI: -60},
		}))
	})

	It("should satisfy ordering and uniqueness for a larger input", func() {
		var in []wifi.Entry
		names := []string{"a", "b", "c", "d", "e"}
		for i := 0; i < 40; i++ {
			in = append(in, wifi.Entry{SSID: names[i%len(names)], RSSI: -30 - (i*37)%70})
		}

		out := wifi.Rank(in)

		best := map[string]int{}
		for _, e := range in {
			if v, ok := best[e.SSID]; !ok || e.RSSI > v {
				best[e.SSID] = e.RSSI
			}
		}
		Expect(out).To(HaveLen(len(best)))
		seen := map[string]bool{}
		for i, e := range out {
			Expect(seen[e.SSID]).To(BeFalse())
			seen[e.SSID] = true
			Expect(e.RSSI).To(Equal(best[e.SSID]))
			if i > 0 {
				Expect(e.RSSI).To(BeNumerically("<=", out[i-1].RSSI))
			}
		}
	})

	It("should handle an empty scan", func() {
		Expect(wifi.Rank(nil)).To(BeEmpty())
	})
})

var _ = Describe("Survey", func() {
	It("should report the count of the last completed scan", func() {
		scanner := &wifi.StaticScanner{Entries: []wifi.Entry{{SSID: "x", RSSI: -50}, {SSID: "y", RSSI: -70}}}
		survey := wifi.NewSurvey(scanner, nil)
		Expect(survey.Count()).To(BeZero())

		survey.Request()

		Expect(survey.Count()).To(Equal(2))
		Expect(survey.Scanning()).To(BeFalse())
		Expect(survey.Results()).To(Equal(scanner.Entries))
		Expect(survey.Scans()).To(Equal(1))
	})

	It("should not start a second scan while one is running", func() {
		var pending []func()
		survey := wifi.NewSurvey(&wifi.StaticScanner{}, func(f func()) { pending = append(pending, f) })

		survey.Request()
		survey.Request()
		Expect(survey.Scans()).To(Equal(1))
		Expect(survey.Scanning()).To(BeTrue())

		for _, f := range pending {
			f()
		}
		Expect(survey.Scanning()).To(BeFalse())
		survey.Request()
		Expect(survey.Scans()).To(Equal(2))
	})

	It("should keep the previous result until a queued completion runs", func() {
		var pending []func()
		scanner := &wifi.StaticScanner{Entries: []wifi.Entry{{SSID: "A", RSSI: -40}, {SSID: "B", RSSI: -60}, {SSID: "C", RSSI: -80}}}
		survey := wifi.NewSurvey(scanner, func(f func()) { pending = append(pending, f) })

		survey.Request()
		pending[0]()
		Expect(survey.Count()).To(Equal(3))

		scanner.Entries = []wifi.Entry{{SSID: "A", RSSI: -45}}
		survey.Request()
		Expect(pending).To(HaveLen(2))

		ranked := wifi.Rank(survey.Results())
		Expect(ranked).To(HaveLen(3))
		for _, e := range ranked {
			Expect(e.SSID).NotTo(BeEmpty())
		}
		Expect(ranked[0]).To(Equal(wifi.Entry{SSID: "A", RSSI: -40}))

		pending[1]()
		Expect(wifi.Rank(survey.Results())).To(Equal([]wifi.Entry{{SSID: "A", RSSI: -45}}))
	})
})

var _ = Describe("Entries", func() {
	It("should answer out of range queries with an empty no-signal entry", func() {
		e := wifi.Entries{{SSID: "Home", RSSI: -50}}
		Expect(e.Len()).To(Equal(1))
		Expect(e.Entry(0).SSID).To(Equal("Home"))
		Expect(e.Entry(3)).To(Equal(wifi.Entry{RSSI: wifi.NoSignal}))
	})
})

const iwOutput = `BSS 11:22:33:44:55:66(on wlan0)
	freq: 2412
	signal: -54.00 dBm
	SSID: Home
BSS 11:22:33:44:55:67(on wlan0)
	signal: -81.00 dBm
	SSID:
BSS aa:bb:cc:dd:ee:ff(on wlan0)
	signal: -67.50 dBm
	SSID: Cafe Guest
`

var _ = Describe("IwScanner", func() {
	It("should parse BSS blocks and skip hidden networks", func() {
		entries := wifi.ParseIwScan(strings.NewReader(iwOutput))
		Expect(entries).To(Equal([]wifi.Entry{
			{SSID: "Home", RSSI: -54},
			{SSID: "Cafe Guest", RSSI: -68},
		}))
	})

	It("should report results through the done callback", func() {
		s := wifi.NewIwScanner("wlan0", 0)
		s.Run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			Expect(name).To(Equal("iw"))
			Expect(args).To(Equal([]string{"dev", "wlan0", "scan"}))
			return []byte(iwOutput), nil
		}

		done := make(chan wifi.Scan, 1)
		s.Start(func(r wifi.Scan) { done <- r })

		var result wifi.Scan
		Eventually(done).Should(Receive(&result))
		Expect(result.Len()).To(Equal(2))
		Expect(result.Entry(0).SSID).To(Equal("Home"))
		Expect(result.Entry(5).RSSI).To(Equal(wifi.NoSignal))
		Expect(s.LastErr()).NotTo(HaveOccurred())
	})

	It("should report zero networks when the command fails", func() {
		s := wifi.NewIwScanner("wlan0", 0)
		s.Run = func(context.Context, string, ...string) ([]byte, error) {
			return nil, errors.New("no such device")
		}

		done := make(chan wifi.Scan, 1)
		s.Start(func(r wifi.Scan) { done <- r })

		var result wifi.Scan
		Eventually(done).Should(Receive(&result))
		Expect(result.Len()).To(BeZero())
		Expect(s.LastErr()).To(MatchError("no such device"))
	})
})

var _ = Describe("Station", func() {
	var fs afero.Fs

	BeforeEach(func() {
		fs = afero.NewMemMapFs()
		Expect(afero.WriteFile(fs, "/proc/net/wireless", []byte(
			"Inter-| sta-|   Quality        |   Discarded packets               | Missed | WE\n"+
				" face | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22\n"+
				" wlan0: 0000   70.  -40.  -256        0      0      0      0      0        0\n"), 0o644)).To(Succeed())
	})

	It("should start in hotspot mode without quality", func() {
		st := wifi.NewStation("wlan0", fs, zerolog.Nop())
		Expect(st.Mode()).To(Equal(wifi.ModeHotspot))
		Expect(st.Quality()).To(Equal(-1))
	})

	It("should read the link level in client mode", func() {
		st := wifi.NewStation("wlan0", fs, zerolog.Nop())
		st.Configure("Home", "secret", "")

		Expect(st.Mode()).To(Equal(wifi.ModeClient))
		Expect(st.Hostname()).To(Equal(wifi.DefaultHostname))
		level, ok := st.RSSI()
		Expect(ok).To(BeTrue())
		Expect(level).To(Equal(-40))
		Expect(st.Quality()).To(Equal(100))
	})

	It("should fall back to hotspot mode for an empty SSID", func() {
		st := wifi.NewStation("wlan0", fs, zerolog.Nop())
		st.Configure("", "", "pump")

		Expect(st.Mode()).To(Equal(wifi.ModeHotspot))
		Expect(st.Hostname()).To(Equal("pump"))
	})

	It("should forget credentials on reset", func() {
		st := wifi.NewStation("wlan0", fs, zerolog.Nop())
		st.Configure("Home", "secret", "")
		st.ResetCredentials()

		Expect(st.SSID()).To(BeEmpty())
		Expect(st.Mode()).To(Equal(wifi.ModeHotspot))
	})

	It("should report no link for an unknown interface", func() {
		_, ok := wifi.ParseProcWireless(strings.NewReader(" eth0: 0000 1. 2. 3.\n"), "wlan0")
		Expect(ok).To(BeFalse())
	})
})
