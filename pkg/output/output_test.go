package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"heatmon/pkg/output"
	"heatmon/pkg/wifi"
)

func TestOutput(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Output Suite")
}

var _ = BeforeSuite(func() {
	color.NoColor = true
})

var _ = Describe("Networks", func() {
	It("should skip hidden networks and compute the quality", func() {
		nets := output.Networks([]wifi.Entry{
			{SSID: "Home", RSSI: -60},
			{SSID: "", RSSI: -40},
			{SSID: "Gone", RSSI: wifi.NoSignal},
		})
		Expect(nets).To(Equal([]output.Network{
			{SSID: "Home", RSSI: -60, Quality: 80},
			{SSID: "Gone", RSSI: wifi.NoSignal, Quality: -1},
		}))
	})
})

var _ = Describe("PrintNetworks", func() {
	var (
		buf  *bytes.Buffer
		nets []output.Network
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		nets = []output.Network{
			{SSID: "Home", RSSI: -55, Quality: 90},
			{SSID: "Neighbour, 2.4GHz", RSSI: -80, Quality: 40},
		}
	})

	It("should print a table with quality bars", func() {
		Expect(output.PrintNetworks(buf, nets, "table", output.DefaultSize)).To(Succeed())
		lines := strings.Split(buf.String(), "\n")
		Expect(lines[0]).To(HavePrefix("SSID"))
		Expect(lines[2]).To(ContainSubstring("-55 dBm"))
		Expect(lines[2]).To(ContainSubstring("90%"))
		Expect(lines[2]).To(ContainSubstring("█████████░"))
	})

	It("should drop the bars on narrow terminals", func() {
		Expect(output.PrintNetworks(buf, nets, "table", output.TerminalSize{Width: 60})).To(Succeed())
		Expect(buf.String()).NotTo(ContainSubstring("█"))
		Expect(buf.String()).To(ContainSubstring("Neighbour, 2.4GHz"))
	})

	It("should report an empty survey", func() {
		Expect(output.PrintNetworks(buf, nil, "table", output.DefaultSize)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("No networks found"))
	})

	It("should print JSON", func() {
		Expect(output.PrintNetworks(buf, nets, "JSON", output.DefaultSize)).To(Succeed())
		var got []output.Network
		Expect(json.Unmarshal(buf.Bytes(), &got)).To(Succeed())
		Expect(got).To(Equal(nets))
	})

	It("should quote CSV fields", func() {
		Expect(output.PrintNetworks(buf, nets, "csv", output.DefaultSize)).To(Succeed())
		Expect(buf.String()).To(Equal("SSID,RSSI,Quality\nHome,-55,90\n\"Neighbour, 2.4GHz\",-80,40\n"))
	})
})

var _ = Describe("Truncate", func() {
	AfterEach(func() {
		output.SetFullOutput(false)
	})

	It("should leave short strings alone", func() {
		Expect(output.Truncate("Home", 10)).To(Equal("Home"))
	})

	It("should count runes", func() {
		Expect(output.Truncate("Wärmepumpe", 10)).To(Equal("Wärmepumpe"))
		Expect(output.Truncate("äöüß", 3)).To(Equal("äöü"))
	})

	It("should show how much was cut", func() {
		s := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		got := output.Truncate(s, 12)
		Expect(got).To(Equal("ABCDEF…[+20]"))
		Expect([]rune(got)).To(HaveLen(12))
	})

	It("should use a plain ellipsis for short limits", func() {
		Expect(output.Truncate("ABCDEFGHIJ", 6)).To(Equal("ABCDE…"))
	})

	It("should not cut in full output mode", func() {
		output.SetFullOutput(true)
		Expect(output.Truncate("ABCDEFGHIJKLMNOP", 10)).To(Equal("ABCDEFGHIJKLMNOP"))
	})
})
