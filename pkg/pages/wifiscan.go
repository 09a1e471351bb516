package pages

import (
	"strconv"

	"heatmon/pkg/render"
	"heatmon/pkg/wifi"
)

// wifiScan rendert das Ergebnis des letzten Scans und stößt danach den
// nächsten an, damit spätere Aufrufe frischere Daten sehen.
func (p *Pages) wifiScan(*render.Exchange) *render.Stream {
	var ranked []wifi.Entry
	if p.d.Survey != nil {
		ranked = wifi.Rank(p.d.Survey.Results())
	}
	p.d.Recorder.ScanServed(len(ranked))

	return render.NewStream(
		render.Text("["),
		render.Paged(len(ranked), ",", func(w *render.Writer, i int) {
			w.String(`{"ssid":`)
			w.JSON(ranked[i].SSID)
			w.String(`,"rssi":`)
			w.JSON(strconv.Itoa(wifi.Quality(ranked[i].RSSI)) + "%")
			w.String("}")
		}),
		render.Text("]"),
		render.Action(func() {
			if p.d.Survey != nil {
				p.d.Survey.Request()
			}
		}),
	)
}
