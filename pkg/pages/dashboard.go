package pages

import (
	"slices"
	"strconv"

	"heatmon/pkg/assets"
	"heatmon/pkg/render"
	"heatmon/pkg/sysinfo"
	"heatmon/pkg/topics"
)

// debugBytesPerLine ist die Zeilenbreite des Hexdumps
const debugBytesPerLine = 32

func (p *Pages) wifiQuality() int {
	if p.d.Station == nil {
		return -1
	}
	return p.d.Station.Quality()
}

func (p *Pages) freeMemory() int {
	if p.d.Memory == nil {
		return sysinfo.NewMemory(nil).FreePercent()
	}
	return p.d.Memory.FreePercent()
}

func (p *Pages) uptime() string {
	if p.d.Clock == nil {
		return sysinfo.FormatUptime(0)
	}
	return sysinfo.FormatUptime(p.d.Clock.Uptime())
}

func (p *Pages) dashboard(*render.Exchange) *render.Stream {
	rec := p.d.Settings.Current()

	return render.NewStream(
		render.Text(assets.Header, assets.CSS, assets.BodyStart, assets.Root1),
		render.Chunk(func(w *render.Writer) {
			w.HTML(p.d.Version)
			w.String(assets.Root2)
			if rec.Use1Wire {
				w.String(assets.TabDallas)
			}
			if rec.UseS0 {
				w.String(assets.TabS0)
			}
			w.String(assets.TabConsole)
		}),
		render.Chunk(func(w *render.Writer) {
			w.String(assets.EndDiv)
			w.String(assets.StatusWifi)
			w.Int(p.wifiQuality())
			w.String(assets.StatusMemory)
			w.Int(p.freeMemory())
			w.String(assets.StatusReceived)
			w.Int(p.d.Status.ReadPercentage())
		}),
		render.Chunk(func(w *render.Writer) {
			w.String(assets.StatusReconnects)
			w.Int(p.d.Status.MQTTReconnects())
			w.String(assets.StatusUptime)
			w.String(p.uptime())
		}),
		render.Chunk(func(w *render.Writer) {
			w.String(assets.EndDiv)
			w.String(assets.ValuesHeatpump)
			if rec.Use1Wire {
				w.String(assets.ValuesDallas)
			}
			if rec.UseS0 {
				w.String(assets.ValuesS0)
			}
			w.String(assets.Console)
			w.String(assets.MenuJS)
		}),
		render.Text(assets.RefreshJS, assets.SelectJS, assets.WebsocketJS, assets.Footer),
	)
}

// topicRow schreibt eine Tabellenzeile, Raw-Topics zeigen die Einheit
func (p *Pages) topicRow(w *render.Writer, i int) {
	t := p.d.Topics.Topic(i)
	v := p.d.Topics.Value(i)
	w.String("<tr><td>")
	w.String(topics.ID(i))
	w.String("</td><td>")
	w.HTML(t.Name)
	w.String("</td><td>")
	w.HTML(v)
	w.String("</td><td>")
	w.HTML(t.Table.Describe(v))
	w.String("</td></tr>")
}

func (p *Pages) topicJSON(w *render.Writer, i int) {
	t := p.d.Topics.Topic(i)
	v := p.d.Topics.Value(i)
	w.String(`{"Topic":`)
	w.JSON(topics.ID(i))
	w.String(`,"Name":`)
	w.JSON(t.Name)
	w.String(`,"Value":`)
	w.JSON(v)
	w.String(`,"Description":`)
	w.JSON(t.Table.Describe(v))
	w.String("}")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (p *Pages) dallasRow(w *render.Writer, i int) {
	s := p.d.Dallas.Sensor(i)
	w.String("<tr><td>")
	w.HTML(s.Address)
	w.String("</td><td>")
	w.String(formatFloat(s.Temperature))
	w.String("</td></tr>")
}

func (p *Pages) dallasJSON(w *render.Writer, i int) {
	s := p.d.Dallas.Sensor(i)
	w.String(`{"Sensor":`)
	w.JSON(s.Address)
	w.String(`,"Temperature":`)
	w.JSON(formatFloat(s.Temperature))
	w.String("}")
}

func (p *Pages) s0Row(w *render.Writer, i int) {
	m := p.d.S0.Meter(i)
	w.String("<tr><td>")
	w.Int(m.Port)
	w.String("</td><td>")
	w.String(formatFloat(m.Watt))
	w.String("</td><td>")
	w.String(formatFloat(m.Watthour))
	w.String("</td><td>")
	w.String(formatFloat(m.WatthourTotal))
	w.String("</td></tr>")
}

func (p *Pages) s0JSON(w *render.Writer, i int) {
	m := p.d.S0.Meter(i)
	w.String(`{"S0 port":`)
	w.JSON(strconv.Itoa(m.Port))
	w.String(`,"Watt":`)
	w.JSON(formatFloat(m.Watt))
	w.String(`,"Watthour":`)
	w.JSON(formatFloat(m.Watthour))
	w.String(`,"WatthourTotal":`)
	w.JSON(formatFloat(m.WatthourTotal))
	w.String("}")
}

func (p *Pages) tableRefresh(*render.Exchange) *render.Stream {
	return render.NewStream(render.Paged(p.d.Topics.Len(), "", p.topicRow))
}

func (p *Pages) tableDallas(*render.Exchange) *render.Stream {
	return render.NewStream(render.Paged(p.d.Dallas.Len(), "", p.dallasRow))
}

func (p *Pages) tableS0(*render.Exchange) *render.Stream {
	return render.NewStream(render.Paged(p.d.S0.Len(), "", p.s0Row))
}

func (p *Pages) jsonOutput(*render.Exchange) *render.Stream {
	return render.NewStream(
		render.Text(`{"heatpump":[`),
		render.Paged(p.d.Topics.Len(), ",", p.topicJSON),
		render.Text(`],"1wire":[`),
		render.Paged(p.d.Dallas.Len(), ",", p.dallasJSON),
		render.Text(`],"s0":[`),
		render.Paged(p.d.S0.Len(), ",", p.s0JSON),
		render.Text("]}"),
	)
}

// debug gibt den letzten Rohframe als Hexdump in Zeilen zu 32 Bytes aus
func (p *Pages) debug(*render.Exchange) *render.Stream {
	// Kopie, der Frame kann sich zwischen zwei Aufrufen ändern
	frame := slices.Clone(p.d.Topics.Frame())
	lines := (len(frame) + debugBytesPerLine - 1) / debugBytesPerLine

	const hexDigits = "0123456789ABCDEF"
	return render.NewStream(render.Paged(lines, "", func(w *render.Writer, line int) {
		start := line * debugBytesPerLine
		end := min(start+debugBytesPerLine, len(frame))
		buf := make([]byte, 0, len("data: ")+3*debugBytesPerLine+1)
		buf = append(buf, "data: "...)
		for _, b := range frame[start:end] {
			buf = append(buf, hexDigits[b>>4], hexDigits[b&0x0f], ' ')
		}
		buf = append(buf, '\n')
		w.Bytes(buf)
	}))
}
