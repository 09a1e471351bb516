package render_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"heatmon/pkg/form"
	"heatmon/pkg/render"
)

func TestRender(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Render Suite")
}

// recorder ist eine Sink, die jeden Aufruf getrennt mitschreibt
type recorder struct {
	status      int
	contentType string
	headers     int
	chunks      []string
	cur         bytes.Buffer
	fail        error
}

func (r *recorder) Header(status int, contentType string) {
	r.headers++
	r.status = status
	r.contentType = contentType
}

func (r *recorder) Write(p []byte) (int, error) {
	if r.fail != nil {
		return 0, r.fail
	}
	return r.cur.Write(p)
}

// cut schließt das Stück des aktuellen Aufrufs ab
func (r *recorder) cut() {
	r.chunks = append(r.chunks, r.cur.String())
	r.cur.Reset()
}

func (r *recorder) body() string {
	return strings.Join(r.chunks, "")
}

func jsonArray(total int) render.Handler {
	return render.Func(render.ContentJSON, func(*render.Exchange) *render.Stream {
		return render.NewStream(
			render.Text("["),
			render.Paged(total, ",", func(w *render.Writer, i int) {
				w.String(`{"n":`)
				w.Int(i)
				w.String("}")
			}),
			render.Text("]"),
		)
	})
}

// drive ruft den Renderer wie der Transport auf und zählt die Body-Aufrufe
func drive(r *render.Renderer, ex *render.Exchange, rec *recorder) int {
	calls := 0
	for {
		done, err := r.Serve(ex)
		Expect(err).NotTo(HaveOccurred())
		rec.cut()
		if done {
			return calls
		}
		ex.Step++
		calls++
	}
}

var _ = Describe("Renderer", func() {
	var (
		r   *render.Renderer
		rec *recorder
	)

	BeforeEach(func() {
		r = render.New()
		rec = &recorder{}
	})

	It("should emit only status and content type in the header phase", func() {
		r.Handle("/json", jsonArray(3))
		ex := render.NewExchange("/json", rec, form.Limits{})

		done, err := r.Serve(ex)

		Expect(err).NotTo(HaveOccurred())
		Expect(done).To(BeFalse())
		Expect(rec.status).To(Equal(200))
		Expect(rec.contentType).To(Equal("application/json"))
		Expect(rec.cur.Len()).To(BeZero())
		Expect(ex.Phase).To(Equal(render.Body))
	})

	It("should fail for an unknown route", func() {
		ex := render.NewExchange("/nope", rec, form.Limits{})
		done, err := r.Serve(ex)
		Expect(done).To(BeTrue())
		Expect(errors.Is(err, render.ErrNoRoute)).To(BeTrue())
		Expect(rec.headers).To(BeZero())
	})

	DescribeTable("pagination",
		func(total int) {
			r.Handle("/json", jsonArray(total))
			ex := render.NewExchange("/json", rec, form.Limits{})

			calls := drive(r, ex, rec)

			var out []struct{ N int }
			Expect(json.Unmarshal([]byte(rec.body()), &out)).To(Succeed(), rec.body())
			Expect(out).To(HaveLen(total))
			for i, o := range out {
				Expect(o.N).To(Equal(i))
			}
			Expect(rec.body()).NotTo(ContainSubstring(",]"))

			// "[" + ceil(T/4) Seiten + "]"
			pages := (total + render.Batch - 1) / render.Batch
			Expect(calls).To(Equal(2 + pages))
			Expect(rec.chunks[len(rec.chunks)-1]).To(Equal("]"))
		},
		Entry("no elements", 0),
		Entry("one element", 1),
		Entry("exactly one batch", 4),
		Entry("one more than a batch", 5),
		Entry("many elements", 71),
	)

	It("should emit at most one batch per invocation", func() {
		r.Handle("/json", jsonArray(10))
		ex := render.NewExchange("/json", rec, form.Limits{})
		drive(r, ex, rec)

		for _, c := range rec.chunks {
			Expect(strings.Count(c, `{"n":`)).To(BeNumerically("<=", render.Batch))
		}
	})

	It("should ignore an invocation whose step did not advance", func() {
		r.Handle("/json", jsonArray(8))
		ex := render.NewExchange("/json", rec, form.Limits{})
		_, _ = r.Serve(ex)

		ex.Step++
		_, _ = r.Serve(ex)
		first := rec.cur.String()
		Expect(first).To(Equal("["))

		_, _ = r.Serve(ex)
		Expect(rec.cur.String()).To(Equal(first))
	})

	It("should emit nothing once done", func() {
		r.Handle("/json", jsonArray(2))
		ex := render.NewExchange("/json", rec, form.Limits{})
		drive(r, ex, rec)
		Expect(ex.Done()).To(BeTrue())
		before := rec.body()

		for range 3 {
			ex.Step++
			done, err := r.Serve(ex)
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
		}
		Expect(rec.cur.Len()).To(BeZero())
		Expect(rec.body()).To(Equal(before))
	})

	It("should run actions in their own invocation", func() {
		ran := 0
		r.Handle("/reboot", render.Func(render.ContentHTML, func(*render.Exchange) *render.Stream {
			return render.NewStream(render.Text("<p>bye</p>"), render.Action(func() { ran++ }))
		}))
		ex := render.NewExchange("/reboot", rec, form.Limits{})

		Expect(r.Run(ex)).To(Succeed())
		Expect(ran).To(Equal(1))
		Expect(rec.cur.String()).To(Equal("<p>bye</p>"))
	})

	It("should stop on a sink error", func() {
		rec.fail = errors.New("broken pipe")
		r.Handle("/json", jsonArray(2))
		ex := render.NewExchange("/json", rec, form.Limits{})

		err := r.Run(ex)
		Expect(err).To(MatchError(ContainSubstring("broken pipe")))
		Expect(ex.Done()).To(BeTrue())
	})

	It("should know which routes consume a form", func() {
		open := func(*render.Exchange) *render.Stream { return render.NewStream() }
		r.Handle("/save", render.Submit(render.ContentHTML, open))
		r.Handle("/show", render.Func(render.ContentJSON, open))

		Expect(r.ConsumesForm("/save")).To(BeTrue())
		Expect(r.ConsumesForm("/show")).To(BeFalse())
		Expect(r.ConsumesForm("/missing")).To(BeFalse())
	})

	It("should report produced bytes per route", func() {
		seen := map[string]int{}
		r.Observe(func(route string, n int) { seen[route] += n })
		r.Handle("/json", jsonArray(5))
		ex := render.NewExchange("/json", rec, form.Limits{})

		Expect(r.Run(ex)).To(Succeed())
		Expect(seen["/json"]).To(Equal(rec.cur.Len()))
	})
})

var _ = Describe("Stream", func() {
	It("should be restartable", func() {
		s := render.NewStream(render.Text("a"), render.Paged(5, "", func(w *render.Writer, i int) {
			w.String(strconv.Itoa(i))
		}))

		var buf bytes.Buffer
		w := render.NewWriter(&buf)
		for s.Next(w) {
		}
		Expect(buf.String()).To(Equal("a01234"))
		Expect(s.Done()).To(BeTrue())

		s.Reset()
		buf.Reset()
		for s.Next(w) {
		}
		Expect(buf.String()).To(Equal("a01234"))
	})
})

var _ = Describe("Writer", func() {
	It("should escape JSON and HTML text", func() {
		var buf bytes.Buffer
		w := render.NewWriter(&buf)
		w.JSON(`say "hi"` + "\n")
		w.String(" ")
		w.HTML("<b>&</b>")

		Expect(buf.String()).To(Equal(`"say \"hi\"\n" &lt;b&gt;&amp;&lt;/b&gt;`))
		Expect(w.Fragments()).To(Equal(3))
		Expect(w.Written()).To(Equal(buf.Len()))
	})

	It("should keep the first error", func() {
		w := render.NewWriter(failing{})
		w.String("a")
		w.Int(4)
		Expect(w.Err()).To(MatchError("closed"))
		Expect(w.Fragments()).To(Equal(1))
	})
})

type failing struct{}

func (failing) Write([]byte) (int, error) { return 0, errors.New("closed") }
