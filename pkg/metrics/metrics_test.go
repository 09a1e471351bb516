package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"heatmon/pkg/metrics"
)

func TestMetrics(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Metrics Suite")
}

var _ = Describe("Collector", func() {
	var (
		reg *prometheus.Registry
		c   *metrics.Collector
	)

	BeforeEach(func() {
		reg = prometheus.NewRegistry()
		var err error
		c, err = metrics.New(reg)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should count chunks and bytes per route", func() {
		c.Chunk("/json", 120)
		c.Chunk("/json", 30)
		c.Chunk("/", 10)

		Expect(testutil.ToFloat64(c.Chunks.WithLabelValues("/json"))).To(Equal(2.0))
		Expect(testutil.ToFloat64(c.Bytes.WithLabelValues("/json"))).To(Equal(150.0))
		Expect(testutil.ToFloat64(c.Chunks.WithLabelValues("/"))).To(Equal(1.0))
	})

	It("should count outcomes, scans and rejected forms", func() {
		c.Outcome("saved_ok")
		c.Outcome("saved_ok")
		c.Outcome("password_mismatch")
		c.ScanServed(7)
		c.FormExhausted()

		Expect(testutil.ToFloat64(c.Outcomes.WithLabelValues("saved_ok"))).To(Equal(2.0))
		Expect(testutil.ToFloat64(c.Outcomes.WithLabelValues("password_mismatch"))).To(Equal(1.0))
		Expect(testutil.ToFloat64(c.Networks)).To(Equal(7.0))
		Expect(testutil.ToFloat64(c.Scans)).To(Equal(1.0))
		Expect(testutil.ToFloat64(c.Exhausted)).To(Equal(1.0))
	})

	It("should refuse a second registration on the same registry", func() {
		_, err := metrics.New(reg)
		Expect(err).To(HaveOccurred())
	})

	It("should expose the registry over HTTP", func() {
		c.Outcome("reconnect_required")

		rr := httptest.NewRecorder()
		c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		Expect(rr.Code).To(Equal(http.StatusOK))
		Expect(rr.Body.String()).To(ContainSubstring(`heatmon_settings_outcomes_total{outcome="reconnect_required"} 1`))
	})

	It("should ignore calls on a nil collector", func() {
		var nilCollector *metrics.Collector
		Expect(func() {
			nilCollector.Chunk("/", 1)
			nilCollector.Outcome("saved_ok")
			nilCollector.ScanServed(1)
			nilCollector.FormExhausted()
		}).NotTo(Panic())
	})
})
