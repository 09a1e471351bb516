package form_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"heatmon/pkg/form"
)

func TestForm(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Form Suite")
}

// feed schreibt body in Stücken der Größe n in den Decoder
func feed(dec *form.Decoder, body string, n int) error {
	for len(body) > 0 {
		k := n
		if k > len(body) {
			k = len(body)
		}
		if _, err := dec.Write([]byte(body[:k])); err != nil {
			return err
		}
		body = body[k:]
	}
	return dec.Close()
}

var _ = Describe("Fragments", func() {
	var frags *form.Fragments

	BeforeEach(func() {
		frags = form.New(form.Limits{})
	})

	It("should insert a new field on first delivery", func() {
		Expect(frags.Accept("mqtt_server", []byte("broker.local"))).To(Succeed())

		v, ok := frags.Lookup("mqtt_server")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("broker.local"))
		Expect(frags.Len()).To(Equal(1))
	})

	It("should append later deliveries in arrival order", func() {
		Expect(frags.Accept("wifi_password", []byte("sec"))).To(Succeed())
		Expect(frags.Accept("wifi_hostname", []byte("pump"))).To(Succeed())
		Expect(frags.Accept("wifi_password", []byte("ret"))).To(Succeed())
		Expect(frags.Accept("wifi_password", []byte("123"))).To(Succeed())

		v, _ := frags.Lookup("wifi_password")
		Expect(v).To(Equal("secret123"))
		Expect(frags.Len()).To(Equal(2))
	})

	It("should keep a field with an empty value as present", func() {
		Expect(frags.Accept("use_s0", nil)).To(Succeed())

		v, ok := frags.Lookup("use_s0")
		Expect(ok).To(BeTrue())
		Expect(v).To(BeEmpty())
	})

	It("should visit fields in first-arrival order", func() {
		_ = frags.Accept("b", []byte("1"))
		_ = frags.Accept("a", []byte("2"))
		_ = frags.Accept("b", []byte("3"))

		var names []string
		frags.Each(func(name, value string) { names = append(names, name+"="+value) })
		Expect(names).To(Equal([]string{"b=13", "a=2"}))
	})

	It("should forget everything on Reset", func() {
		_ = frags.Accept("a", []byte("1"))
		frags.Reset()

		_, ok := frags.Lookup("a")
		Expect(ok).To(BeFalse())
		Expect(frags.Len()).To(BeZero())
		Expect(frags.Size()).To(BeZero())
	})

	Context("Budget", func() {
		It("sollte ErrExhausted bei zu vielen Bytes liefern", func() {
			small := form.New(form.Limits{MaxFields: 4, MaxBytes: 10})
			Expect(small.Accept("abc", []byte("1234567"))).To(Succeed())
			Expect(small.Accept("abc", []byte("x"))).To(MatchError(form.ErrExhausted))
		})

		It("sollte ErrExhausted bei zu vielen Feldern liefern", func() {
			small := form.New(form.Limits{MaxFields: 1, MaxBytes: 100})
			Expect(small.Accept("a", nil)).To(Succeed())
			Expect(small.Accept("b", nil)).To(MatchError(form.ErrExhausted))
			// Anhängen an ein bestehendes Feld bleibt erlaubt
			Expect(small.Accept("a", []byte("ok"))).To(Succeed())
		})
	})
})

var _ = Describe("Decoder", func() {
	var frags *form.Fragments

	BeforeEach(func() {
		frags = form.New(form.Limits{})
	})

	lookup := func(name string) string {
		v, ok := frags.Lookup(name)
		Expect(ok).To(BeTrue(), "field %s missing", name)
		return v
	}

	It("should decode a complete body in one write", func() {
		Expect(feed(form.NewDecoder(frags), "wifi_ssid=Home&mqtt_port=1883&use_s0=enabled", 1024)).To(Succeed())

		Expect(lookup("wifi_ssid")).To(Equal("Home"))
		Expect(lookup("mqtt_port")).To(Equal("1883"))
		Expect(lookup("use_s0")).To(Equal("enabled"))
	})

	It("should unescape plus and percent sequences", func() {
		Expect(feed(form.NewDecoder(frags), "mqtt_topic_base=heat+pump%2Fbase&x=100%25", 1024)).To(Succeed())

		Expect(lookup("mqtt_topic_base")).To(Equal("heat pump/base"))
		Expect(lookup("x")).To(Equal("100%"))
	})

	DescribeTable("should produce the same values for every read size",
		func(size int) {
			body := "wifi_ssid=My%20Net&wifi_password=s%C3%A9cret+123&waitTime=30&flag"
			Expect(feed(form.NewDecoder(frags), body, size)).To(Succeed())

			Expect(lookup("wifi_ssid")).To(Equal("My Net"))
			Expect(lookup("wifi_password")).To(Equal("sécret 123"))
			Expect(lookup("waitTime")).To(Equal("30"))
			Expect(lookup("flag")).To(BeEmpty())
			Expect(frags.Len()).To(Equal(4))
		},
		Entry("1 byte", 1),
		Entry("2 bytes", 2),
		Entry("3 bytes", 3),
		Entry("7 bytes", 7),
		Entry("whole body", 4096),
	)

	It("should pass malformed escapes through literally", func() {
		Expect(feed(form.NewDecoder(frags), "a=%zz&b=%4", 2)).To(Succeed())

		Expect(lookup("a")).To(Equal("%zz"))
		Expect(lookup("b")).To(Equal("%4"))
	})

	It("should stop with ErrExhausted when the budget is exceeded", func() {
		small := form.New(form.Limits{MaxFields: 8, MaxBytes: 16})
		err := feed(form.NewDecoder(small), "wifi_password=aaaaaaaaaaaaaaaaaaaaaaa", 4)
		Expect(err).To(MatchError(form.ErrExhausted))
	})
})
