package crash_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"heatmon/pkg/crash"
)

func TestCrash(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Crash Suite")
}

var _ = Describe("Crash", func() {
	var (
		dir   string
		codes chan int
		prev  func(int)
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		crash.SetCrashLogFile(filepath.Join(dir, "crash.log"))
		crash.SetSentinelFile(filepath.Join(dir, "running"))
		codes = make(chan int, 4)
		prev = crash.SetRestartFunc(func(code int) { codes <- code })
	})

	AfterEach(func() {
		crash.SetRestartFunc(prev)
	})

	It("should write a report and restart on Fatal", func() {
		crash.Fatal("form", errors.New("budget exhausted"))

		Expect(codes).To(Receive(Equal(crash.ExitRestart)))
		data, err := os.ReadFile(filepath.Join(dir, "crash.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("fatal: form: budget exhausted"))
	})

	It("should restart without a report", func() {
		crash.Restart("reboot requested")

		Expect(codes).To(Receive(Equal(crash.ExitRestart)))
		_, err := os.Stat(filepath.Join(dir, "crash.log"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("should catch panics of wrapped goroutines", func() {
		crash.SafeGo("worker", func() { panic("boom") })

		Eventually(codes).Should(Receive(Equal(1)))
		data, err := os.ReadFile(filepath.Join(dir, "crash.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("goroutine 'worker': boom"))
	})

	It("should recover without exiting", func() {
		func() {
			defer crash.RecoverAndLog("task")
			panic("soft")
		}()
		Consistently(codes, 50*time.Millisecond).ShouldNot(Receive())
	})

	It("should detect an unclean previous run", func() {
		_, unclean := crash.StartSentinel()
		Expect(unclean).To(BeFalse())

		previous, unclean := crash.StartSentinel()
		Expect(unclean).To(BeTrue())
		Expect(previous).To(ContainSubstring("PID"))

		crash.StopSentinel()
		_, unclean = crash.StartSentinel()
		Expect(unclean).To(BeFalse())
		crash.StopSentinel()
	})

	It("should format byte sizes", func() {
		Expect(crash.FormatBytes(512)).To(Equal("512 B"))
		Expect(crash.FormatBytes(1536)).To(Equal("1.5 KB"))
		Expect(crash.FormatBytes(3 << 20)).To(Equal("3.0 MB"))
	})
})
