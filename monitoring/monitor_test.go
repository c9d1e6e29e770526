package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ipcscan/scanning"
)

var _ = Describe("Monitor", func() {
	var (
		monitor *Monitor
		scanner *scanning.Scanner
		bar     *ProgressBar
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		monitor.Handler().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		monitor = NewMonitor()
		bar = monitor.CreateProgressBar("scan", 20)
		scanner = scanning.MakeBuilder().
			WithHook(NewProgressHook(bar)).
			Build()
		monitor.RegisterScanner(scanner)
	})

	It("should fall back to a random port for reserved ports", func() {
		monitor.WithPortNumber(80)
		Expect(monitor.portNumber).To(Equal(0))

		monitor.WithPortNumber(8080)
		Expect(monitor.portNumber).To(Equal(8080))
	})

	It("should advance the progress bar by bytes read", func() {
		_, err := scanner.Scan(strings.NewReader("foo\nIPC: 1.25\n"))
		Expect(err).NotTo(HaveOccurred())

		Expect(bar.Finished).To(Equal(uint64(14)))

		rec := get("/api/progress")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var bars []progressRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("scan"))
		Expect(bars[0].Total).To(Equal(uint64(20)))
		Expect(bars[0].Finished).To(Equal(uint64(14)))
	})

	It("should drop completed progress bars", func() {
		monitor.CompleteProgressBar(bar)

		rec := get("/api/progress")
		Expect(rec.Body.String()).To(Equal("[]"))
	})

	It("should report the scanner status", func() {
		_, err := scanner.Scan(strings.NewReader("IPC: 0.5\nIPC: 1.75\n"))
		Expect(err).NotTo(HaveOccurred())

		rec := get("/api/status")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var status scanning.Status
		Expect(json.Unmarshal(rec.Body.Bytes(), &status)).To(Succeed())
		Expect(status.Samples).To(Equal(2))
		Expect(status.RunningMax).To(Equal(1.75))
		Expect(status.Done).To(BeTrue())
	})

	It("should serialize a single status field", func() {
		_, err := scanner.Scan(strings.NewReader("IPC: 0.5\nIPC: 1.75\n"))
		Expect(err).NotTo(HaveOccurred())

		rec := get("/api/field/RunningMax")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("1.75"))
	})

	It("should answer 404 for an unknown field", func() {
		rec := get("/api/field/Nope")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should return a parsed CPU profile", func() {
		rec := get("/api/profile")
		if rec.Code == http.StatusConflict {
			Skip("CPU profiler already in use")
		}
		Expect(rec.Code).To(Equal(http.StatusOK))

		var prof map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &prof)).To(Succeed())
		Expect(prof).To(HaveKey("SampleType"))
		Expect(prof).To(HaveKey("Period"))
	})

	It("should answer 404 without a scanner", func() {
		monitor = NewMonitor()

		rec := get("/api/status")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should report process resources", func() {
		rec := get("/api/resource")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should refuse to open a browser before the server starts", func() {
		Expect(monitor.OpenInBrowser()).NotTo(Succeed())
	})

	It("should serve on a random port", func() {
		Expect(monitor.StartServer()).To(Succeed())
		Expect(monitor.URL()).To(HavePrefix("http://localhost:"))

		rsp, err := http.Get(monitor.URL() + "/api/progress")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})
})
