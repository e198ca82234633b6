package inspect

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/metrics"
)

type mailer struct{ transport any }

func newMailer(args ...any) (any, error) { return &mailer{transport: args[0]}, nil }

var _ = Describe("Inspector", func() {
	var (
		c         *container.Container
		collector *metrics.Collector
		handler   http.Handler
	)

	BeforeEach(func() {
		collector = metrics.NewCollector("container")
		c = container.New(container.WithObserver(collector))
		Expect(c.SetParameter("mailer.transport", "sendmail")).To(Succeed())
		c.Define("mailer", newMailer).
			AddArgument(container.Value("%mailer.transport%")).
			AddTag("mail")
		Expect(c.Alias("mailer.default", "mailer")).To(Succeed())

		handler = New(c, WithCollector(collector)).Routes()
	})

	Describe("GET /health", func() {
		It("reports counts and freeze state", func() {
			rec := performRequest(handler, "/health")

			Expect(rec.Code).To(Equal(http.StatusOK))
			data := decodeEnvelope(rec)["data"].(map[string]any)
			Expect(data["status"]).To(Equal("ok"))
			Expect(data["frozen"]).To(BeFalse())
			Expect(data["services"]).To(BeNumerically("==", 2))
			Expect(data["parameters"]).To(BeNumerically("==", 1))
		})
	})

	Describe("GET /services", func() {
		It("lists every definition sorted by id", func() {
			rec := performRequest(handler, "/services")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

			data := decodeEnvelope(rec)["data"].([]any)
			Expect(data).To(HaveLen(2))
			first := data[0].(map[string]any)
			Expect(first["id"]).To(Equal("mailer"))
			Expect(first["lifetime"]).To(Equal("shared"))
			Expect(first["tags"]).To(ConsistOf("mail"))
			Expect(first["aliases"]).To(ConsistOf("mailer.default"))
			Expect(first["built"]).To(BeFalse())
			Expect(data[1].(map[string]any)["id"]).To(Equal(container.SelfID))
		})

		It("reports built services", func() {
			_, err := c.Get("mailer")
			Expect(err).NotTo(HaveOccurred())

			rec := performRequest(handler, "/services/mailer")
			data := decodeEnvelope(rec)["data"].(map[string]any)
			Expect(data["built"]).To(BeTrue())
		})
	})

	Describe("GET /services/{id}", func() {
		It("follows aliases", func() {
			rec := performRequest(handler, "/services/mailer.default")

			Expect(rec.Code).To(Equal(http.StatusOK))
			data := decodeEnvelope(rec)["data"].(map[string]any)
			Expect(data["id"]).To(Equal("mailer"))
			Expect(data["arguments"]).To(ConsistOf("%mailer.transport%"))
		})

		It("returns 404 for unknown ids", func() {
			rec := performRequest(handler, "/services/ghost")

			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(decodeEnvelope(rec)["message"]).To(ContainSubstring("service not found"))
		})
	})

	Describe("GET /parameters", func() {
		It("returns raw parameters", func() {
			rec := performRequest(handler, "/parameters")

			Expect(rec.Code).To(Equal(http.StatusOK))
			data := decodeEnvelope(rec)["data"].(map[string]any)
			Expect(data).To(HaveKeyWithValue("mailer.transport", "sendmail"))
		})
	})

	Describe("GET /dump", func() {
		It("serves the YAML dump", func() {
			rec := performRequest(handler, "/dump")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/yaml"))

			var doc map[string]any
			Expect(yaml.Unmarshal(rec.Body.Bytes(), &doc)).To(Succeed())
			Expect(doc).To(HaveKey("services"))
			Expect(doc["parameters"]).To(HaveKeyWithValue("mailer.transport", "sendmail"))
		})
	})

	Describe("GET /metrics", func() {
		It("exposes resolution counters", func() {
			for range 2 {
				_, err := c.Get("mailer")
				Expect(err).NotTo(HaveOccurred())
			}

			rec := performRequest(handler, "/metrics")

			Expect(rec.Code).To(Equal(http.StatusOK))
			body := rec.Body.String()
			Expect(body).To(ContainSubstring(`container_resolutions_total{lifetime="shared",result="built",service="mailer"} 1`))
			Expect(body).To(ContainSubstring(`container_resolutions_total{lifetime="shared",result="cached",service="mailer"} 1`))
		})

		It("is not mounted without a collector", func() {
			rec := performRequest(New(c).Routes(), "/metrics")
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("RequestLogger", func() {
		It("logs one entry per request", func() {
			core, logs := observer.New(zap.InfoLevel)
			h := New(c, WithLogger(zap.New(core))).Routes()

			performRequest(h, "/services/ghost")

			Expect(logs.FilterMessage("request").Len()).To(Equal(1))
			entry := logs.FilterMessage("request").All()[0]
			Expect(entry.ContextMap()).To(HaveKeyWithValue("status", int64(http.StatusNotFound)))
			Expect(entry.ContextMap()).To(HaveKeyWithValue("path", "/services/ghost"))
		})
	})

	Describe("Server", func() {
		It("serves until the context is cancelled", func() {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				done <- NewServer(ln.Addr().String(), New(c)).Serve(ctx, ln)
			}()

			url := fmt.Sprintf("http://%s/health", ln.Addr().String())
			Eventually(func() (int, error) {
				resp, err := http.Get(url)
				if err != nil {
					return 0, err
				}
				defer resp.Body.Close()
				_, _ = io.Copy(io.Discard, resp.Body)
				return resp.StatusCode, nil
			}).WithTimeout(2 * time.Second).Should(Equal(http.StatusOK))

			cancel()
			Eventually(done).WithTimeout(5 * time.Second).Should(Receive(BeNil()))
		})
	})
})

var _ = DescribeTable("StatusFor",
	func(err error, want int) {
		Expect(StatusFor(err)).To(Equal(want))
	},
	Entry("no error", nil, http.StatusOK),
	Entry("missing service", fmt.Errorf("wrapped: %w", container.ErrServiceNotFound), http.StatusNotFound),
	Entry("missing parameter", container.ErrParameterNotFound, http.StatusNotFound),
	Entry("malformed placeholder", container.ErrMalformedPlaceholder, http.StatusBadRequest),
	Entry("build failure", &container.ConstructionError{ServiceID: "mailer", Err: io.EOF}, http.StatusInternalServerError),
)
