package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/pkg/bot"
	"github.com/papercomputeco/dossier/pkg/metrics"
	"github.com/papercomputeco/dossier/pkg/registry"
	testutils "github.com/papercomputeco/dossier/pkg/utils/test"
)

var _ = Describe("Server", func() {
	var (
		ctx       context.Context
		persister *testutils.MockPersister
		reg       *registry.Registry
		server    *Server
		gateway   *testutils.MockGateway
		m         *metrics.Metrics
	)

	BeforeEach(func() {
		ctx = context.Background()
		persister = testutils.NewMockPersister(registry.Snapshot{})

		var err error
		reg, err = registry.New(ctx, persister)
		Expect(err).NotTo(HaveOccurred())

		gateway = testutils.NewMockGateway()
		m = metrics.New()
		service := bot.NewService(reg, bot.WithMetrics(m))
		server = NewServer(Config{ListenAddr: ":0"}, service, zap.NewNop(), WithStats(gateway), WithMetrics(m))
	})

	do := func(method, path string, body any) (*http.Response, []byte) {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(data)
		}

		req, err := http.NewRequest(method, path, reader)
		Expect(err).NotTo(HaveOccurred())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())

		respBody, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp, respBody
	}

	seed := func(name string, facts ...string) registry.Person {
		p, err := reg.CreatePerson(ctx, name)
		Expect(err).NotTo(HaveOccurred())
		for _, f := range facts {
			_, err := reg.CreateReport(ctx, p.ID, f, "seed")
			Expect(err).NotTo(HaveOccurred())
		}
		return p
	}

	Describe("GET /ping", func() {
		It("returns pong", func() {
			resp, body := do(http.MethodGet, "/ping", nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(string(body)).To(Equal(`"pong"`))
		})
	})

	Describe("GET /api/people", func() {
		It("returns an empty list", func() {
			resp, body := do(http.MethodGet, "/api/people", nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(string(body)).To(Equal("[]"))
		})

		It("returns people with their reports", func() {
			seed("Mario Rossi (2A)", "plays chess", "likes jazz")
			seed("Giulia Bianchi")

			_, body := do(http.MethodGet, "/api/people", nil)

			var people []registry.PersonWithReports
			Expect(json.Unmarshal(body, &people)).To(Succeed())
			Expect(people).To(HaveLen(2))
			Expect(people[0].Name).To(Equal("Mario Rossi (2A)"))
			Expect(people[0].Reports).To(HaveLen(2))
			Expect(people[0].Reports[0].Fact).To(Equal("plays chess"))
			Expect(people[1].Reports).To(BeEmpty())
		})
	})

	Describe("GET /api/people/:name", func() {
		It("returns the person by escaped name", func() {
			seed("Mario Rossi (2A)", "plays chess")

			resp, body := do(http.MethodGet, "/api/people/mario%20rossi%20%282A%29", nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var person registry.PersonWithReports
			Expect(json.Unmarshal(body, &person)).To(Succeed())
			Expect(person.Name).To(Equal("Mario Rossi (2A)"))
			Expect(person.Reports).To(HaveLen(1))
		})

		It("returns 404 for an unknown person", func() {
			resp, body := do(http.MethodGet, "/api/people/Nobody%20Here", nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
			Expect(string(body)).To(MatchJSON(`{"message":"Person not found"}`))
		})

		It("returns 400 for a blank name", func() {
			resp, body := do(http.MethodGet, "/api/people/%20%20", nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
			Expect(string(body)).To(MatchJSON(`{"error":"name is required"}`))
		})
	})

	Describe("POST /api/reports", func() {
		It("creates the person and the report", func() {
			resp, body := do(http.MethodPost, "/api/reports", CreateReportRequest{
				PersonName: "Luca Verdi",
				Fact:       "collects stamps",
				ReportedBy: "dashboard-user",
			})
			Expect(resp.StatusCode).To(Equal(fiber.StatusCreated))

			var result CreateReportResponse
			Expect(json.Unmarshal(body, &result)).To(Succeed())
			Expect(result.Message).To(Equal("Report created successfully"))
			Expect(result.Person.Name).To(Equal("Luca Verdi"))
			Expect(result.Report.PersonID).To(Equal(result.Person.ID))
			Expect(result.Report.ReportedBy).To(Equal("dashboard-user"))
			Expect(result.Warning).To(BeEmpty())

			people, reports := reg.Count()
			Expect(people).To(Equal(1))
			Expect(reports).To(Equal(1))
		})

		It("reuses a person matched by exact name", func() {
			existing := seed("Mario Rossi (2A)")

			_, body := do(http.MethodPost, "/api/reports", CreateReportRequest{
				PersonName: "mario rossi (2a)",
				Fact:       "plays chess",
				ReportedBy: "admin",
			})

			var result CreateReportResponse
			Expect(json.Unmarshal(body, &result)).To(Succeed())
			Expect(result.Person.ID).To(Equal(existing.ID))
		})

		It("reuses a person matched by name without class suffix", func() {
			existing := seed("Mario Rossi")

			_, body := do(http.MethodPost, "/api/reports", CreateReportRequest{
				PersonName: "Mario Rossi (3B)",
				Fact:       "plays chess",
				ReportedBy: "admin",
			})

			var result CreateReportResponse
			Expect(json.Unmarshal(body, &result)).To(Succeed())
			Expect(result.Person.ID).To(Equal(existing.ID))

			people, _ := reg.Count()
			Expect(people).To(Equal(1))
		})

		DescribeTable("rejects missing fields",
			func(req CreateReportRequest) {
				resp, body := do(http.MethodPost, "/api/reports", req)
				Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
				Expect(string(body)).To(MatchJSON(`{"error":"personName, fact, and reportedBy are required"}`))

				people, reports := reg.Count()
				Expect(people).To(BeZero())
				Expect(reports).To(BeZero())
			},
			Entry("person name", CreateReportRequest{Fact: "f", ReportedBy: "r"}),
			Entry("fact", CreateReportRequest{PersonName: "Mario Rossi", ReportedBy: "r"}),
			Entry("reporter", CreateReportRequest{PersonName: "Mario Rossi", Fact: "f"}),
			Entry("blank fact", CreateReportRequest{PersonName: "Mario Rossi", Fact: "  ", ReportedBy: "r"}),
		)

		It("returns 400 for a malformed body", func() {
			req, err := http.NewRequest(http.MethodPost, "/api/reports", bytes.NewReader([]byte("{")))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("still returns 201 with a warning when storage fails", func() {
			persister.SetFailSave(true)

			resp, body := do(http.MethodPost, "/api/reports", CreateReportRequest{
				PersonName: "Luca Verdi",
				Fact:       "collects stamps",
				ReportedBy: "admin",
			})
			Expect(resp.StatusCode).To(Equal(fiber.StatusCreated))

			var result CreateReportResponse
			Expect(json.Unmarshal(body, &result)).To(Succeed())
			Expect(result.Warning).To(ContainSubstring("mock persister failure"))
		})
	})

	Describe("GET /api/reports", func() {
		It("returns every report", func() {
			seed("Mario Rossi", "a", "b")
			seed("Giulia Bianchi", "c")

			_, body := do(http.MethodGet, "/api/reports", nil)

			var reports []registry.Report
			Expect(json.Unmarshal(body, &reports)).To(Succeed())
			Expect(reports).To(HaveLen(3))
		})
	})

	Describe("DELETE /api/people/:id", func() {
		It("removes the person and their reports", func() {
			p := seed("Mario Rossi", "a", "b")
			seed("Giulia Bianchi", "c")

			resp, body := do(http.MethodDelete, "/api/people/"+p.ID, nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(string(body)).To(MatchJSON(`{"message":"Person and all reports deleted successfully"}`))

			people, reports := reg.Count()
			Expect(people).To(Equal(1))
			Expect(reports).To(Equal(1))
		})

		It("returns 404 for an unknown id", func() {
			resp, body := do(http.MethodDelete, "/api/people/missing", nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
			Expect(string(body)).To(MatchJSON(`{"error":"Person not found"}`))
		})
	})

	Describe("DELETE /api/reports/:id", func() {
		It("removes the report", func() {
			p := seed("Mario Rossi", "a")
			reports := reg.ReportsFor(p.ID)

			resp, body := do(http.MethodDelete, "/api/reports/"+reports[0].ID, nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(string(body)).To(MatchJSON(`{"message":"Report deleted successfully"}`))
			Expect(reg.ReportsFor(p.ID)).To(BeEmpty())
		})

		It("returns 404 for an unknown id", func() {
			resp, body := do(http.MethodDelete, "/api/reports/missing", nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
			Expect(string(body)).To(MatchJSON(`{"error":"Report not found"}`))
		})
	})

	Describe("GET /api/bot/stats", func() {
		It("returns the gateway stats", func() {
			resp, body := do(http.MethodGet, "/api/bot/stats", nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(string(body)).To(MatchJSON(`{"isOnline":true,"serverCount":1,"userCount":3}`))
		})

		It("returns 503 without a bot", func() {
			bare := NewServer(Config{}, bot.NewService(reg), nil)

			req, err := http.NewRequest(http.MethodGet, "/api/bot/stats", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := bare.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusServiceUnavailable))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(MatchJSON(`{"message":"Bot not available","isOnline":false,"serverCount":0,"userCount":0}`))
		})
	})

	Describe("GET /metrics", func() {
		It("exposes report counters", func() {
			do(http.MethodPost, "/api/reports", CreateReportRequest{
				PersonName: "Luca Verdi",
				Fact:       "collects stamps",
				ReportedBy: "admin",
			})

			resp, body := do(http.MethodGet, "/metrics", nil)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(string(body)).To(ContainSubstring(`dossier_reports_created_total{source="dashboard"} 1`))
		})

		It("is not mounted without metrics", func() {
			bare := NewServer(Config{}, bot.NewService(reg), nil)

			req, err := http.NewRequest(http.MethodGet, "/metrics", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := bare.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})
})
