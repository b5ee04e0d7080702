package metrics_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/papercomputeco/dossier/pkg/metrics"
)

var _ = Describe("Metrics", func() {
	var m *metrics.Metrics

	BeforeEach(func() {
		m = metrics.New()
	})

	It("can be created more than once", func() {
		Expect(func() { metrics.New() }).NotTo(Panic())
	})

	It("counts people only when they were created", func() {
		m.IncrementReportCreated("bot", true)
		m.IncrementReportCreated("bot", false)
		m.IncrementReportCreated("dashboard", false)

		Expect(testutil.ToFloat64(m.ReportsCreated.WithLabelValues("bot"))).To(Equal(2.0))
		Expect(testutil.ToFloat64(m.ReportsCreated.WithLabelValues("dashboard"))).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.PeopleCreated.WithLabelValues("bot"))).To(Equal(1.0))
	})

	It("splits publish results", func() {
		m.RecordPublish(nil)
		m.RecordPublish(errors.New("down"))
		m.RecordPublish(nil)

		Expect(testutil.ToFloat64(m.EventsPublished)).To(Equal(2.0))
		Expect(testutil.ToFloat64(m.EventPublishFailures)).To(Equal(1.0))
	})

	It("exposes everything through its registry", func() {
		m.RecordConfirmation("committed")
		m.RecordCommandError("report", "invalid_format")

		families, err := m.Registry.Gather()
		Expect(err).NotTo(HaveOccurred())

		names := []string{}
		for _, f := range families {
			names = append(names, f.GetName())
		}
		Expect(names).To(ContainElements(
			"dossier_confirmations_total",
			"dossier_command_errors_total",
			"go_goroutines",
		))
	})
})
