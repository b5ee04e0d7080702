package worker_test

import (
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dossier/pkg/eventstream"
	"github.com/papercomputeco/dossier/pkg/eventstream/worker"
	"github.com/papercomputeco/dossier/pkg/registry"
	testutils "github.com/papercomputeco/dossier/pkg/utils/test"
)

func testEvent(reportID string) *eventstream.ReportCreatedEvent {
	return eventstream.NewReportCreatedEvent(
		eventstream.SourceBot,
		registry.Person{ID: "p1", Name: "Mario Rossi"},
		true,
		registry.Report{ID: reportID, PersonID: "p1", Fact: "fact", ReportedBy: "anna"},
		"new",
	)
}

var _ = Describe("Worker Pool", func() {
	var publisher *testutils.MockPublisher

	BeforeEach(func() {
		publisher = testutils.NewMockPublisher()
	})

	It("requires a publisher", func() {
		_, err := worker.NewPool(&worker.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("publishes every queued event before Close returns", func() {
		wp, err := worker.NewPool(&worker.Config{Publisher: publisher})
		Expect(err).NotTo(HaveOccurred())

		for _, id := range []string{"r1", "r2", "r3"} {
			Expect(wp.Enqueue(worker.Job{Event: testEvent(id)})).To(BeTrue())
		}
		wp.Close()

		ids := []string{}
		for _, e := range publisher.Events() {
			ids = append(ids, e.Report.ID)
		}
		Expect(ids).To(ConsistOf("r1", "r2", "r3"))
	})

	It("drops jobs after Close", func() {
		wp, err := worker.NewPool(&worker.Config{Publisher: publisher})
		Expect(err).NotTo(HaveOccurred())
		wp.Close()
		wp.Close()

		Expect(wp.Enqueue(worker.Job{Event: testEvent("late")})).To(BeFalse())
	})

	It("drops jobs without an event", func() {
		wp, err := worker.NewPool(&worker.Config{Publisher: publisher})
		Expect(err).NotTo(HaveOccurred())
		defer wp.Close()

		Expect(wp.Enqueue(worker.Job{})).To(BeFalse())
	})

	It("reports publish failures without stopping", func() {
		publisher.Fail = true
		var failures atomic.Int32

		wp, err := worker.NewPool(&worker.Config{
			Publisher:  publisher,
			NumWorkers: 1,
			OnResult: func(_ worker.Job, err error) {
				if err != nil {
					failures.Add(1)
				}
			},
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(wp.Enqueue(worker.Job{Event: testEvent("r1")})).To(BeTrue())
		Expect(wp.Enqueue(worker.Job{Event: testEvent("r2")})).To(BeTrue())
		wp.Close()

		Expect(failures.Load()).To(Equal(int32(2)))
		Expect(publisher.Events()).To(BeEmpty())
	})
})
