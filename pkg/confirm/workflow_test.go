package confirm_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dossier/pkg/confirm"
	testutils "github.com/papercomputeco/dossier/pkg/utils/test"
)

type awaitResult struct {
	state confirm.State
	err   error
}

var _ = Describe("Custom ids", func() {
	It("round-trips action and token", func() {
		action, token, ok := confirm.ParseCustomID(confirm.CustomID(confirm.ActionCancel, "abc"))
		Expect(ok).To(BeTrue())
		Expect(action).To(Equal(confirm.ActionCancel))
		Expect(token).To(Equal("abc"))
	})

	DescribeTable("rejects foreign ids",
		func(id string) {
			_, _, ok := confirm.ParseCustomID(id)
			Expect(ok).To(BeFalse())
		},
		Entry("bare action", "confirm_yes"),
		Entry("empty token", "confirm_yes:"),
		Entry("unknown action", "delete:abc"),
		Entry("empty", ""),
	)
})

var _ = Describe("Workflow", func() {
	var (
		clock *testutils.FakeClock
		wf    *confirm.Workflow
	)

	BeforeEach(func() {
		clock = testutils.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
		wf = confirm.New("alice", confirm.WithClock(clock), confirm.WithToken("tok"))
	})

	click := func(action confirm.Action, user string) confirm.Click {
		return confirm.Click{MessageID: "m1", CustomID: confirm.CustomID(action, "tok"), UserID: user}
	}

	It("starts idle", func() {
		Expect(wf.State()).To(Equal(confirm.StateIdle))
		Expect(wf.Deadline().IsZero()).To(BeTrue())
	})

	Describe("Begin", func() {
		It("sets a 60 second deadline", func() {
			deadline, err := wf.Begin()
			Expect(err).NotTo(HaveOccurred())
			Expect(deadline).To(Equal(clock.Now().Add(60 * time.Second)))
			Expect(wf.Deadline()).To(Equal(deadline))
			Expect(wf.State()).To(Equal(confirm.StateAwaiting))
		})

		It("honours a custom timeout", func() {
			wf = confirm.New("alice", confirm.WithClock(clock), confirm.WithTimeout(5*time.Second))
			deadline, err := wf.Begin()
			Expect(err).NotTo(HaveOccurred())
			Expect(deadline).To(Equal(clock.Now().Add(5 * time.Second)))
		})

		It("cannot be started twice", func() {
			_, err := wf.Begin()
			Expect(err).NotTo(HaveOccurred())
			_, err = wf.Begin()
			Expect(err).To(MatchError(confirm.ErrAlreadyStarted))
		})
	})

	Describe("Handle", func() {
		BeforeEach(func() {
			_, err := wf.Begin()
			Expect(err).NotTo(HaveOccurred())
		})

		It("commits on confirm from the submitter", func() {
			state, moved := wf.Handle(click(confirm.ActionConfirm, "alice"))
			Expect(moved).To(BeTrue())
			Expect(state).To(Equal(confirm.StateCommitted))
		})

		It("aborts on cancel from the submitter", func() {
			state, moved := wf.Handle(click(confirm.ActionCancel, "alice"))
			Expect(moved).To(BeTrue())
			Expect(state).To(Equal(confirm.StateAborted))
			Expect(state.Err()).To(MatchError(confirm.ErrCancelled))
		})

		It("ignores other users without touching the deadline", func() {
			deadline := wf.Deadline()
			clock.Advance(30 * time.Second)

			state, moved := wf.Handle(click(confirm.ActionConfirm, "mallory"))
			Expect(moved).To(BeFalse())
			Expect(state).To(Equal(confirm.StateAwaiting))
			Expect(wf.Deadline()).To(Equal(deadline))
		})

		It("ignores clicks for another workflow", func() {
			c := confirm.Click{CustomID: confirm.CustomID(confirm.ActionConfirm, "other"), UserID: "alice"}
			_, moved := wf.Handle(c)
			Expect(moved).To(BeFalse())
		})

		It("expires on a click at the deadline", func() {
			clock.Advance(60 * time.Second)

			state, moved := wf.Handle(click(confirm.ActionConfirm, "alice"))
			Expect(moved).To(BeTrue())
			Expect(state).To(Equal(confirm.StateExpired))
		})

		It("allows only one transition", func() {
			_, moved := wf.Handle(click(confirm.ActionCancel, "alice"))
			Expect(moved).To(BeTrue())

			state, moved := wf.Handle(click(confirm.ActionConfirm, "alice"))
			Expect(moved).To(BeFalse())
			Expect(state).To(Equal(confirm.StateAborted))

			state, moved = wf.Expire()
			Expect(moved).To(BeFalse())
			Expect(state).To(Equal(confirm.StateAborted))
		})
	})

	Describe("Await", func() {
		var (
			ctx    context.Context
			cancel context.CancelFunc
			clicks chan confirm.Click
			done   chan awaitResult
		)

		BeforeEach(func() {
			ctx, cancel = context.WithCancel(context.Background())
			DeferCleanup(cancel)
			clicks = make(chan confirm.Click)
			done = make(chan awaitResult, 1)
		})

		start := func() {
			_, err := wf.Begin()
			Expect(err).NotTo(HaveOccurred())
			go func() {
				state, err := wf.Await(ctx, clicks)
				done <- awaitResult{state: state, err: err}
			}()
			Eventually(clock.Waiters).Should(Equal(1))
		}

		It("refuses to wait before Begin", func() {
			state, err := wf.Await(ctx, clicks)
			Expect(err).To(MatchError(confirm.ErrNotStarted))
			Expect(state).To(Equal(confirm.StateIdle))
		})

		It("returns once the submitter confirms", func() {
			start()
			clicks <- click(confirm.ActionConfirm, "bob")
			clicks <- click(confirm.ActionConfirm, "alice")

			var res awaitResult
			Eventually(done).Should(Receive(&res))
			Expect(res.state).To(Equal(confirm.StateCommitted))
			Expect(res.err).NotTo(HaveOccurred())
		})

		It("returns ErrCancelled on cancel", func() {
			start()
			clicks <- click(confirm.ActionCancel, "alice")

			var res awaitResult
			Eventually(done).Should(Receive(&res))
			Expect(res.state).To(Equal(confirm.StateAborted))
			Expect(res.err).To(MatchError(confirm.ErrCancelled))
		})

		It("expires when the deadline passes in silence", func() {
			start()
			clock.Advance(59 * time.Second)
			Consistently(done, 50*time.Millisecond).ShouldNot(Receive())

			clock.Advance(time.Second)

			var res awaitResult
			Eventually(done).Should(Receive(&res))
			Expect(res.state).To(Equal(confirm.StateExpired))
			Expect(res.err).To(MatchError(confirm.ErrTimeout))
		})

		It("expires when other users are the only ones clicking", func() {
			start()
			clicks <- click(confirm.ActionConfirm, "bob")
			clicks <- click(confirm.ActionCancel, "carol")
			clock.Advance(60 * time.Second)

			var res awaitResult
			Eventually(done).Should(Receive(&res))
			Expect(res.state).To(Equal(confirm.StateExpired))
		})

		It("expires when the context is cancelled", func() {
			start()
			cancel()

			var res awaitResult
			Eventually(done).Should(Receive(&res))
			Expect(res.state).To(Equal(confirm.StateExpired))
			Expect(res.err).To(MatchError(context.Canceled))
		})

		It("keeps waiting for the timer after the click channel closes", func() {
			start()
			close(clicks)
			Consistently(done, 50*time.Millisecond).ShouldNot(Receive())

			clock.Advance(time.Minute)
			Eventually(done).Should(Receive())
			Expect(wf.State()).To(Equal(confirm.StateExpired))
		})
	})
})
