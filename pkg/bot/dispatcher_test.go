package bot_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dossier/pkg/bot"
	"github.com/papercomputeco/dossier/pkg/confirm"
	"github.com/papercomputeco/dossier/pkg/metrics"
	"github.com/papercomputeco/dossier/pkg/registry"
	testutils "github.com/papercomputeco/dossier/pkg/utils/test"
)

var _ = Describe("Dispatcher", func() {
	var (
		ctx        context.Context
		reg        *registry.Registry
		gateway    *testutils.MockGateway
		clock      *testutils.FakeClock
		dispatcher *bot.Dispatcher
	)

	alice := bot.Invocation{ID: "i1", ChannelID: "c1", UserID: "alice", UserTag: "alice#1"}
	bob := bot.Invocation{ID: "i2", ChannelID: "c1", UserID: "bob", UserTag: "bob#2"}

	BeforeEach(func() {
		ctx = context.Background()
		gateway = testutils.NewMockGateway()
		clock = testutils.NewFakeClock(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))

		var err error
		reg, err = registry.New(ctx, nil)
		Expect(err).NotTo(HaveOccurred())

		dispatcher, err = bot.NewDispatcher(&bot.DispatcherConfig{
			Service: bot.NewService(reg),
			Gateway: gateway,
			Clock:   clock,
			Metrics: metrics.New(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	report := func(inv bot.Invocation, name, fact, class string) *bot.CommandEvent {
		return &bot.CommandEvent{
			Invocation: inv,
			Name:       bot.CommandReport,
			Options:    map[string]string{bot.OptionName: name, bot.OptionFact: fact, bot.OptionClass: class},
		}
	}

	click := func(inv bot.Invocation, p testutils.Prompt, button int) *bot.ClickEvent {
		return &bot.ClickEvent{Invocation: inv, MessageID: p.Ref.MessageID, CustomID: p.Buttons[button].CustomID}
	}

	It("requires a service and a gateway", func() {
		_, err := bot.NewDispatcher(&bot.DispatcherConfig{Gateway: gateway})
		Expect(err).To(HaveOccurred())
		_, err = bot.NewDispatcher(&bot.DispatcherConfig{Service: bot.NewService(reg)})
		Expect(err).To(HaveOccurred())
	})

	Describe("report command", func() {
		It("defers, saves and answers with an embed", func() {
			dispatcher.Handle(ctx, report(alice, "Mario Rossi", "plays the violin", "2a"))

			Expect(gateway.Deferred()).To(HaveLen(1))
			followUps := gateway.FollowUps()
			Expect(followUps).To(HaveLen(1))

			embed := followUps[0].Embeds[0]
			Expect(embed.Title).To(ContainSubstring("Report added"))
			Expect(embed.Description).To(ContainSubstring("Mario Rossi (2A)"))
			Expect(embed.Fields).To(ContainElement(bot.Field{Name: "Class", Value: "2A", Inline: true}))
			Expect(embed.Fields).To(ContainElement(bot.Field{Name: "Reported by", Value: "alice#1", Inline: true}))
		})

		DescribeTable("answers input errors ephemerally without deferring",
			func(name, class, expected string) {
				dispatcher.Handle(ctx, report(alice, name, "fact", class))

				Expect(gateway.Deferred()).To(BeEmpty())
				replies := gateway.Replies()
				Expect(replies).To(HaveLen(1))
				Expect(replies[0].Ephemeral).To(BeTrue())
				Expect(replies[0].Content).To(ContainSubstring(expected))
			},
			Entry("bad format", "Mario Rossi", "AA", "Invalid class format"),
			Entry("out of range", "Mario Rossi", "4A", "does not exist"),
			Entry("single name", "Mario", "", "given name and the family name"),
		)

		Context("with a class conflict", func() {
			var existing registry.Person

			BeforeEach(func() {
				var err error
				existing, err = reg.CreatePerson(ctx, "Mario Rossi (2A)")
				Expect(err).NotTo(HaveOccurred())
			})

			start := func() chan struct{} {
				done := make(chan struct{})
				go func() {
					defer close(done)
					dispatcher.Handle(ctx, report(alice, "Mario Rossi", "new fact", "2B"))
				}()
				Eventually(gateway.Prompts).Should(HaveLen(1))
				Eventually(clock.Waiters).Should(Equal(1))
				return done
			}

			It("prompts naming both classes", func() {
				done := start()

				p := gateway.Prompts()[0]
				Expect(p.Content).To(ContainSubstring("**2A**"))
				Expect(p.Content).To(ContainSubstring("**2B**"))
				Expect(p.Buttons).To(HaveLen(2))
				Expect(dispatcher.Router().Pending()).To(Equal(1))

				dispatcher.Handle(ctx, click(alice, p, 1))
				Eventually(done).Should(BeClosed())
			})

			It("creates a second person once the submitter confirms", func() {
				done := start()
				p := gateway.Prompts()[0]

				dispatcher.Handle(ctx, click(alice, p, 0))
				Eventually(done).Should(BeClosed())

				Expect(gateway.Edits()).To(ConsistOf(testutils.Edit{Ref: p.Ref, Content: "✅ Confirmed! Saving report..."}))

				created, ok := reg.FindByName("Mario Rossi (2B)")
				Expect(ok).To(BeTrue())
				Expect(reg.ReportsFor(created.ID)).To(HaveLen(1))
				Expect(reg.ReportsFor(existing.ID)).To(BeEmpty())
				Expect(gateway.FollowUps()).To(HaveLen(1))
				Expect(dispatcher.Router().Pending()).To(BeZero())
			})

			It("writes nothing when the submitter cancels", func() {
				done := start()
				p := gateway.Prompts()[0]

				dispatcher.Handle(ctx, click(alice, p, 1))
				Eventually(done).Should(BeClosed())

				Expect(gateway.Edits()[0].Content).To(Equal("❌ Operation cancelled."))
				people, reports := reg.Count()
				Expect(people).To(Equal(1))
				Expect(reports).To(BeZero())
			})

			It("ignores other users and expires after the deadline", func() {
				done := start()
				p := gateway.Prompts()[0]

				dispatcher.Handle(ctx, click(bob, p, 0))
				Consistently(done, 50*time.Millisecond).ShouldNot(BeClosed())

				clock.Advance(confirm.DefaultTimeout)
				Eventually(done).Should(BeClosed())

				Expect(gateway.Edits()).To(ConsistOf(testutils.Edit{Ref: p.Ref, Content: "⏰ Time expired. Operation cancelled."}))
				people, reports := reg.Count()
				Expect(people).To(Equal(1))
				Expect(reports).To(BeZero())
			})

			It("drops clicks that arrive after the prompt finished", func() {
				done := start()
				p := gateway.Prompts()[0]

				clock.Advance(confirm.DefaultTimeout)
				Eventually(done).Should(BeClosed())

				dispatcher.Handle(ctx, click(alice, p, 0))
				_, ok := reg.FindByName("Mario Rossi (2B)")
				Expect(ok).To(BeFalse())
			})

			It("keeps serving other users while a prompt is pending", func() {
				done := start()

				dispatcher.Handle(ctx, report(bob, "Luigi Verdi", "fact", ""))
				_, ok := reg.FindByName("Luigi Verdi")
				Expect(ok).To(BeTrue())

				dispatcher.Handle(ctx, click(alice, gateway.Prompts()[0], 1))
				Eventually(done).Should(BeClosed())
			})
		})
	})

	Describe("info command", func() {
		info := func(name string) *bot.CommandEvent {
			return &bot.CommandEvent{Invocation: alice, Name: bot.CommandInfo, Options: map[string]string{bot.OptionName: name}}
		}

		It("says when nobody is found", func() {
			dispatcher.Handle(ctx, info("Nobody Here"))

			followUps := gateway.FollowUps()
			Expect(followUps).To(HaveLen(1))
			Expect(followUps[0].Ephemeral).To(BeTrue())
			Expect(followUps[0].Content).To(ContainSubstring("No information found"))
		})

		It("distinguishes a person without reports", func() {
			_, err := reg.CreatePerson(ctx, "Anna Neri")
			Expect(err).NotTo(HaveOccurred())

			dispatcher.Handle(ctx, info("anna neri"))
			Expect(gateway.FollowUps()[0].Content).To(ContainSubstring("has no reports yet"))
		})

		It("numbers the reports", func() {
			p, err := reg.CreatePerson(ctx, "Anna Neri")
			Expect(err).NotTo(HaveOccurred())
			for _, fact := range []string{"one", "two"} {
				_, err = reg.CreateReport(ctx, p.ID, fact, "bob")
				Expect(err).NotTo(HaveOccurred())
			}

			dispatcher.Handle(ctx, info("Anna Neri"))
			embed := gateway.FollowUps()[0].Embeds[0]
			Expect(embed.Fields).To(HaveLen(2))
			Expect(embed.Fields[0].Name).To(Equal("Report #1"))
			Expect(embed.Fields[0].Value).To(ContainSubstring("one"))
			Expect(embed.Footer).To(Equal("Total reports: 2"))
		})
	})

	Describe("autocomplete", func() {
		It("suggests classes by prefix", func() {
			dispatcher.Handle(ctx, &bot.AutocompleteEvent{Invocation: alice, Command: bot.CommandReport, Option: bot.OptionClass, Value: "1"})

			choices := gateway.Choices()[0]
			Expect(choices).To(HaveLen(6))
			Expect(choices[0]).To(Equal(bot.Choice{Name: "1A", Value: "1A"}))
		})

		It("suggests stored names", func() {
			_, err := reg.CreatePerson(ctx, "Mario Rossi (2A)")
			Expect(err).NotTo(HaveOccurred())

			dispatcher.Handle(ctx, &bot.AutocompleteEvent{Invocation: alice, Command: bot.CommandInfo, Option: bot.OptionName, Value: "ross"})
			Expect(gateway.Choices()[0]).To(ConsistOf(bot.Choice{Name: "Mario Rossi (2A)", Value: "Mario Rossi (2A)"}))
		})
	})

	Describe("Run", func() {
		It("handles queued events and stops when the gateway closes", func() {
			gateway.Emit(report(alice, "Mario Rossi", "fact", ""))
			gateway.Stop()

			Expect(dispatcher.Run(ctx)).To(Succeed())
			_, reports := reg.Count()
			Expect(reports).To(Equal(1))
		})

		It("stops when the context is cancelled", func() {
			runCtx, cancel := context.WithCancel(ctx)
			cancel()
			Expect(dispatcher.Run(runCtx)).To(MatchError(context.Canceled))
		})
	})
})
