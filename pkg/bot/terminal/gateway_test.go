package terminal_test

import (
	"context"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"

	"github.com/papercomputeco/dossier/pkg/bot"
	"github.com/papercomputeco/dossier/pkg/bot/terminal"
	"github.com/papercomputeco/dossier/pkg/registry"
)

var _ = Describe("Gateway", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		in     *io.PipeWriter
		out    *gbytes.Buffer
		gw     *terminal.Gateway
		reg    *registry.Registry
		runErr chan error
	)

	send := func(line string) {
		_, err := io.WriteString(in, line+"\n")
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)

		pr, pw := io.Pipe()
		in = pw
		DeferCleanup(pw.Close)
		out = gbytes.NewBuffer()
		plain := false
		gw = terminal.New(terminal.Config{In: pr, Out: out, User: "alice", Markdown: &plain})

		var err error
		reg, err = registry.New(ctx, nil)
		Expect(err).NotTo(HaveOccurred())

		dispatcher, err := bot.NewDispatcher(&bot.DispatcherConfig{
			Service: bot.NewService(reg),
			Gateway: gw,
		})
		Expect(err).NotTo(HaveOccurred())

		runErr = make(chan error, 1)
		go func() { runErr <- gw.Run(ctx) }()
		go func() { _ = dispatcher.Run(ctx) }()

		Eventually(out).Should(gbytes.Say("Type /help"))
	})

	It("runs a report and shows it back", func() {
		send("/report Mario Rossi | plays chess | 2a")
		Eventually(out).Should(gbytes.Say("Report added"))

		send("/info mario rossi (2A)")
		Eventually(out).Should(gbytes.Say("Total reports: 1"))
	})

	It("answers input errors", func() {
		send("/report Mario | plays chess")
		Eventually(out).Should(gbytes.Say("given name and the family name"))
	})

	It("walks through a class conflict", func() {
		send("/report Mario Rossi | plays chess | 2A")
		Eventually(out).Should(gbytes.Say("Report added"))

		send("/as bob")
		send("/report Mario Rossi | sings | 3B")
		Eventually(out).Should(gbytes.Say("already exists"))
		Eventually(out).Should(gbytes.Say("/yes"))

		send("/yes")
		Eventually(out).Should(gbytes.Say("Confirmed"))
		Eventually(func() bool {
			_, ok := reg.FindByName("Mario Rossi (3B)")
			return ok
		}).Should(BeTrue())

		stats := gw.Stats()
		Expect(stats.IsOnline).To(BeTrue())
		Expect(stats.UserCount).To(Equal(2))
	})

	It("lists class suggestions", func() {
		send("/complete class 3")
		Eventually(out).Should(gbytes.Say("3A"))
	})

	It("stops at end of input", func() {
		Expect(in.Close()).To(Succeed())
		Eventually(runErr).Should(Receive(BeNil()))
		Expect(gw.Stats().IsOnline).To(BeFalse())
	})

	It("stops on /quit", func() {
		send("/quit")
		Eventually(runErr).Should(Receive(BeNil()))
	})
})
