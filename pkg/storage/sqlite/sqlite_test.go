package sqlite_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dossier/pkg/registry"
	"github.com/papercomputeco/dossier/pkg/storage"
	"github.com/papercomputeco/dossier/pkg/storage/sqlite"
	testutils "github.com/papercomputeco/dossier/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	var (
		driver *sqlite.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.NewDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	It("implements storage.Driver", func() {
		var _ storage.Driver = driver
	})

	Describe("NewDriver", func() {
		It("creates a driver with file database", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "test.db")

			s, err := sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Load", func() {
		It("returns an empty snapshot for a fresh database", func() {
			snapshot, err := driver.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(snapshot.People).To(BeEmpty())
			Expect(snapshot.Reports).To(BeEmpty())
		})
	})

	Describe("Save", func() {
		It("round-trips a snapshot", func() {
			want := testutils.SampleSnapshot()
			Expect(driver.Save(ctx, want)).To(Succeed())

			got, err := driver.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		})

		It("overwrites the previous snapshot", func() {
			Expect(driver.Save(ctx, testutils.SampleSnapshot())).To(Succeed())

			smaller := registry.Snapshot{
				People:  []registry.Person{{ID: "p-9", Name: "Luca Verdi"}},
				Reports: []registry.Report{},
			}
			Expect(driver.Save(ctx, smaller)).To(Succeed())

			got, err := driver.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(smaller))
		})

		It("persists across reopen", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "state.db")

			first, err := sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Save(ctx, testutils.SampleSnapshot())).To(Succeed())
			Expect(first.Close()).To(Succeed())

			second, err := sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer second.Close()

			got, err := second.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.People).To(HaveLen(2))
			Expect(got.Reports).To(HaveLen(3))
		})
	})

	It("hydrates a registry", func() {
		Expect(driver.Save(ctx, testutils.SampleSnapshot())).To(Succeed())

		reg, err := registry.New(ctx, driver)
		Expect(err).NotTo(HaveOccurred())

		person, ok := reg.FindByName("mario rossi (2a)")
		Expect(ok).To(BeTrue())
		Expect(reg.ReportsFor(person.ID)).To(HaveLen(2))
	})
})
