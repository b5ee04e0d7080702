package jsonfile_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dossier/pkg/registry"
	"github.com/papercomputeco/dossier/pkg/storage"
	"github.com/papercomputeco/dossier/pkg/storage/jsonfile"
	testutils "github.com/papercomputeco/dossier/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		path   string
		driver *jsonfile.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		path = filepath.Join(GinkgoT().TempDir(), "data", jsonfile.DefaultFileName)

		var err error
		driver, err = jsonfile.NewDriver(path)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates the parent directory", func() {
		info, err := os.Stat(filepath.Dir(path))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})

	It("treats a missing file as empty state", func() {
		snapshot, err := driver.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(snapshot.People).To(BeEmpty())
		Expect(snapshot.Reports).To(BeEmpty())
	})

	It("round-trips a snapshot", func() {
		want := testutils.SampleSnapshot()
		Expect(driver.Save(ctx, want)).To(Succeed())

		got, err := driver.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
	})

	It("writes an indented document with people and reports", func() {
		Expect(driver.Save(ctx, testutils.SampleSnapshot())).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(HavePrefix("{\n  \"people\": ["))
		Expect(string(data)).To(ContainSubstring(`"personId": "p-1"`))
		Expect(string(data)).To(ContainSubstring(`"reportedBy": "anna"`))
	})

	It("writes empty arrays for an empty snapshot", func() {
		Expect(driver.Save(ctx, registry.Snapshot{})).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("{\n  \"people\": [],\n  \"reports\": []\n}"))
	})

	It("leaves no temp files behind", func() {
		Expect(driver.Save(ctx, testutils.SampleSnapshot())).To(Succeed())
		Expect(driver.Save(ctx, testutils.SampleSnapshot())).To(Succeed())

		entries, err := os.ReadDir(filepath.Dir(path))
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
	})

	It("reports a corrupt document", func() {
		Expect(os.WriteFile(path, []byte("{not json"), 0o600)).To(Succeed())

		_, err := driver.Load(ctx)
		var corrupt storage.CorruptError
		Expect(err).To(BeAssignableToTypeOf(corrupt))
	})

	It("falls back to the default file name", func() {
		d, err := jsonfile.NewDriver("")
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Path()).To(Equal(jsonfile.DefaultFileName))
	})
})
