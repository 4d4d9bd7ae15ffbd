package schur

import (
	"context"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

var _ = Describe("Driver", func() {
	var (
		reporter *recordingReporter
		driver   *Driver
		querier  *Querier
	)

	BeforeEach(func() {
		logger := logrus.New()
		logger.SetOutput(GinkgoWriter)
		logger.SetLevel(logrus.DebugLevel)

		reporter = &recordingReporter{}
		querier = NewQuerier(WithLogger(logger))
		driver = NewDriver(querier,
			WithReporter(reporter),
			WithDriverLogger(logger),
			WithMaxColors(3),
		)
	})

	Context("searching up to three colors", func() {
		BeforeEach(func() {
			Expect(driver.Run(context.Background())).To(Succeed())
		})

		It("records the first failing count for each color", func() {
			Expect(driver.Results()).To(Equal([]Record{
				{Colors: 1, Numbers: 2},
				{Colors: 2, Numbers: 5},
				{Colors: 3, Numbers: 14},
			}))
		})

		It("reports the conventional Schur numbers one lower", func() {
			var standard []int
			for _, r := range driver.Results() {
				standard = append(standard, r.Standard())
			}
			Expect(standard).To(Equal([]int{1, 4, 13}))
		})

		It("advances numbers on every step", func() {
			Expect(reporter.steps).To(HaveLen(14))
			for i, s := range reporter.steps {
				Expect(s.Numbers).To(Equal(i + 1))
			}
		})

		It("reports colorings that verify", func() {
			for _, s := range reporter.steps {
				if !s.Found {
					Expect(s.Coloring).To(BeNil())
					continue
				}
				v, err := querier.VerifyColoring(context.Background(), s.Colors, s.Numbers, s.Coloring)
				Expect(err).ToNot(HaveOccurred())
				Expect(v.Valid).To(BeTrue(), "%s with %d colors", s.Coloring, s.Colors)
			}
		})

		It("stops at the color limit", func() {
			colors, numbers := driver.Cursor()
			Expect(colors).To(Equal(3))
			Expect(numbers).To(Equal(14))
		})
	})
})
