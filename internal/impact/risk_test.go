package impact_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/correlate/internal/impact"
	"basegraph.app/correlate/internal/model"
)

var _ = Describe("CategorizeFile", func() {
	DescribeTable("classifies paths",
		func(path string, want model.FileCategory) {
			Expect(impact.CategorizeFile(path)).To(Equal(want))
		},
		Entry("go source", "internal/auth/sso.go", model.FileCategorySource),
		Entry("go test", "internal/auth/sso_test.go", model.FileCategoryTests),
		Entry("python test", "tests/test_auth.py", model.FileCategoryTests),
		Entry("js spec", "web/login.spec.ts", model.FileCategoryTests),
		Entry("java test", "src/AuthServiceTest.java", model.FileCategoryTests),
		Entry("migration", "core/db/migrations/000003_users.up.sql", model.FileCategoryMigration),
		Entry("markdown", "docs/README.md", model.FileCategoryDocumentation),
		Entry("yaml", "deploy/values.yaml", model.FileCategoryConfig),
		Entry("dockerfile", "Dockerfile", model.FileCategoryConfig),
		Entry("image", "web/logo.png", model.FileCategoryOther),
	)
})

var _ = Describe("RiskScore", func() {
	It("adds a penalty when no tests accompany the change", func() {
		score, factors := impact.RiskScore(1, 10, map[string]model.FileCategory{"a.go": model.FileCategorySource})
		Expect(score).To(Equal(5 + 2 + 15))
		Expect(factors).To(ContainElement(model.RiskFactor{Factor: "no tests", Points: 15}))
	})

	It("caps the volume component at fifty", func() {
		score, _ := impact.RiskScore(40, 100000, map[string]model.FileCategory{"a.md": model.FileCategoryDocumentation})
		Expect(score).To(Equal(50 + 15))
	})

	It("weights migrations and config", func() {
		score, _ := impact.RiskScore(2, 0, map[string]model.FileCategory{
			"m.sql":  model.FileCategoryMigration,
			"c.yaml": model.FileCategoryConfig,
		})
		Expect(score).To(Equal(10 + 10 + 5 + 15))
	})

	It("never leaves 0..100", func() {
		score, _ := impact.RiskScore(1, 0, map[string]model.FileCategory{"a_test.go": model.FileCategoryTests})
		Expect(score).To(Equal(0))
	})

	It("scores an empty change as zero", func() {
		score, factors := impact.RiskScore(0, 0, nil)
		Expect(score).To(BeZero())
		Expect(factors).To(BeEmpty())
	})
})

var _ = DescribeTable("ClassifyRisk",
	func(score int, want model.RiskLevel) {
		Expect(impact.ClassifyRisk(score)).To(Equal(want))
	},
	Entry(nil, 0, model.RiskLevelLow),
	Entry(nil, 20, model.RiskLevelLow),
	Entry(nil, 21, model.RiskLevelMedium),
	Entry(nil, 50, model.RiskLevelMedium),
	Entry(nil, 75, model.RiskLevelHigh),
	Entry(nil, 76, model.RiskLevelCritical),
)

var _ = DescribeTable("ClassifyBlastRadius",
	func(files, lines int, want model.BlastRadius) {
		Expect(impact.ClassifyBlastRadius(files, lines)).To(Equal(want))
	},
	Entry(nil, 2, 49, model.BlastRadiusSmall),
	Entry(nil, 2, 50, model.BlastRadiusMedium),
	Entry(nil, 5, 199, model.BlastRadiusMedium),
	Entry(nil, 10, 499, model.BlastRadiusLarge),
	Entry(nil, 11, 10, model.BlastRadiusVeryLarge),
)
