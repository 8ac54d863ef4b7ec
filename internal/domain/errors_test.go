package domain_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/correlate/internal/domain"
)

var _ = Describe("error taxonomy", func() {
	It("classifies validation errors through wrapping", func() {
		err := fmt.Errorf("ingest ticket: %w", domain.Invalid("key", "is required"))

		Expect(errors.Is(err, domain.ErrValidation)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("key: is required"))

		var verr *domain.ValidationError
		Expect(errors.As(err, &verr)).To(BeTrue())
		Expect(verr.Field).To(Equal("key"))
	})

	It("keeps the cause of a timeout reachable", func() {
		err := domain.Timeout("llm", context.DeadlineExceeded)

		Expect(errors.Is(err, domain.ErrDependencyTimeout)).To(BeTrue())
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		Expect(domain.Retryable(err)).To(BeTrue())
	})

	It("does not treat analysis failures as retryable", func() {
		err := fmt.Errorf("decode: %w", domain.ErrAnalysisFailure)
		Expect(domain.Retryable(err)).To(BeFalse())
	})
})
