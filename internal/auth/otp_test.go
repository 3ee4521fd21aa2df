package auth_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalErrors "github.com/ptec-dev/audit-management/internal"
	"github.com/ptec-dev/audit-management/internal/auth"
	"github.com/ptec-dev/audit-management/internal/cache/memory"
)

var _ = Describe("OTP Challenge Manager", func() {
	var (
		mgr *auth.ChallengeManager
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mgr = auth.NewChallengeManager(memory.New(time.Minute), 20*time.Second, testLogger())
	})

	Describe("Guard and Release", func() {
		It("lets the first request through and blocks the second", func() {
			Expect(mgr.Guard(ctx, "AUD042")).To(Succeed())

			err := mgr.Guard(ctx, "AUD042")
			appErr, ok := internalErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internalErrors.ErrCodeResendTooSoon))
		})

		It("treats user codes case-insensitively", func() {
			Expect(mgr.Guard(ctx, "aud042")).To(Succeed())
			Expect(mgr.Guard(ctx, "AUD042")).NotTo(Succeed())
		})

		It("frees the slot on release", func() {
			Expect(mgr.Guard(ctx, "AUD042")).To(Succeed())
			mgr.Release(ctx, "AUD042")
			Expect(mgr.Guard(ctx, "AUD042")).To(Succeed())
		})

		It("tracks different users independently", func() {
			Expect(mgr.Guard(ctx, "AUD042")).To(Succeed())
			Expect(mgr.Guard(ctx, "AUD043")).To(Succeed())
		})
	})

	Describe("Track and Precheck", func() {
		It("allows a verify for a tracked live challenge", func() {
			Expect(mgr.Track(ctx, "AUD042", time.Now().Add(5*time.Minute))).To(Succeed())

			state, err := mgr.Precheck(ctx, "aud042")
			Expect(err).NotTo(HaveOccurred())
			Expect(state).NotTo(BeNil())
		})

		It("allows a verify when no challenge is tracked locally", func() {
			state, err := mgr.Precheck(ctx, "AUD042")
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("refuses to track an already expired window", func() {
			err := mgr.Track(ctx, "AUD042", time.Now().Add(-time.Second))
			appErr, ok := internalErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internalErrors.ErrCodeOtpInvalidOrExpired))
		})

		It("forgets a challenge once its window lapses", func() {
			Expect(mgr.Track(ctx, "AUD042", time.Now().Add(30*time.Millisecond))).To(Succeed())
			time.Sleep(60 * time.Millisecond)

			state, err := mgr.Precheck(ctx, "AUD042")
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})
	})

	Describe("Consume", func() {
		It("lets exactly one consume win", func() {
			Expect(mgr.Track(ctx, "AUD042", time.Now().Add(5*time.Minute))).To(Succeed())
			state, err := mgr.Precheck(ctx, "AUD042")
			Expect(err).NotTo(HaveOccurred())

			Expect(mgr.Consume(ctx, state)).To(Succeed())

			err = mgr.Consume(ctx, state)
			appErr, ok := internalErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internalErrors.ErrCodeOtpInvalidOrExpired))
		})

		It("rejects a precheck against a consumed challenge", func() {
			Expect(mgr.Track(ctx, "AUD042", time.Now().Add(5*time.Minute))).To(Succeed())
			state, _ := mgr.Precheck(ctx, "AUD042")
			Expect(mgr.Consume(ctx, state)).To(Succeed())

			_, err := mgr.Precheck(ctx, "AUD042")
			appErr, ok := internalErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internalErrors.ErrCodeOtpInvalidOrExpired))
		})

		It("treats a nil state as a no-op", func() {
			Expect(mgr.Consume(ctx, nil)).To(Succeed())
		})
	})

	Describe("Clear", func() {
		It("drops both challenge and cooldown state", func() {
			Expect(mgr.Guard(ctx, "AUD042")).To(Succeed())
			Expect(mgr.Track(ctx, "AUD042", time.Now().Add(5*time.Minute))).To(Succeed())

			mgr.Clear(ctx, "AUD042")

			Expect(mgr.Guard(ctx, "AUD042")).To(Succeed())
			state, err := mgr.Precheck(ctx, "AUD042")
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})
	})

	Describe("superseding", func() {
		It("replaces the previous challenge on a new track", func() {
			Expect(mgr.Track(ctx, "AUD042", time.Now().Add(time.Minute))).To(Succeed())
			first, _ := mgr.Precheck(ctx, "AUD042")
			Expect(mgr.Track(ctx, "AUD042", time.Now().Add(5*time.Minute))).To(Succeed())

			second, err := mgr.Precheck(ctx, "AUD042")
			Expect(err).NotTo(HaveOccurred())
			Expect(second).NotTo(BeNil())
			Expect(second.ID).NotTo(Equal(first.ID))
		})
	})
})
