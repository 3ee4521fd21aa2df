package auth_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalErrors "github.com/ptec-dev/audit-management/internal"
	"github.com/ptec-dev/audit-management/internal/auth"
)

const testSecret = "test-secret-at-least-32-characters-long"

func testClaims() auth.Claims {
	return auth.Claims{
		UserID:    42,
		UserCode:  "AUD042",
		FirstName: "Anan",
		LastName:  "Auditor",
		Email:     "anan@ptec.local",
		RoleID:    2,
		BranchID:  7,
		DepID:     3,
	}
}

var _ = Describe("Session Issuer", func() {
	var issuer *auth.SessionIssuer

	BeforeEach(func() {
		issuer = auth.NewSessionIssuer(testSecret, 4*time.Hour, 30*time.Minute)
	})

	Describe("Issue", func() {
		It("fixes the access-token horizon at issuance", func() {
			before := time.Now()
			session := issuer.Issue(testClaims(), "portal-token")

			Expect(session.Claims.AccessToken).To(Equal("portal-token"))
			Expect(session.AccessTokenExpiresAt).To(BeTemporally("~", before.Add(4*time.Hour), time.Second))
			Expect(session.LastRefresh.IsZero()).To(BeTrue())
		})
	})

	Describe("Encode and Decode", func() {
		It("round-trips claims and timestamps", func() {
			session := issuer.Issue(testClaims(), "portal-token")
			session.LastRefresh = time.Now().Truncate(time.Millisecond)

			encoded, err := issuer.Encode(session)
			Expect(err).NotTo(HaveOccurred())

			decoded, err := issuer.Decode(encoded)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded.Claims).To(Equal(session.Claims))
			Expect(decoded.AccessTokenExpiresAt.UnixMilli()).To(Equal(session.AccessTokenExpiresAt.UnixMilli()))
			Expect(decoded.LastRefresh.UnixMilli()).To(Equal(session.LastRefresh.UnixMilli()))
		})

		It("keeps the horizon fixed across re-encodes", func() {
			session := issuer.Issue(testClaims(), "portal-token")
			horizon := session.AccessTokenExpiresAt.UnixMilli()

			for i := 0; i < 3; i++ {
				encoded, err := issuer.Encode(session)
				Expect(err).NotTo(HaveOccurred())
				session, err = issuer.Decode(encoded)
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(session.AccessTokenExpiresAt.UnixMilli()).To(Equal(horizon))
		})

		It("rejects a token signed with a different secret", func() {
			other := auth.NewSessionIssuer("another-secret-that-is-also-32-chars!", 4*time.Hour, 30*time.Minute)
			encoded, err := other.Encode(other.Issue(testClaims(), "t"))
			Expect(err).NotTo(HaveOccurred())

			_, err = issuer.Decode(encoded)
			appErr, ok := internalErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internalErrors.ErrCodeTokenInvalid))
		})

		It("maps an elapsed max age to session expired", func() {
			short := auth.NewSessionIssuer(testSecret, 4*time.Hour, time.Millisecond)
			encoded, err := short.Encode(short.Issue(testClaims(), "t"))
			Expect(err).NotTo(HaveOccurred())

			time.Sleep(50 * time.Millisecond)

			_, err = short.Decode(encoded)
			appErr, ok := internalErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internalErrors.ErrCodeSessionExpired))
		})

		It("rejects garbage input", func() {
			_, err := issuer.Decode("definitely.not.ajwt")
			appErr, ok := internalErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internalErrors.ErrCodeTokenInvalid))
		})
	})
})

var _ = Describe("Session", func() {
	now := time.Now()

	Describe("Dead", func() {
		It("treats empty claims as dead", func() {
			Expect(auth.Session{}.Dead(now)).To(BeTrue())
		})

		It("treats a passed horizon as dead regardless of claims", func() {
			s := auth.Session{
				Claims:               testClaims(),
				AccessTokenExpiresAt: now.Add(-time.Second),
			}
			Expect(s.Dead(now)).To(BeTrue())
		})

		It("keeps a live session alive", func() {
			s := auth.Session{
				Claims:               testClaims(),
				AccessTokenExpiresAt: now.Add(time.Hour),
			}
			Expect(s.Dead(now)).To(BeFalse())
		})
	})

	Describe("DebounceElapsed", func() {
		It("always passes when no refresh has happened yet", func() {
			Expect(auth.Session{}.DebounceElapsed(now, 30*time.Second)).To(BeTrue())
		})

		It("blocks inside the window and passes outside it", func() {
			s := auth.Session{LastRefresh: now.Add(-10 * time.Second)}
			Expect(s.DebounceElapsed(now, 30*time.Second)).To(BeFalse())

			s.LastRefresh = now.Add(-31 * time.Second)
			Expect(s.DebounceElapsed(now, 30*time.Second)).To(BeTrue())
		})
	})
})
