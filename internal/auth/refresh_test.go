package auth_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalErrors "github.com/ptec-dev/audit-management/internal"
	"github.com/ptec-dev/audit-management/internal/auth"
	"github.com/ptec-dev/audit-management/internal/portal"
)

var _ = Describe("Refresh Coordinator", func() {
	var (
		fp  *fakePortal
		rc  *auth.RefreshCoordinator
		ctx context.Context
	)

	liveSession := func() auth.Session {
		return auth.Session{
			Claims:               testClaims(),
			IssuedAt:             time.Now(),
			AccessTokenExpiresAt: time.Now().Add(time.Hour),
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		fp = &fakePortal{}
		rc = auth.NewRefreshCoordinator(fp, 30*time.Second, testLogger())
	})

	It("kills a session past its access-token horizon without a portal call", func() {
		s := liveSession()
		s.AccessTokenExpiresAt = time.Now().Add(-time.Minute)

		result := rc.Refresh(ctx, s)
		Expect(result.Dead(time.Now())).To(BeTrue())
		Expect(fp.profileCalls).To(Equal(0))
	})

	It("returns the session unchanged inside the debounce window", func() {
		s := liveSession()
		s.LastRefresh = time.Now().Add(-5 * time.Second)

		result := rc.Refresh(ctx, s)
		Expect(result).To(Equal(s))
		Expect(fp.profileCalls).To(Equal(0))
	})

	It("pulls the latest profile once the debounce elapses", func() {
		updated := *testUser()
		updated.FirstName = "Renamed"
		updated.RoleID = 5
		fp.profile = &portal.ProfileResponse{Success: true, Data: []portal.UserPayload{updated}}

		s := liveSession()
		result := rc.Refresh(ctx, s)

		Expect(fp.profileCalls).To(Equal(1))
		Expect(result.Claims.FirstName).To(Equal("Renamed"))
		Expect(result.Claims.RoleID).To(Equal(5))
		Expect(result.LastRefresh.IsZero()).To(BeFalse())
		// identity and horizon are untouched
		Expect(result.Claims.UserCode).To(Equal(s.Claims.UserCode))
		Expect(result.AccessTokenExpiresAt).To(Equal(s.AccessTokenExpiresAt))
	})

	It("kills the session when the portal rejects the access token", func() {
		fp.profileErr = internalErrors.ErrPortalRejected

		result := rc.Refresh(ctx, liveSession())
		Expect(result.Dead(time.Now())).To(BeTrue())
	})

	It("keeps stale claims on a transient portal failure", func() {
		fp.profileErr = internalErrors.ErrPortalUnavailable

		s := liveSession()
		result := rc.Refresh(ctx, s)
		Expect(result).To(Equal(s))
		// LastRefresh untouched, so the next attempt is not debounced away
		Expect(result.LastRefresh.IsZero()).To(BeTrue())
	})

	It("keeps stale claims when the portal returns no profile data", func() {
		fp.profile = &portal.ProfileResponse{Success: true, Data: nil}

		s := liveSession()
		result := rc.Refresh(ctx, s)
		Expect(result).To(Equal(s))
	})
})
