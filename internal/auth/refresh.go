package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	internalErrors "github.com/ptec-dev/audit-management/internal"
	"github.com/ptec-dev/audit-management/internal/portal"
)

// RefreshCoordinator keeps cached claims reasonably fresh without
// round-tripping to the portal on every request. It is invoked on explicit
// refresh triggers only, and debounces bursts from concurrent tabs.
type RefreshCoordinator struct {
	portal   portal.API
	debounce time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewRefreshCoordinator(portalAPI portal.API, debounce time.Duration, logger *slog.Logger) *RefreshCoordinator {
	if debounce <= 0 {
		debounce = 30 * time.Second
	}
	return &RefreshCoordinator{
		portal:   portalAPI,
		debounce: debounce,
		logger:   logger,
		now:      time.Now,
	}
}

// Refresh applies the refresh algorithm to one session value:
//
//  1. Past the access-token horizon: dead, unconditionally first.
//  2. Inside the debounce window: claims unchanged, no portal call.
//  3. Otherwise fetch the latest profile. 401 kills the session; success
//     overwrites the mutable profile fields and stamps LastRefresh; any
//     other failure keeps the stale claims and leaves LastRefresh alone so
//     the next attempt is not debounced away.
//
// Stale-but-valid claims are preferred over a hard failure, so transient
// portal errors are logged and swallowed.
func (rc *RefreshCoordinator) Refresh(ctx context.Context, s Session) Session {
	now := rc.now()

	if s.Dead(now) {
		return Session{}
	}

	if !s.DebounceElapsed(now, rc.debounce) {
		return s
	}

	resp, err := rc.portal.GetUserWithRoles(ctx, s.Claims.UserCode, s.Claims.AccessToken)
	if err != nil {
		if errors.Is(err, internalErrors.ErrPortalRejected) {
			rc.logger.Warn("portal rejected session during refresh", "user_code", s.Claims.UserCode)
			return Session{}
		}
		rc.logger.Error("profile refresh failed, keeping cached claims", "user_code", s.Claims.UserCode, "error", err)
		return s
	}

	if !resp.Success || len(resp.Data) == 0 {
		rc.logger.Warn("portal returned no profile data on refresh", "user_code", s.Claims.UserCode)
		return s
	}

	profile := resp.Data[0]
	s.Claims.FirstName = profile.FirstName
	s.Claims.LastName = profile.LastName
	s.Claims.Email = profile.Email
	s.Claims.ImgProfile = profile.ImgProfile
	s.Claims.RoleID = profile.RoleID
	s.Claims.BranchID = profile.BranchID
	s.Claims.DepID = profile.DepID
	s.LastRefresh = now

	return s
}
