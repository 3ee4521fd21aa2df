package auth

import (
	"context"
	"time"

	"github.com/ptec-dev/audit-management/internal/portal"
)

// Claims are the authenticated user's attributes as the portal reported
// them. JSON field names are the portal's wire contract and are preserved
// verbatim, spelling included. Owned by the session issuer while minting;
// read-only afterwards except for the refresh coordinator's profile fields.
type Claims struct {
	UserID      int    `json:"UserID"`
	UserCode    string `json:"UserCode"`
	FirstName   string `json:"fristName"`
	LastName    string `json:"lastName"`
	Email       string `json:"Email"`
	AccessToken string `json:"access_token"`
	ImgProfile  string `json:"img_profile"`
	RoleID      int    `json:"role_id"`
	BranchID    int    `json:"branchid"`
	DepID       int    `json:"depid"`
}

// Empty reports whether the claims carry no identity.
func (c Claims) Empty() bool {
	return c.UserID == 0 && c.UserCode == ""
}

// Session is the time-bounded container for Claims. AccessTokenExpiresAt is
// a fixed horizon from issuance and is never extended; the carrying JWT's
// own exp enforces the shorter sliding max age. LastRefresh is zero until
// the first successful profile refresh.
type Session struct {
	Claims               Claims
	IssuedAt             time.Time
	AccessTokenExpiresAt time.Time
	LastRefresh          time.Time
}

// Dead reports whether the session must not be used: no claims, or the
// access-token horizon has passed. Expiry state lives on the value itself,
// never in process-wide flags.
func (s Session) Dead(now time.Time) bool {
	return s.Claims.Empty() || now.After(s.AccessTokenExpiresAt)
}

// DebounceElapsed reports whether enough time has passed since the last
// successful refresh to justify another portal round-trip. A zero
// LastRefresh counts as infinitely long ago.
func (s Session) DebounceElapsed(now time.Time, window time.Duration) bool {
	if s.LastRefresh.IsZero() {
		return true
	}
	return now.Sub(s.LastRefresh) >= window
}

// LoginResult is the verifier's outcome. Exactly one of the three shapes is
// populated: an issued session, an MFA challenge, or a rejection message.
type LoginResult struct {
	Authenticated bool
	MfaRequired   bool
	UserCode      string
	ExpiresAt     int64
	Message       string
	AccessToken   string
	SessionToken  string
	Session       Session
	User          *portal.UserPayload
}

// OtpResult reports a successful OTP issue/resend.
type OtpResult struct {
	Message   string
	ExpiresAt int64
}

// ServiceAPI is the surface the HTTP handler consumes.
type ServiceAPI interface {
	VerifyPassword(ctx context.Context, loginname, password string) (*LoginResult, error)
	VerifyOtp(ctx context.Context, usercode, otpCode string, trustDevice bool) (*LoginResult, error)
	ResendOtp(ctx context.Context, usercode string) (*OtpResult, error)
	SendOtp(ctx context.Context, email string) (*OtpResult, error)
	RefreshSession(ctx context.Context, sessionToken string) (string, Session, error)
	Logout(ctx context.Context, sessionToken string) error
}

func claimsFromPayload(u *portal.UserPayload, accessToken string) Claims {
	if u == nil {
		return Claims{}
	}
	return Claims{
		UserID:      atoiSafe(u.UserID),
		UserCode:    u.UserCode,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		AccessToken: accessToken,
		ImgProfile:  u.ImgProfile,
		RoleID:      u.RoleID,
		BranchID:    u.BranchID,
		DepID:       u.DepID,
	}
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
