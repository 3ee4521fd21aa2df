// Package portal talks to the upstream identity provider that owns
// passwords, OTP codes, and access tokens. The gateway never checks a
// credential locally; every correctness decision is delegated here.
package portal

import "context"

// UserPayload is the profile shape the portal returns on login, OTP verify,
// and profile refresh. JSON field names are the portal's wire contract and
// are preserved verbatim, spelling included.
type UserPayload struct {
	UserID     string `json:"UserID"`
	UserCode   string `json:"UserCode"`
	FirstName  string `json:"fristName"`
	LastName   string `json:"lastName"`
	Email      string `json:"Email"`
	ImgProfile string `json:"img_profile"`
	RoleID     int    `json:"role_id"`
	BranchID   int    `json:"branchid"`
	DepID      int    `json:"depid"`
}

type LoginResponse struct {
	Success     bool         `json:"success"`
	AccessToken string       `json:"access_token,omitempty"`
	User        *UserPayload `json:"user,omitempty"`
	Message     string       `json:"message,omitempty"`
	RequestMfa  bool         `json:"request_Mfa,omitempty"`
	UserCode    string       `json:"userCode,omitempty"`
	ExpiresAt   int64        `json:"expiresAt,omitempty"`
}

type VerifyOtpResponse struct {
	Success     bool         `json:"success"`
	AccessToken string       `json:"access_token,omitempty"`
	User        *UserPayload `json:"user,omitempty"`
	Message     string       `json:"message,omitempty"`
	ErrorCode   string       `json:"error,omitempty"`
}

type ResendOtpResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}

type ValidateResponse struct {
	Success bool          `json:"success"`
	Valid   bool          `json:"valid"`
	User    *ValidateUser `json:"user,omitempty"`
}

type ValidateUser struct {
	UserID     string `json:"userId"`
	UserCode   string `json:"userCode"`
	Username   string `json:"username"`
	Role       int    `json:"role"`
	Email      string `json:"email"`
	FirstName  string `json:"fristName"`
	LastName   string `json:"lastName"`
	ImgProfile string `json:"img_profile"`
	BranchID   int    `json:"branchid"`
	DepID      int    `json:"depid"`
	Source     string `json:"source"`
	LoginAt    string `json:"loginAt"`
}

type ProfileResponse struct {
	Success bool          `json:"success"`
	Data    []UserPayload `json:"data"`
}

// API is the portal surface the gateway consumes. Every call is one bounded
// RPC; implementations convert transport failures into the typed
// internal.ErrPortalUnavailable / internal.ErrPortalRejected errors so
// callers can distinguish "infrastructure down" from "credential rejected".
type API interface {
	Login(ctx context.Context, loginname, password string) (*LoginResponse, error)
	VerifyOtp(ctx context.Context, usercode, otpCode string, trustDevice bool) (*VerifyOtpResponse, error)
	ResendOtp(ctx context.Context, usercode string) (*ResendOtpResponse, error)
	SendOtp(ctx context.Context, email string) (*ResendOtpResponse, error)
	Validate(ctx context.Context, accessToken string) (*ValidateResponse, error)
	GetUserWithRoles(ctx context.Context, userCode, accessToken string) (*ProfileResponse, error)
}
