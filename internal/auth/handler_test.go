package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalErrors "github.com/ptec-dev/audit-management/internal"
	"github.com/ptec-dev/audit-management/internal/auth"
)

// stubService implements auth.ServiceAPI with canned outcomes.
type stubService struct {
	loginResult   *auth.LoginResult
	loginErr      error
	otpResult     *auth.OtpResult
	otpErr        error
	refreshToken  string
	refreshResult auth.Session
	refreshErr    error
}

func (s *stubService) VerifyPassword(ctx context.Context, loginname, password string) (*auth.LoginResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubService) VerifyOtp(ctx context.Context, usercode, otpCode string, trustDevice bool) (*auth.LoginResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubService) ResendOtp(ctx context.Context, usercode string) (*auth.OtpResult, error) {
	return s.otpResult, s.otpErr
}

func (s *stubService) SendOtp(ctx context.Context, email string) (*auth.OtpResult, error) {
	return s.otpResult, s.otpErr
}

func (s *stubService) RefreshSession(ctx context.Context, sessionToken string) (string, auth.Session, error) {
	return s.refreshToken, s.refreshResult, s.refreshErr
}

func (s *stubService) Logout(ctx context.Context, sessionToken string) error {
	return nil
}

var _ = Describe("Auth Handler", func() {
	var (
		stub    *stubService
		handler *auth.Handler
	)

	BeforeEach(func() {
		stub = &stubService{}
		handler = auth.NewHandler(stub)
	})

	post := func(h http.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h(rec, req)

		var decoded map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &decoded)).To(Succeed())
		return rec, decoded
	}

	Describe("Login", func() {
		It("rejects a body without credentials", func() {
			rec, _ := post(handler.Login, `{"loginname":""}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns the MFA challenge shape without tokens", func() {
			stub.loginResult = &auth.LoginResult{
				MfaRequired: true,
				UserCode:    "AUD042",
				ExpiresAt:   1700000000000,
				Message:     "OTP sent to your email",
			}

			rec, body := post(handler.Login, `{"loginname":"AUD042","password":"x"}`)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body["request_Mfa"]).To(Equal(true))
			Expect(body["userCode"]).To(Equal("AUD042"))
			Expect(body).NotTo(HaveKey("session_token"))
		})

		It("returns tokens on a direct login", func() {
			stub.loginResult = &auth.LoginResult{
				Authenticated: true,
				AccessToken:   "portal-token",
				SessionToken:  "session-jwt",
			}

			rec, body := post(handler.Login, `{"loginname":"AUD042","password":"x"}`)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body["access_token"]).To(Equal("portal-token"))
			Expect(body["session_token"]).To(Equal("session-jwt"))
		})

		It("maps a typed error to its own status and code", func() {
			stub.loginErr = internalErrors.ErrInvalidCredentials

			rec, body := post(handler.Login, `{"loginname":"AUD042","password":"x"}`)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(body["error"]).To(Equal("INVALID_CREDENTIALS"))
			Expect(body["success"]).To(Equal(false))
		})

		It("maps portal downtime to 503", func() {
			stub.loginErr = internalErrors.ErrPortalUnavailable

			rec, body := post(handler.Login, `{"loginname":"AUD042","password":"x"}`)
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(body["error"]).To(Equal("SERVICE_UNAVAILABLE"))
		})
	})

	Describe("ResendOtp", func() {
		It("maps the cooldown rejection to 409", func() {
			stub.otpErr = internalErrors.ErrResendTooSoon

			rec, body := post(handler.ResendOtp, `{"usercode":"AUD042"}`)
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(body["error"]).To(Equal("RESEND_TOO_SOON"))
		})
	})

	Describe("RefreshSession", func() {
		It("maps a dead session to 401 SESSION_EXPIRED", func() {
			stub.refreshErr = internalErrors.ErrSessionExpired

			rec, body := post(handler.RefreshSession, `{"session_token":"jwt"}`)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(body["error"]).To(Equal("SESSION_EXPIRED"))
		})

		It("returns the re-encoded credential", func() {
			stub.refreshToken = "fresh-jwt"
			stub.refreshResult = auth.Session{Claims: testClaims()}

			rec, body := post(handler.RefreshSession, `{"session_token":"jwt"}`)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body["session_token"]).To(Equal("fresh-jwt"))
		})
	})

	Describe("Logout", func() {
		It("answers 204 with a body token", func() {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"session_token":"jwt"}`))
			rec := httptest.NewRecorder()
			handler.Logout(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNoContent))
		})
	})
})
