package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	internalErrors "github.com/ptec-dev/audit-management/internal"
	"github.com/ptec-dev/audit-management/internal/portal"
)

// Service is the credential verifier and login orchestrator. It owns no
// credential state of its own; it proxies the portal, tracks OTP timing
// through the challenge manager, and mints sessions through the issuer.
type Service struct {
	portal      portal.API
	issuer      *SessionIssuer
	otp         *ChallengeManager
	refresher   *RefreshCoordinator
	mfaWindow   time.Duration
	emailWindow time.Duration
	logger      *slog.Logger
}

func NewService(portalAPI portal.API, issuer *SessionIssuer, otp *ChallengeManager, refresher *RefreshCoordinator, mfaWindow, emailWindow time.Duration, logger *slog.Logger) *Service {
	if mfaWindow <= 0 {
		mfaWindow = 300 * time.Second
	}
	if emailWindow <= 0 {
		emailWindow = 120 * time.Second
	}
	return &Service{
		portal:      portalAPI,
		issuer:      issuer,
		otp:         otp,
		refresher:   refresher,
		mfaWindow:   mfaWindow,
		emailWindow: emailWindow,
		logger:      logger,
	}
}

// VerifyPassword checks the username/password pair against the portal.
// Outcomes: authenticated (session issued), MFA required (OTP challenge
// tracked, no session), rejected, or portal unavailable/timeout carried as
// a typed error.
func (s *Service) VerifyPassword(ctx context.Context, loginname, password string) (*LoginResult, error) {
	resp, err := s.portal.Login(ctx, loginname, password)
	if err != nil {
		if errors.Is(err, internalErrors.ErrPortalRejected) {
			s.logger.Info("login rejected by portal", "loginname", loginname)
			if resp != nil {
				return nil, internalErrors.ErrInvalidCredentials.WithMessage(resp.Message)
			}
			return nil, internalErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if resp.RequestMfa {
		expiresAt := resp.ExpiresAt
		if expiresAt == 0 {
			expiresAt = time.Now().Add(s.mfaWindow).UnixMilli()
		}
		if err := s.otp.Track(ctx, resp.UserCode, time.UnixMilli(expiresAt)); err != nil {
			s.logger.Warn("failed to track mfa challenge", "user_code", resp.UserCode, "error", err)
		}
		message := resp.Message
		if message == "" {
			message = "OTP sent to your email"
		}
		return &LoginResult{
			MfaRequired: true,
			UserCode:    resp.UserCode,
			ExpiresAt:   expiresAt,
			Message:     message,
		}, nil
	}

	if resp.Success && resp.AccessToken != "" {
		return s.establishSession(resp.User, resp.AccessToken, resp.Message)
	}

	return nil, internalErrors.ErrInvalidCredentials.WithMessage(resp.Message)
}

// VerifyOtp delegates the code check to the portal, gated by the local
// challenge state: an expired or already verified challenge is rejected
// before any network call, and at most one concurrent verify can win.
func (s *Service) VerifyOtp(ctx context.Context, usercode, otpCode string, trustDevice bool) (*LoginResult, error) {
	state, err := s.otp.Precheck(ctx, usercode)
	if err != nil {
		return nil, err
	}

	resp, err := s.portal.VerifyOtp(ctx, normalizeUserCode(usercode), otpCode, trustDevice)
	if err != nil {
		if errors.Is(err, internalErrors.ErrPortalRejected) {
			if resp != nil {
				return nil, internalErrors.ErrOtpInvalidOrExpired.WithMessage(resp.Message)
			}
			return nil, internalErrors.ErrOtpInvalidOrExpired
		}
		return nil, err
	}

	if !resp.Success || resp.AccessToken == "" {
		return nil, internalErrors.ErrOtpInvalidOrExpired.WithMessage(resp.Message)
	}

	if err := s.otp.Consume(ctx, state); err != nil {
		return nil, err
	}

	return s.establishSession(resp.User, resp.AccessToken, resp.Message)
}

// ResendOtp re-issues the challenge, enforcing the cooldown server-side.
// The cooldown slot is reserved before the portal call and released again
// if the send fails, so a portal hiccup does not burn the user's slot.
func (s *Service) ResendOtp(ctx context.Context, usercode string) (*OtpResult, error) {
	if err := s.otp.Guard(ctx, usercode); err != nil {
		return nil, err
	}

	resp, err := s.portal.ResendOtp(ctx, normalizeUserCode(usercode))
	if err != nil {
		s.otp.Release(ctx, usercode)
		return nil, err
	}

	if !resp.Success {
		s.otp.Release(ctx, usercode)
		return nil, internalErrors.ErrOtpInvalidOrExpired.WithMessage(resp.Message)
	}

	expiresAt := resp.ExpiresAt
	if expiresAt == 0 {
		expiresAt = time.Now().Add(s.mfaWindow).UnixMilli()
	}
	if err := s.otp.Track(ctx, usercode, time.UnixMilli(expiresAt)); err != nil {
		s.logger.Warn("failed to track resent otp challenge", "user_code", usercode, "error", err)
	}

	message := resp.Message
	if message == "" {
		message = "OTP resent successfully"
	}
	return &OtpResult{Message: message, ExpiresAt: expiresAt}, nil
}

// SendOtp starts the email OTP flow (the passwordless login tab). Keyed by
// email, same cooldown rules as resend.
func (s *Service) SendOtp(ctx context.Context, email string) (*OtpResult, error) {
	if err := s.otp.Guard(ctx, email); err != nil {
		return nil, err
	}

	resp, err := s.portal.SendOtp(ctx, email)
	if err != nil {
		s.otp.Release(ctx, email)
		return nil, err
	}

	if !resp.Success {
		s.otp.Release(ctx, email)
		return nil, internalErrors.ErrUserNotFound.WithMessage(resp.Message)
	}

	expiresAt := resp.ExpiresAt
	if expiresAt == 0 {
		expiresAt = time.Now().Add(s.emailWindow).UnixMilli()
	}
	if err := s.otp.Track(ctx, email, time.UnixMilli(expiresAt)); err != nil {
		s.logger.Warn("failed to track email otp challenge", "email", email, "error", err)
	}

	return &OtpResult{Message: resp.Message, ExpiresAt: expiresAt}, nil
}

// RefreshSession decodes the presented credential, runs the refresh
// coordinator, and re-encodes. A dead result maps to ErrSessionExpired so
// the client redirects to login with the reason preserved.
func (s *Service) RefreshSession(ctx context.Context, sessionToken string) (string, Session, error) {
	session, err := s.issuer.Decode(sessionToken)
	if err != nil {
		return "", Session{}, err
	}

	refreshed := s.refresher.Refresh(ctx, session)
	if refreshed.Dead(time.Now()) {
		return "", Session{}, internalErrors.ErrSessionExpired
	}

	encoded, err := s.issuer.Encode(refreshed)
	if err != nil {
		return "", Session{}, internalErrors.NewInternalError("failed to encode session", err)
	}
	return encoded, refreshed, nil
}

// Logout clears server-side challenge state for the session's user. The
// carried credential is client-held, so revocation is the clearing plus the
// client dropping the token.
func (s *Service) Logout(ctx context.Context, sessionToken string) error {
	session, err := s.issuer.Decode(sessionToken)
	if err != nil {
		// Already unusable; nothing to revoke.
		return nil
	}
	s.otp.Clear(ctx, session.Claims.UserCode)
	return nil
}

func (s *Service) establishSession(user *portal.UserPayload, accessToken, message string) (*LoginResult, error) {
	claims := claimsFromPayload(user, accessToken)
	if claims.Empty() {
		s.logger.Error("portal succeeded but returned no user payload")
		return nil, internalErrors.NewInternalError("portal returned no user payload", nil)
	}

	session := s.issuer.Issue(claims, accessToken)
	encoded, err := s.issuer.Encode(session)
	if err != nil {
		return nil, internalErrors.NewInternalError("failed to encode session", err)
	}

	if message == "" {
		message = "Login successful"
	}
	return &LoginResult{
		Authenticated: true,
		Message:       message,
		AccessToken:   accessToken,
		SessionToken:  encoded,
		Session:       session,
		User:          user,
	}, nil
}
