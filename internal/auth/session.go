package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	internalErrors "github.com/ptec-dev/audit-management/internal"
)

// SessionIssuer mints and encodes the signed session credential. Issue is
// pure construction; Encode/Decode are the opaque signed storage the client
// carries between requests.
type SessionIssuer struct {
	secret  []byte
	horizon time.Duration
	maxAge  time.Duration
	now     func() time.Time
}

func NewSessionIssuer(secret string, horizon, maxAge time.Duration) *SessionIssuer {
	if horizon <= 0 {
		horizon = 4 * time.Hour
	}
	if maxAge <= 0 {
		maxAge = 30 * time.Minute
	}
	return &SessionIssuer{
		secret:  []byte(secret),
		horizon: horizon,
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Issue builds a fresh session around the verified claims. The access-token
// horizon is fixed at issuance and survives every later re-encode.
func (i *SessionIssuer) Issue(claims Claims, accessToken string) Session {
	claims.AccessToken = accessToken
	now := i.now()
	return Session{
		Claims:               claims,
		IssuedAt:             now,
		AccessTokenExpiresAt: now.Add(i.horizon),
	}
}

// sessionClaims is the JWT payload. Timestamps for the portal-facing fields
// are epoch milliseconds, matching what the portal and front end exchange.
type sessionClaims struct {
	UserID             int    `json:"UserID"`
	UserCode           string `json:"UserCode"`
	FirstName          string `json:"fristName"`
	LastName           string `json:"lastName"`
	Email              string `json:"Email"`
	AccessToken        string `json:"access_token"`
	ImgProfile         string `json:"img_profile"`
	RoleID             int    `json:"role_id"`
	BranchID           int    `json:"branchid"`
	DepID              int    `json:"depid"`
	AccessTokenExpires int64  `json:"accessTokenExpires"`
	LastRefresh        int64  `json:"lastRefresh,omitempty"`
	jwt.RegisteredClaims
}

// Encode signs the session. The JWT exp is the sliding session max age; the
// embedded accessTokenExpires claim carries the fixed horizon.
func (i *SessionIssuer) Encode(s Session) (string, error) {
	now := i.now()
	sc := &sessionClaims{
		UserID:             s.Claims.UserID,
		UserCode:           s.Claims.UserCode,
		FirstName:          s.Claims.FirstName,
		LastName:           s.Claims.LastName,
		Email:              s.Claims.Email,
		AccessToken:        s.Claims.AccessToken,
		ImgProfile:         s.Claims.ImgProfile,
		RoleID:             s.Claims.RoleID,
		BranchID:           s.Claims.BranchID,
		DepID:              s.Claims.DepID,
		AccessTokenExpires: s.AccessTokenExpiresAt.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Claims.UserCode,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.maxAge)),
		},
	}
	if !s.LastRefresh.IsZero() {
		sc.LastRefresh = s.LastRefresh.UnixMilli()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sc)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Decode parses and verifies a session token. Any failure, including an
// elapsed max age, yields the zero (dead) session alongside the typed error.
func (i *SessionIssuer) Decode(tokenString string) (Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, internalErrors.ErrSessionExpired
		}
		return Session{}, internalErrors.ErrTokenInvalid
	}

	sc, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return Session{}, internalErrors.ErrTokenInvalid
	}

	s := Session{
		Claims: Claims{
			UserID:      sc.UserID,
			UserCode:    sc.UserCode,
			FirstName:   sc.FirstName,
			LastName:    sc.LastName,
			Email:       sc.Email,
			AccessToken: sc.AccessToken,
			ImgProfile:  sc.ImgProfile,
			RoleID:      sc.RoleID,
			BranchID:    sc.BranchID,
			DepID:       sc.DepID,
		},
		AccessTokenExpiresAt: time.UnixMilli(sc.AccessTokenExpires),
	}
	if sc.IssuedAt != nil {
		s.IssuedAt = sc.IssuedAt.Time
	}
	if sc.LastRefresh > 0 {
		s.LastRefresh = time.UnixMilli(sc.LastRefresh)
	}
	return s, nil
}
