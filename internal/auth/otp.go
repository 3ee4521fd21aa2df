package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	internalErrors "github.com/ptec-dev/audit-management/internal"
	"github.com/ptec-dev/audit-management/internal/cache"
)

// ChallengeManager tracks OTP timing per user code: the validity window, the
// resend cooldown, and the at-most-one-successful-verify transition. Code
// correctness itself is the portal's job; the manager only refuses attempts
// its local state already knows are dead.
type ChallengeManager struct {
	store    cache.Store
	cooldown time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewChallengeManager(store cache.Store, cooldown time.Duration, logger *slog.Logger) *ChallengeManager {
	if cooldown <= 0 {
		cooldown = 20 * time.Second
	}
	return &ChallengeManager{
		store:    store,
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
	}
}

// challengeState is the stored per-user challenge. A new challenge
// overwrites the previous one, superseding it: only the latest is valid.
type challengeState struct {
	ID        string `json:"id"`
	UserCode  string `json:"user_code"`
	ExpiresAt int64  `json:"expires_at"` // epoch ms
}

func challengeKey(userCode string) string { return "otp:challenge:" + userCode }
func cooldownKey(userCode string) string  { return "otp:cooldown:" + userCode }
func consumedKey(id string) string        { return "otp:consumed:" + id }

func normalizeUserCode(userCode string) string {
	return strings.ToUpper(strings.TrimSpace(userCode))
}

// Guard reserves the resend cooldown slot. The atomic add means two
// concurrent resends for the same user cannot both pass. Call Release if
// the upstream send fails, so the user is not locked out by a failure.
func (m *ChallengeManager) Guard(ctx context.Context, userCode string) error {
	userCode = normalizeUserCode(userCode)
	ok, err := m.store.Add(ctx, cooldownKey(userCode), []byte("1"), m.cooldown)
	if err != nil {
		return internalErrors.NewInternalError("otp cooldown store failed", err)
	}
	if !ok {
		return internalErrors.ErrResendTooSoon
	}
	return nil
}

// Release frees a cooldown slot reserved by Guard.
func (m *ChallengeManager) Release(ctx context.Context, userCode string) {
	userCode = normalizeUserCode(userCode)
	if err := m.store.Delete(ctx, cooldownKey(userCode)); err != nil {
		m.logger.Warn("failed to release otp cooldown", "user_code", userCode, "error", err)
	}
}

// Track records a freshly issued challenge, implicitly superseding any
// previous one for the same user. Used both when the portal requests MFA on
// login and after a successful resend.
func (m *ChallengeManager) Track(ctx context.Context, userCode string, expiresAt time.Time) error {
	userCode = normalizeUserCode(userCode)
	state := challengeState{
		ID:        uuid.NewString(),
		UserCode:  userCode,
		ExpiresAt: expiresAt.UnixMilli(),
	}
	data, err := json.Marshal(state)
	if err != nil {
		return internalErrors.NewInternalError("failed to marshal otp challenge", err)
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return internalErrors.ErrOtpInvalidOrExpired
	}
	if err := m.store.Set(ctx, challengeKey(userCode), data, ttl); err != nil {
		return internalErrors.NewInternalError("otp challenge store failed", err)
	}
	return nil
}

// Precheck rejects verify attempts the local state already knows cannot
// succeed: an expired window or an already consumed challenge. An absent
// challenge is allowed through — this node may simply never have seen the
// issue — and the portal remains the final authority.
func (m *ChallengeManager) Precheck(ctx context.Context, userCode string) (*challengeState, error) {
	userCode = normalizeUserCode(userCode)
	data, found, err := m.store.Get(ctx, challengeKey(userCode))
	if err != nil {
		return nil, internalErrors.NewInternalError("otp challenge store failed", err)
	}
	if !found {
		return nil, nil
	}

	var state challengeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, internalErrors.NewInternalError("corrupt otp challenge state", err)
	}

	if m.now().UnixMilli() > state.ExpiresAt {
		return nil, internalErrors.ErrOtpInvalidOrExpired
	}

	_, consumed, err := m.store.Get(ctx, consumedKey(state.ID))
	if err != nil {
		return nil, internalErrors.NewInternalError("otp challenge store failed", err)
	}
	if consumed {
		return nil, internalErrors.ErrOtpInvalidOrExpired
	}

	return &state, nil
}

// Consume marks a challenge verified. Exactly one concurrent caller wins;
// the losers get ErrOtpInvalidOrExpired. The challenge record is kept until
// its window lapses so Precheck keeps routing replays to the consumed
// marker, which itself outlives the window slightly for late duplicates.
func (m *ChallengeManager) Consume(ctx context.Context, state *challengeState) error {
	if state == nil {
		return nil
	}
	ttl := time.Until(time.UnixMilli(state.ExpiresAt)) + time.Minute
	ok, err := m.store.Add(ctx, consumedKey(state.ID), []byte("1"), ttl)
	if err != nil {
		return internalErrors.NewInternalError("otp challenge store failed", err)
	}
	if !ok {
		return internalErrors.ErrOtpInvalidOrExpired
	}
	return nil
}

// Clear drops all challenge state for a user, used on logout.
func (m *ChallengeManager) Clear(ctx context.Context, userCode string) {
	userCode = normalizeUserCode(userCode)
	if err := m.store.Delete(ctx, challengeKey(userCode)); err != nil {
		m.logger.Warn("failed to clear otp challenge", "user_code", userCode, "error", err)
	}
	if err := m.store.Delete(ctx, cooldownKey(userCode)); err != nil {
		m.logger.Warn("failed to clear otp cooldown", "user_code", userCode, "error", err)
	}
}
