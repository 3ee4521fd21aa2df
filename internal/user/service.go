package user

import (
	"crypto/sha256"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	internalErrors "github.com/ptec-dev/audit-management/internal"
	userDatamodel "github.com/ptec-dev/audit-management/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetByUserCode(userCode string) (*userDatamodel.User, error)
	GetByID(userID int64) (*userDatamodel.User, error)
	GetResetToken(tokenHash []byte) (*userDatamodel.PasswordResetToken, error)
	MarkResetTokenUsed(tokenID int64, usedAt time.Time) error
	UpdatePassword(userID int64, passwordHash string) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// GetByUserCode loads the profile for the confirmed identity.
func (s *Service) GetByUserCode(userCode string) (*Profile, error) {
	u, err := s.repo.GetByUserCode(userCode)
	if err != nil {
		s.logger.Error("failed to load user", "user_code", userCode, "error", err)
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, internalErrors.ErrUserNotFound
	}
	return FromDataModel(u), nil
}

// ValidateResetToken checks a reset link's token without consuming it. Only
// the sha256 of the token is stored, so the lookup hashes first.
func (s *Service) ValidateResetToken(token string) error {
	_, err := s.lookupResetToken(token)
	return err
}

// ResetPassword consumes the token and replaces the stored hash. Reusing
// the current password is rejected so a leaked reset link cannot be used
// to silently "confirm" an old credential.
func (s *Service) ResetPassword(token, newPassword string) error {
	record, err := s.lookupResetToken(token)
	if err != nil {
		return err
	}

	u, err := s.repo.GetByID(record.UserID)
	if err != nil {
		s.logger.Error("failed to load user for password reset", "user_id", record.UserID, "error", err)
		return err
	}
	if u == nil || !u.IsActive {
		return internalErrors.ErrResetTokenInvalid
	}

	if u.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(newPassword)); err == nil {
			return internalErrors.ErrSamePassword
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return internalErrors.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.UpdatePassword(u.UserID, string(hashed)); err != nil {
		s.logger.Error("failed to update password", "user_id", u.UserID, "error", err)
		return err
	}
	if err := s.repo.MarkResetTokenUsed(record.ID, s.now()); err != nil {
		s.logger.Warn("failed to mark reset token used", "token_id", record.ID, "error", err)
	}

	s.logger.Info("password reset completed", "user_id", u.UserID)
	return nil
}

func (s *Service) lookupResetToken(token string) (*userDatamodel.PasswordResetToken, error) {
	hash := sha256.Sum256([]byte(token))
	record, err := s.repo.GetResetToken(hash[:])
	if err != nil {
		s.logger.Error("failed to look up reset token", "error", err)
		return nil, err
	}
	if record == nil || record.UsedAt != nil || s.now().After(record.ExpiresAt) {
		return nil, internalErrors.ErrResetTokenInvalid
	}
	return record, nil
}
