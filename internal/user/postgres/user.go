package postgres

import (
	"time"

	"gorm.io/gorm"

	userDatamodel "github.com/ptec-dev/audit-management/internal/core/datamodel/user"
	"github.com/ptec-dev/audit-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByUserCode(userCode string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("user_code = ?", userCode).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(userID int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("user_id = ?", userID).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetResetToken(tokenHash []byte) (*userDatamodel.PasswordResetToken, error) {
	var t userDatamodel.PasswordResetToken
	err := r.db.Where("token_hash = ?", tokenHash).First(&t).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *UserRepository) MarkResetTokenUsed(tokenID int64, usedAt time.Time) error {
	return r.db.Model(&userDatamodel.PasswordResetToken{}).
		Where("id = ?", tokenID).
		Update("used_at", usedAt).Error
}

func (r *UserRepository) UpdatePassword(userID int64, passwordHash string) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		}).Error
}
