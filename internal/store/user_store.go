package store

import (
	"context"
	"errors"

	"accounts/internal/domain"

	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	return u.db.WithContext(ctx).Create(usr).Error
}

func (u *UserStore) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetActiveByID ignores inactive accounts, which are invisible to lookup.
func (u *UserStore) GetActiveByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ? AND inactive = ?", id, false).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (u *UserStore) GetByActivationToken(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "activation_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ClearActivation flips the account active and nulls the one-time token.
func (u *UserStore) ClearActivation(ctx context.Context, id uint) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"inactive": false, "activation_token": nil}).Error
}

// UpdateUsername touches the mutable profile fields only; id, password hash,
// activation state and token are unreachable through this path.
func (u *UserStore) UpdateUsername(ctx context.Context, id uint, username string) error {
	return u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Update("username", username).Error
}

// FindActivePage returns one window of active accounts ordered by id, plus
// the total count of rows matching the same filter.
func (u *UserStore) FindActivePage(ctx context.Context, offset, limit int, excludeID uint) ([]domain.User, int64, error) {
	q := u.db.WithContext(ctx).Model(&domain.User{}).Where("inactive = ?", false)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var users []domain.User
	if err := q.Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, count, nil
}
