package repository

import (
	"github.com/VaishaliGajapathi/GlamArTryon/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user in the database
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdateRefreshTokenHash stores the bcrypt hash of the user's refresh token
func (r *userRepository) UpdateRefreshTokenHash(id uint, hash string) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("refresh_token_hash", hash).Error
}

// SetActiveSubscription updates the user's active subscription reference
func (r *userRepository) SetActiveSubscription(id uint, subscriptionID *uint) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("active_subscription_id", subscriptionID).Error
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}
