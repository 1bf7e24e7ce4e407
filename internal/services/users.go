package services

import (
	"errors"

	"github.com/taskpilot-dev/taskpilot/internal/apperrors"
	"github.com/taskpilot-dev/taskpilot/internal/models"
	"gorm.io/gorm"
)

// UserService is the thin user directory consumed by the lifecycle
// managers. Role changes and deletion are admin-gated at the transport
// layer.
type UserService struct {
	conn *gorm.DB
}

func NewUserService(conn *gorm.DB) *UserService {
	return &UserService{conn: conn}
}

func (s *UserService) List() ([]models.User, error) {
	var users []models.User

	if err := s.conn.Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (s *UserService) Get(id uint) (*models.User, error) {
	var user models.User

	if err := s.conn.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user", id)
		}
		return nil, err
	}

	return &user, nil
}

func (s *UserService) UpdateRole(id uint, role models.UserRole) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidation("invalid role %q", string(role))
	}

	user, err := s.Get(id)

	if err != nil {
		return nil, err
	}

	if err := s.conn.Model(user).Update("role", role).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes a user. Tasks assigned to the user are orphaned to an
// empty assignee; the user's notifications and authored reports go with
// them. Projects are untouched.
func (s *UserService) Delete(id uint) error {
	user, err := s.Get(id)

	if err != nil {
		return err
	}

	return s.conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("assignee_id = ?", user.ID).Update("assignee_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.TaskReport{}).Error; err != nil {
			return err
		}

		return tx.Delete(user).Error
	})
}
