package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"teamcal/models"
	"teamcal/utils"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// NewUser carries the plaintext password; it is hashed before insert.
type NewUser struct {
	Email      string
	Password   string
	Name       string
	Role       models.Role
	Position   *string
	Department *string
	Phone      *string
	Avatar     *string
}

// UserPatch is a sparse update: nil fields are left unchanged.
type UserPatch struct {
	Name       *string
	Position   *string
	Department *string
	Phone      *string
	Avatar     *string
	Role       *models.Role
	Active     *bool
	Password   *string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) Create(ctx context.Context, in NewUser) (*models.User, error) {
	email := normalizeEmail(in.Email)

	// Check if user already exists
	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, utils.NewError(utils.ErrConflict, "email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = models.RoleEmployee
	}

	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		Name:         in.Name,
		Role:         role,
		Position:     in.Position,
		Department:   in.Department,
		Phone:        in.Phone,
		Avatar:       in.Avatar,
		Active:       true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// lost a race with a concurrent insert of the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.NewError(utils.ErrConflict, "email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *UserStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupError(err, "user")
	}
	return &user, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, lookupError(err, "user")
	}
	return &user, nil
}

// List returns every user, newest first.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// MissingIDs returns the ids from the input that do not name a user.
func (s *UserStore) MissingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	var found []uint
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("failed to check users: %w", err)
	}

	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (s *UserStore) Update(ctx context.Context, id uint, patch UserPatch) (*models.User, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Position != nil {
		updates["position"] = *patch.Position
	}
	if patch.Department != nil {
		updates["department"] = *patch.Department
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.Avatar != nil {
		updates["avatar"] = *patch.Avatar
	}
	if patch.Role != nil {
		updates["role"] = *patch.Role
	}
	if patch.Active != nil {
		updates["active"] = *patch.Active
	}
	if patch.Password != nil {
		hashed, err := utils.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password"] = hashed
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	return s.GetByID(ctx, id)
}

// Delete removes the user together with their memberships, participations
// and received invitations. Users who still own events or projects, or
// who sent invitations, are kept: those rows would lose their creator.
func (s *UserStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return lookupError(err, "user")
		}

		var owned int64
		for _, q := range []struct {
			model  interface{}
			column string
		}{
			{&models.Event{}, "created_by_id"},
			{&models.Project{}, "created_by_id"},
			{&models.Invitation{}, "sent_by_id"},
		} {
			var n int64
			if err := tx.Model(q.model).Where(q.column+" = ?", id).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to check ownership: %w", err)
			}
			owned += n
		}
		if owned > 0 {
			return utils.NewError(utils.ErrConflict, "user still owns events, projects or invitations")
		}

		// Delete in proper order to respect foreign keys
		tables := []interface{}{
			&models.ProjectMember{},
			&models.EventParticipant{},
			&models.Invitation{},
		}
		for _, table := range tables {
			if err := tx.Where("user_id = ?", id).Delete(table).Error; err != nil {
				return fmt.Errorf("failed to delete user dependencies: %w", err)
			}
		}

		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}
