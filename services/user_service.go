package services

import (
	"errors"
	"fmt"
	"time"

	"research-proposal-api/models"
	"research-proposal-api/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUnknownRole     = errors.New("unknown role name")
	ErrCredentialTaken = errors.New("username or email already in use")
	ErrInvalidAccount  = errors.New("invalid account data")
)

// UserService owns admin account and faculty management. Listing stays in
// the controllers; everything that writes goes through here so role
// assignment and the password policy live in one place.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// AccountInput carries the admin create/update payload after binding.
// On update an empty Password leaves the stored hash untouched, and a nil
// Roles slice leaves the role set untouched.
type AccountInput struct {
	Username  string
	Email     string
	Password  string
	UserType  string
	DosenID   *int
	StudentID *int
	Roles     []string
}

func (in AccountInput) validate(passwordRequired bool) error {
	if !utils.ValidateUsername(in.Username) {
		return fmt.Errorf("%w: username must be 3-50 characters (letters, digits, . _ -)", ErrInvalidAccount)
	}
	if !utils.ValidateEmail(in.Email) {
		return fmt.Errorf("%w: malformed email address", ErrInvalidAccount)
	}
	if in.UserType != models.UserTypeDosenStaff && in.UserType != models.UserTypeStudent {
		return fmt.Errorf("%w: user_type must be %s or %s", ErrInvalidAccount, models.UserTypeDosenStaff, models.UserTypeStudent)
	}
	if in.Password == "" && !passwordRequired {
		return nil
	}
	if ok, reason := utils.ValidatePassword(in.Password); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidAccount, reason)
	}
	return nil
}

// CreateAccount registers a new user and grants the requested roles.
func (s *UserService) CreateAccount(input AccountInput) (*models.User, error) {
	if err := input.validate(true); err != nil {
		return nil, err
	}

	var taken int64
	err := s.db.Model(&models.User{}).
		Where("(username = ? OR email = ?) AND delete_at IS NULL", input.Username, input.Email).
		Count(&taken).Error
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, ErrCredentialTaken
	}

	roles, err := s.resolveRoles(input.Roles)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := models.User{
		Username:  input.Username,
		Email:     input.Email,
		Password:  string(hashed),
		UserType:  input.UserType,
		DosenID:   input.DosenID,
		StudentID: input.StudentID,
		CreateAt:  &now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Roles").Create(&user).Error; err != nil {
			return err
		}
		return grantRoles(tx, user.UserID, roles)
	})
	if err != nil {
		return nil, err
	}

	user.Roles = roles
	return &user, nil
}

// UpdateAccount edits an existing user in place, rehashing the password and
// replacing the role set only when the input carries them.
func (s *UserService) UpdateAccount(userID int, input AccountInput) (*models.User, error) {
	if err := input.validate(false); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.Preload("Roles").
		Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error
	if err != nil {
		return nil, err
	}

	var taken int64
	err = s.db.Model(&models.User{}).
		Where("(username = ? OR email = ?) AND user_id <> ? AND delete_at IS NULL", input.Username, input.Email, userID).
		Count(&taken).Error
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, ErrCredentialTaken
	}

	var roles []models.Role
	if input.Roles != nil {
		if roles, err = s.resolveRoles(input.Roles); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"username":   input.Username,
		"email":      input.Email,
		"user_type":  input.UserType,
		"dosen_id":   input.DosenID,
		"student_id": input.StudentID,
		"update_at":  now,
	}
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password"] = string(hashed)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("user_id = ?", userID).Updates(updates).Error; err != nil {
			return err
		}
		if input.Roles == nil {
			return nil
		}
		if err := tx.Exec("DELETE FROM user_roles WHERE user_id = ?", userID).Error; err != nil {
			return err
		}
		return grantRoles(tx, userID, roles)
	})
	if err != nil {
		return nil, err
	}

	user.Username = input.Username
	user.Email = input.Email
	user.UserType = input.UserType
	user.DosenID = input.DosenID
	user.StudentID = input.StudentID
	user.UpdateAt = &now
	if input.Roles != nil {
		user.Roles = roles
	}
	return &user, nil
}

// DeleteAccount soft-deletes a user. Admins cannot remove themselves, so
// the system always keeps at least the acting admin account.
func (s *UserService) DeleteAccount(userID int, actor models.User) error {
	if userID == actor.UserID {
		return fmt.Errorf("%w: cannot delete your own account", ErrInvalidAccount)
	}

	result := s.db.Model(&models.User{}).
		Where("user_id = ? AND delete_at IS NULL", userID).
		Update("delete_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// resolveRoles maps role names to rows, rejecting names the roles table
// does not know.
func (s *UserService) resolveRoles(names []string) ([]models.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}

	unique := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			unique = append(unique, name)
		}
	}

	var roles []models.Role
	err := s.db.Where("name IN ? AND delete_at IS NULL", unique).Find(&roles).Error
	if err != nil {
		return nil, err
	}
	if len(roles) != len(unique) {
		return nil, fmt.Errorf("%w: requested %v", ErrUnknownRole, unique)
	}
	return roles, nil
}

func grantRoles(tx *gorm.DB, userID int, roles []models.Role) error {
	for _, role := range roles {
		if err := tx.Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", userID, role.RoleID).Error; err != nil {
			return err
		}
	}
	return nil
}

// FacultyInput is the admin faculty create/update payload.
type FacultyInput struct {
	Name string
}

// CreateFaculty adds a faculty to the directory.
func (s *UserService) CreateFaculty(input FacultyInput) (*models.Faculty, error) {
	name := utils.SanitizeInput(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: faculty name is required", ErrInvalidAccount)
	}

	now := time.Now()
	faculty := models.Faculty{Name: name, CreateAt: &now}
	if err := s.db.Create(&faculty).Error; err != nil {
		return nil, err
	}
	return &faculty, nil
}

// UpdateFaculty renames a faculty.
func (s *UserService) UpdateFaculty(facultyID int, input FacultyInput) (*models.Faculty, error) {
	name := utils.SanitizeInput(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: faculty name is required", ErrInvalidAccount)
	}

	var faculty models.Faculty
	err := s.db.Where("faculty_id = ? AND delete_at IS NULL", facultyID).First(&faculty).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.Model(&models.Faculty{}).
		Where("faculty_id = ?", facultyID).
		Updates(map[string]interface{}{"name": name, "update_at": now}).Error
	if err != nil {
		return nil, err
	}

	faculty.Name = name
	faculty.UpdateAt = &now
	return &faculty, nil
}

// DeleteFaculty soft-deletes a faculty that no lecturer or student profile
// still references.
func (s *UserService) DeleteFaculty(facultyID int) error {
	var inUse int64
	err := s.db.Model(&models.Dosen{}).
		Where("faculty_id = ? AND delete_at IS NULL", facultyID).
		Count(&inUse).Error
	if err != nil {
		return err
	}
	if inUse == 0 {
		err = s.db.Model(&models.Student{}).
			Where("faculty_id = ? AND delete_at IS NULL", facultyID).
			Count(&inUse).Error
		if err != nil {
			return err
		}
	}
	if inUse > 0 {
		return fmt.Errorf("%w: faculty still has linked profiles", ErrInvalidAccount)
	}

	result := s.db.Model(&models.Faculty{}).
		Where("faculty_id = ? AND delete_at IS NULL", facultyID).
		Update("delete_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
