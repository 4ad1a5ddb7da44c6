package models

import (
	"time"
)

// User types mirror the account classes in the university identity export.
const (
	UserTypeDosenStaff = "DOSEN_STAFF"
	UserTypeStudent    = "STUDENT"
)

// Role names used by the proposal workflow.
const (
	RoleAdmin       = "ADMIN"
	RoleDosen       = "DOSEN"
	RoleReviewer    = "REVIEWER"
	RoleFacultyHead = "KETUA_PENELITIAN_FAKULTAS"
	RoleDekan       = "DEKAN"
	RoleKetuaLPPM   = "KETUA_LPPM"
)

type User struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Username  string     `gorm:"column:username;unique" json:"username"`
	Email     string     `gorm:"column:email;unique" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	UserType  string     `gorm:"column:user_type" json:"user_type"`
	DosenID   *int       `gorm:"column:dosen_id" json:"dosen_id,omitempty"`
	StudentID *int       `gorm:"column:student_id" json:"student_id,omitempty"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Roles   []Role   `gorm:"many2many:user_roles;foreignKey:UserID;joinForeignKey:user_id;references:RoleID;joinReferences:role_id" json:"roles,omitempty"`
	Dosen   *Dosen   `gorm:"foreignKey:DosenID;references:DosenID" json:"dosen,omitempty"`
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Name     string     `gorm:"column:name" json:"name"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// Dosen is the lecturer profile a DOSEN_STAFF account may link to.
type Dosen struct {
	DosenID   int        `gorm:"primaryKey;column:dosen_id" json:"dosen_id"`
	NIDN      string     `gorm:"column:nidn;unique" json:"nidn"`
	Name      string     `gorm:"column:name" json:"name"`
	FacultyID *int       `gorm:"column:faculty_id" json:"faculty_id,omitempty"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Faculty *Faculty `gorm:"foreignKey:FacultyID;references:FacultyID" json:"faculty,omitempty"`
}

// Student is the student profile a STUDENT account may link to.
type Student struct {
	StudentID int        `gorm:"primaryKey;column:student_id" json:"student_id"`
	NIM       string     `gorm:"column:nim;unique" json:"nim"`
	Name      string     `gorm:"column:name" json:"name"`
	FacultyID *int       `gorm:"column:faculty_id" json:"faculty_id,omitempty"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Faculty *Faculty `gorm:"foreignKey:FacultyID;references:FacultyID" json:"faculty,omitempty"`
}

type Faculty struct {
	FacultyID int        `gorm:"primaryKey;column:faculty_id" json:"faculty_id"`
	Name      string     `gorm:"column:name" json:"name"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

func (Dosen) TableName() string {
	return "dosen"
}

func (Student) TableName() string {
	return "students"
}

func (Faculty) TableName() string {
	return "faculties"
}

// HasRole reports whether the user's preloaded role set contains name.
// Missing or partial role data reads as "no".
func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the user's role names for token claims and API payloads.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// DisplayName resolves the human name from the linked profile, falling back
// to the username.
func (u User) DisplayName() string {
	if u.Dosen != nil && u.Dosen.Name != "" {
		return u.Dosen.Name
	}
	if u.Student != nil && u.Student.Name != "" {
		return u.Student.Name
	}
	return u.Username
}
