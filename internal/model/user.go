package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Domain roles. The directory stores the viewer role as "visor".
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"

	directoryRoleViewer = "visor"
)

// User is a row of the external user directory (table usuarios).
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"column:password;type:varchar(255);not null" json:"-"`
	Name      string    `gorm:"column:nombre;type:varchar(255);not null" json:"name"`
	Role      string    `gorm:"column:rol;type:varchar(20);not null" json:"-"`
	Active    bool      `gorm:"column:activo;not null" json:"active"`
	CreatedAt time.Time `gorm:"column:creado_en;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:actualizado_en;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "usuarios"
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DomainRole is the user's role in the application's vocabulary.
func (u *User) DomainRole() string {
	return DomainRole(u.Role)
}

// DomainRole maps a directory role value to admin, editor or viewer. Unknown values map to "".
func DomainRole(directory string) string {
	switch strings.ToLower(strings.TrimSpace(directory)) {
	case RoleAdmin:
		return RoleAdmin
	case RoleEditor:
		return RoleEditor
	case directoryRoleViewer, RoleViewer:
		return RoleViewer
	default:
		return ""
	}
}

// DirectoryRole maps a domain role to the value stored in usuarios.rol.
func DirectoryRole(role string) string {
	switch DomainRole(role) {
	case RoleAdmin:
		return RoleAdmin
	case RoleEditor:
		return RoleEditor
	case RoleViewer:
		return directoryRoleViewer
	default:
		return ""
	}
}

func ValidRole(role string) bool {
	return DomainRole(role) != ""
}
