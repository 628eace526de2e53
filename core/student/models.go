package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/edureach/backend/core"
)

// Role is the account role. An account is exactly one of these;
// the login flow checks the claimed role exhaustively.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

var Roles = []Role{RoleStudent, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin:
		return true
	}
	return false
}

type Student struct {
	ID            int       `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	ClassLevel    string    `json:"class_level" db:"class_level"`
	Role          Role      `json:"role" db:"role"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	PasswordHash  []byte    `json:"-" db:"password_hash"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// SetPassword irreversibly hashes pwd; the raw password is never stored.
func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

func (s *Student) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	ClassLevel      string `json:"class" validate:"required,classlevel"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc ServiceInterface) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.ClassLevel = core.CleanString(ns.ClassLevel, true /* lower */)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ns.Email)
}

// ResendVerification defines the payload to request a fresh verification link.
type ResendVerification struct {
	Email string `json:"email" validate:"required,email"`
}

func (rv *ResendVerification) Validate(validate *validator.Validate) error {
	rv.Email = core.CleanString(rv.Email, true /* lower */)
	return validate.Struct(rv)
}
