package student

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"time"

	"github.com/edureach/backend/core"
)

var (
	// errors
	ErrNotFound           = errors.New("account not found")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyVerified    = errors.New("email already verified")
)

type (
	Repository interface {
		CheckEmailUniqueness(email string) error
		CreateStudent(st Student) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id int) (Student, error)
		GetStudentByEmail(email string) (Student, error)
		UpdateStudent(st Student) (Student, error)
	}

	ServiceInterface interface {
		CheckEmailUniqueness(email string) error
		Register(ns NewStudent) (Student, error)
		Authenticate(email, pwd string) (Student, error)
		GetByID(id int) (Student, error)
		GetByEmail(email string) (Student, error)
		QueryAll() ([]Student, error)
		VerifyEmail(token string) (Student, error)
		RequestVerification(email string) error
		MarkVerified(st Student) (Student, error)
		PromoteAdmin(st Student) (Student, error)
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) ServiceInterface {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) CheckEmailUniqueness(email string) error {
	if err := svc.repo.CheckEmailUniqueness(email); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a new unverified student account and sends the verification
// link. The raw password is hashed before it ever reaches the repository.
func (svc *service) Register(ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	st := Student{
		Name:       ns.Name,
		Email:      ns.Email,
		ClassLevel: ns.ClassLevel,
		Role:       RoleStudent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := st.SetPassword(ns.Password); err != nil {
		return Student{}, err
	}

	st, err := svc.repo.CreateStudent(st)
	if err != nil {
		return Student{}, err
	}

	svc.sendVerificationMail(st)
	return st, nil
}

// Authenticate checks email+password. Failure is deliberately generic: a missing
// account and a wrong password are indistinguishable to the caller.
func (svc *service) Authenticate(email, pwd string) (Student, error) {
	st, err := svc.GetByEmail(email)
	if err != nil {
		if err == ErrNotFound {
			return Student{}, ErrInvalidCredentials
		}
		return Student{}, err
	}
	if err = st.CheckPassword(pwd); err != nil {
		return Student{}, ErrInvalidCredentials
	}
	return st, nil
}

func (svc *service) GetByID(id int) (Student, error) {
	return svc.repo.GetStudentByID(id)
}

func (svc *service) GetByEmail(email string) (Student, error) {
	return svc.repo.GetStudentByEmail(core.CleanString(email, true /* lower */))
}

func (svc *service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

// VerifyEmail validates a verification token and marks the bound account as
// verified. Re-verifying an already-verified account is a no-op reported as
// ErrAlreadyVerified so the caller can show the distinct message.
func (svc *service) VerifyEmail(token string) (Student, error) {
	email, err := verifyToken(token, svc.conf.EmailVerificationTimeout, []byte(svc.conf.SecretKey))
	if err != nil {
		return Student{}, err
	}

	st, err := svc.GetByEmail(email)
	if err != nil {
		return Student{}, err
	}
	if st.EmailVerified {
		return st, ErrAlreadyVerified
	}

	st, err = svc.MarkVerified(st)
	if err != nil {
		return Student{}, err
	}

	svc.sendWelcomeMail(st)
	return st, nil
}

// RequestVerification re-sends the verification link for an unverified account.
func (svc *service) RequestVerification(email string) error {
	st, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	if st.EmailVerified {
		return ErrAlreadyVerified
	}
	svc.sendVerificationMail(st)
	return nil
}

// MarkVerified is idempotent.
func (svc *service) MarkVerified(st Student) (Student, error) {
	if st.EmailVerified {
		return st, nil
	}
	st.EmailVerified = true
	st.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(st)
}

// PromoteAdmin is idempotent.
func (svc *service) PromoteAdmin(st Student) (Student, error) {
	if st.Role == RoleAdmin {
		return st, nil
	}
	st.Role = RoleAdmin
	st.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(st)
}

func (svc *service) verificationLink(st Student) string {
	token := makeToken(st.Email, []byte(svc.conf.SecretKey))
	return svc.conf.FrontendBaseURL + "/verify-email?token=" + url.QueryEscape(token)
}

func (svc *service) sendVerificationMail(st Student) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: st.Name, Address: st.Email}},
		Subject: "Verify your EduReach email",
		Body: fmt.Sprintf(
			"YOUR REGISTRATION IS SUCCESSFUL, WELCOME TO EDUREACH\n\n"+
				"Hello %s,\n\n"+
				"Please verify your email to activate your account: %s\n\n"+
				"If you did not sign up, please ignore this message.\n\n- EduReach",
			st.Name, svc.verificationLink(st),
		),
	})
}

func (svc *service) sendWelcomeMail(st Student) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: st.Name, Address: st.Email}},
		Subject: "Welcome to EduReach",
		Body: fmt.Sprintf(
			"Hello %s,\n\n"+
				"Your email has been verified successfully. You can now login to EduReach.\n\n- EduReach",
			st.Name,
		),
	})
}
