// Package auth sequences the login pipeline: password check, email-verification
// gate, OTP challenge and session elevation. It owns only the transient Session
// state; accounts and pending codes are reached through their owning services.
package auth

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/edureach/backend/core"
	"github.com/edureach/backend/core/otp"
	"github.com/edureach/backend/core/student"
)

// ResendCooldown is the minimum delay between OTP emails for one login session.
const ResendCooldown = 30 * time.Second

var (
	nowFunc = time.Now // mockable

	// errors
	ErrEmailNotVerified = errors.New("email not verified. Please check your inbox for the verification link")
	ErrNoPendingLogin   = errors.New("no pending login session")
	ErrResendCooldown   = errors.New("please wait before requesting another OTP")
)

// RoleMismatchError reports a login with the wrong claimed role. The message is
// role-specific so the user is pointed at the right login button.
type RoleMismatchError struct {
	Claimed student.Role
}

func (e RoleMismatchError) Error() string {
	if e.Claimed == student.RoleAdmin {
		return `this account is not an admin. Use "Login as Student"`
	}
	return `this is an admin account. Use "Login as Admin"`
}

// Session is the transient elevation state between a successful password check
// and a successful OTP verification. The zero value means anonymous. It is
// passed explicitly into every call; there is no ambient current-user lookup.
type Session struct {
	PendingStudentID int
	OTPSentAt        time.Time
}

func (s Session) Pending() bool { return s.PendingStudentID != 0 }

type (
	// StudentStore is the slice of the credential store the orchestrator needs.
	StudentStore interface {
		Authenticate(email, pwd string) (student.Student, error)
		GetByID(id int) (student.Student, error)
	}

	// Challenger issues and verifies one-time passcodes.
	Challenger interface {
		Issue(st student.Student) (string, error)
		Verify(studentID int, code string) error
		IssuedAt(studentID int) (time.Time, error)
	}

	Service struct {
		students StudentStore
		otp      Challenger
		mailSvc  core.EmailService
		log      core.Logger
	}
)

func NewService(students StudentStore, challenger Challenger, mailSvc core.EmailService, log core.Logger) *Service {
	return &Service{
		students: students,
		otp:      challenger,
		mailSvc:  mailSvc,
		log:      log,
	}
}

// Login runs the first elevation step: credentials, claimed role and the
// verification gate. On success an OTP has been emailed and the returned
// Session awaits it; on any failure the session stays anonymous.
func (svc *Service) Login(email, pwd string, claimedRole student.Role) (Session, error) {
	st, err := svc.students.Authenticate(email, pwd)
	if err != nil {
		return Session{}, err
	}

	switch claimedRole {
	case student.RoleAdmin:
		if !st.IsAdmin() {
			return Session{}, RoleMismatchError{Claimed: student.RoleAdmin}
		}
	case student.RoleStudent:
		if st.IsAdmin() {
			return Session{}, RoleMismatchError{Claimed: student.RoleStudent}
		}
	default:
		return Session{}, RoleMismatchError{Claimed: claimedRole}
	}

	if !st.EmailVerified {
		return Session{}, ErrEmailNotVerified
	}

	if err = svc.issueAndSend(st); err != nil {
		return Session{}, err
	}
	return Session{PendingStudentID: st.ID, OTPSentAt: nowFunc().UTC()}, nil
}

// VerifyOTP consumes the pending code. An invalid code keeps the session alive
// for further attempts; an expired or missing challenge means the login must be
// restarted from scratch.
func (svc *Service) VerifyOTP(sess Session, code string) (student.Student, error) {
	if !sess.Pending() {
		return student.Student{}, ErrNoPendingLogin
	}
	if err := svc.otp.Verify(sess.PendingStudentID, code); err != nil {
		return student.Student{}, err
	}
	return svc.students.GetByID(sess.PendingStudentID)
}

// ResendOTP reissues the pending code, rate-limited to once per ResendCooldown.
// The cooldown is judged from the stored challenge's creation time, never from
// the session value the client hands back, so replaying a stale session cannot
// bypass the throttle. The returned Session carries the new send timestamp as a
// display hint.
func (svc *Service) ResendOTP(sess Session) (Session, error) {
	if !sess.Pending() {
		return sess, ErrNoPendingLogin
	}

	issuedAt, err := svc.otp.IssuedAt(sess.PendingStudentID)
	switch err {
	case nil:
		if now := nowFunc().UTC(); now.Sub(issuedAt) < ResendCooldown {
			return sess, ErrResendCooldown
		}
	case otp.ErrNoChallenge:
		// nothing live to supersede; issue freely
	default:
		return sess, err
	}

	st, err := svc.students.GetByID(sess.PendingStudentID)
	if err != nil {
		return sess, err
	}
	if !st.EmailVerified {
		return sess, ErrEmailNotVerified
	}

	if err = svc.issueAndSend(st); err != nil {
		return sess, err
	}
	sess.OTPSentAt = nowFunc().UTC()
	return sess, nil
}

func (svc *Service) issueAndSend(st student.Student) error {
	code, err := svc.otp.Issue(st)
	if err != nil {
		return err
	}
	svc.log.Info(fmt.Sprintf("OTP issued for student %d; delivery queued", st.ID))
	// Delivery is best-effort: a failed send is logged by the email service and
	// the user can request a resend once the cooldown lapses.
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: st.Name, Address: st.Email}},
		Subject: "Your EduReach login OTP",
		Body: fmt.Sprintf(
			"Hello %s,\n\n"+
				"Your one-time password (OTP) is: %s\n"+
				"It will expire in %d minutes.\n\n"+
				"If you didn't attempt to login, please ignore this email.\n\n- EduReach",
			st.Name, code, int(otp.TTL.Minutes()),
		),
	})
	return nil
}
