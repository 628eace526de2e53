package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/edureach/backend/core/student"
)

const (
	// TTL is how long an issued code stays valid.
	TTL = 5 * time.Minute

	codeMax = 1000000 // codes are 6 digits, zero-padded
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNoChallenge = errors.New("OTP expired or not found")
	ErrExpired     = errors.New("OTP expired")
	ErrInvalidCode = errors.New("invalid OTP")
)

type (
	// Challenge is a pending one-time-passcode bound to a single account.
	// At most one live Challenge exists per account; issuing a new one
	// supersedes any prior record.
	Challenge struct {
		ID        int       `db:"id"`
		StudentID int       `db:"student_id"`
		CodeHash  []byte    `db:"code_hash"`
		ExpiresAt time.Time `db:"expires_at"` // UTC
		CreatedAt time.Time `db:"created_at"` // UTC
	}

	Repository interface {
		// ReplaceChallenge deletes any prior challenge for the same student and
		// inserts ch as a single transaction, so two concurrent issuances can
		// never leave two live challenges.
		ReplaceChallenge(ch Challenge) (Challenge, error)
		GetChallenge(studentID int) (Challenge, error)
		// DeleteChallengeByID conditionally deletes one challenge row and
		// reports whether it was still live. This is the single atomic step
		// that makes codes single-use under concurrent verification.
		DeleteChallengeByID(id int) (bool, error)
	}

	Manager struct {
		repo Repository
	}
)

func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo}
}

func (ch *Challenge) expired(now time.Time) bool {
	return now.After(ch.ExpiresAt)
}

// Issue generates a fresh 6-digit code for the student, stores its salted hash
// with a 5 minute expiry and returns the plaintext exactly once. Any prior
// challenge for the student is invalidated.
func (m *Manager) Issue(st student.Student) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	now := nowFunc().UTC()
	if _, err = m.repo.ReplaceChallenge(Challenge{
		StudentID: st.ID,
		CodeHash:  hash,
		ExpiresAt: now.Add(TTL),
		CreatedAt: now,
	}); err != nil {
		return "", err
	}
	return code, nil
}

// IssuedAt reports when the student's live challenge was created, so callers
// can rate-limit re-issuance from stored state rather than anything the client
// supplies. No live challenge reports ErrNoChallenge.
func (m *Manager) IssuedAt(studentID int) (time.Time, error) {
	ch, err := m.repo.GetChallenge(studentID)
	if err != nil {
		return time.Time{}, err
	}
	return ch.CreatedAt, nil
}

// Verify consumes the student's pending challenge:
//   - no live challenge       -> ErrNoChallenge
//   - past expiry             -> record deleted, ErrExpired
//   - code mismatch           -> record left intact, ErrInvalidCode
//   - match                   -> record deleted (single-use), nil
//
// A challenge consumed by a concurrent call reports ErrNoChallenge, never a
// second success.
func (m *Manager) Verify(studentID int, code string) error {
	ch, err := m.repo.GetChallenge(studentID)
	if err != nil {
		if err == ErrNoChallenge {
			return ErrNoChallenge
		}
		return err
	}

	if ch.expired(nowFunc().UTC()) {
		if _, err = m.repo.DeleteChallengeByID(ch.ID); err != nil {
			return err
		}
		return ErrExpired
	}

	if code == "" || bcrypt.CompareHashAndPassword(ch.CodeHash, []byte(code)) != nil {
		return ErrInvalidCode
	}

	deleted, err := m.repo.DeleteChallengeByID(ch.ID)
	if err != nil {
		return err
	}
	if !deleted {
		// lost the race against another verify; the code was already consumed
		return ErrNoChallenge
	}
	return nil
}

// generateCode returns a uniformly random 6-digit code, leading zeros preserved.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
