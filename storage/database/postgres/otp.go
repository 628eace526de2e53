package pgrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edureach/backend/core/otp"
)

type otpRepository struct {
	db *sqlx.DB
}

var _ otp.Repository = (*otpRepository)(nil) // interface compliance check

func NewOTPRepository(db *sqlx.DB) otp.Repository {
	return &otpRepository{db: db}
}

// ReplaceChallenge deletes any prior challenge for the student and inserts the
// new one in a single transaction. The unique index on student_id backstops the
// one-live-challenge invariant against concurrent issuers.
func (repo *otpRepository) ReplaceChallenge(ch otp.Challenge) (otp.Challenge, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return otp.Challenge{}, errors.Wrap(err, "replacing challenge")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.Exec(`DELETE FROM pending_otp WHERE student_id = $1`, ch.StudentID); err != nil {
		return otp.Challenge{}, errors.Wrap(err, "replacing challenge")
	}
	err = tx.QueryRowx(
		`INSERT INTO pending_otp (student_id, code_hash, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		ch.StudentID, ch.CodeHash, ch.ExpiresAt, ch.CreatedAt,
	).Scan(&ch.ID)
	if err != nil {
		return otp.Challenge{}, errors.Wrap(err, "replacing challenge")
	}

	if err = tx.Commit(); err != nil {
		return otp.Challenge{}, errors.Wrap(err, "replacing challenge")
	}
	return ch, nil
}

func (repo *otpRepository) GetChallenge(studentID int) (otp.Challenge, error) {
	var ch otp.Challenge
	if err := repo.db.Get(&ch, `SELECT * FROM pending_otp WHERE student_id = $1`, studentID); err != nil {
		if err == sql.ErrNoRows {
			return otp.Challenge{}, otp.ErrNoChallenge
		}
		return otp.Challenge{}, errors.Wrap(err, "getting challenge")
	}
	return ch, nil
}

// DeleteChallengeByID reports via RowsAffected whether this call was the one
// that consumed the row; concurrent consumers see false.
func (repo *otpRepository) DeleteChallengeByID(id int) (bool, error) {
	res, err := repo.db.Exec(`DELETE FROM pending_otp WHERE id = $1`, id)
	if err != nil {
		return false, errors.Wrap(err, "deleting challenge")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "deleting challenge")
	}
	return n > 0, nil
}
