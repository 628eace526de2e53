// Package pgrepos implements the domain repositories on Postgres via sqlx.
package pgrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/edureach/backend/core/student"
)

const uniqueViolation = "23505"

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckEmailUniqueness(email string) error {
	var exists bool
	err := repo.db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM student WHERE lower(email) = lower($1))`, email)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return student.ErrEmailExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(st student.Student) (student.Student, error) {
	err := repo.db.QueryRowx(
		`INSERT INTO student (name, email, class_level, role, email_verified, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		st.Name, st.Email, st.ClassLevel, st.Role, st.EmailVerified, st.PasswordHash, st.CreatedAt, st.UpdatedAt,
	).Scan(&st.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return student.Student{}, student.ErrEmailExists
		}
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return st, nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	students := make([]student.Student, 0)
	if err := repo.db.Select(&students, `SELECT * FROM student ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(id int) (student.Student, error) {
	var st student.Student
	if err := repo.db.Get(&st, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student by id")
	}
	return st, nil
}

func (repo *studentRepository) GetStudentByEmail(email string) (student.Student, error) {
	var st student.Student
	if err := repo.db.Get(&st, `SELECT * FROM student WHERE lower(email) = lower($1)`, email); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student by email")
	}
	return st, nil
}

func (repo *studentRepository) UpdateStudent(st student.Student) (student.Student, error) {
	res, err := repo.db.Exec(
		`UPDATE student
		 SET name = $1, email = $2, class_level = $3, role = $4, email_verified = $5, password_hash = $6, updated_at = $7
		 WHERE id = $8`,
		st.Name, st.Email, st.ClassLevel, st.Role, st.EmailVerified, st.PasswordHash, st.UpdatedAt, st.ID,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	} else if n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}
