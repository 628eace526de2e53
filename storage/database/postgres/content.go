package pgrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edureach/backend/core/content"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ content.CourseRepository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) content.CourseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) QueryCourses(filter content.CourseFilter) ([]content.Course, error) {
	q := `SELECT * FROM course WHERE ($1 = '' OR class_level = $1) AND ($2 = '' OR lower(subject) = lower($2)) ORDER BY id`
	courses := make([]content.Course, 0)
	if err := repo.db.Select(&courses, q, filter.ClassLevel, filter.Subject); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo *courseRepository) GetCourse(id int) (content.Course, error) {
	var c content.Course
	if err := repo.db.Get(&c, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return content.Course{}, content.ErrCourseNotFound
		}
		return content.Course{}, errors.Wrap(err, "getting course")
	}
	return c, nil
}

func (repo *courseRepository) CreateCourse(c content.Course) (content.Course, error) {
	err := repo.db.QueryRowx(
		`INSERT INTO course (name, class_level, subject, description, videos, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		c.Name, c.ClassLevel, c.Subject, c.Description, c.Videos, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return content.Course{}, errors.Wrap(err, "creating course")
	}
	return c, nil
}

func (repo *courseRepository) UpdateCourse(c content.Course) (content.Course, error) {
	res, err := repo.db.Exec(
		`UPDATE course SET name = $1, class_level = $2, subject = $3, description = $4, videos = $5 WHERE id = $6`,
		c.Name, c.ClassLevel, c.Subject, c.Description, c.Videos, c.ID,
	)
	if err != nil {
		return content.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err != nil {
		return content.Course{}, errors.Wrap(err, "updating course")
	} else if n == 0 {
		return content.Course{}, content.ErrCourseNotFound
	}
	return c, nil
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ content.AssignmentRepository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *sqlx.DB) content.AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) QueryAssignments() ([]content.Assignment, error) {
	assignments := make([]content.Assignment, 0)
	if err := repo.db.Select(&assignments, `SELECT * FROM assignment ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return assignments, nil
}

func (repo *assignmentRepository) GetAssignment(id int) (content.Assignment, error) {
	var a content.Assignment
	if err := repo.db.Get(&a, `SELECT * FROM assignment WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return content.Assignment{}, content.ErrAssignmentNotFound
		}
		return content.Assignment{}, errors.Wrap(err, "getting assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) CreateAssignment(a content.Assignment) (content.Assignment, error) {
	err := repo.db.QueryRowx(
		`INSERT INTO assignment (course_id, title, description, questions, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		a.CourseID, a.Title, a.Description, a.Questions, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return content.Assignment{}, errors.Wrap(err, "creating assignment")
	}
	return a, nil
}

type progressRepository struct {
	db *sqlx.DB
}

var _ content.ProgressRepository = (*progressRepository)(nil)

func NewProgressRepository(db *sqlx.DB) content.ProgressRepository {
	return &progressRepository{db: db}
}

func (repo *progressRepository) QueryProgressByStudent(studentID int) ([]content.Progress, error) {
	progresses := make([]content.Progress, 0)
	err := repo.db.Select(&progresses, `SELECT * FROM progress WHERE student_id = $1 ORDER BY id`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	return progresses, nil
}

func (repo *progressRepository) GetCourseProgress(studentID, courseID int) (content.Progress, error) {
	var p content.Progress
	err := repo.db.Get(&p, `SELECT * FROM progress WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return content.Progress{}, content.ErrProgressNotFound
		}
		return content.Progress{}, errors.Wrap(err, "getting course progress")
	}
	return p, nil
}

func (repo *progressRepository) GetAssignmentProgress(studentID, assignmentID int) (content.Progress, error) {
	var p content.Progress
	err := repo.db.Get(&p, `SELECT * FROM progress WHERE student_id = $1 AND assignment_id = $2`, studentID, assignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return content.Progress{}, content.ErrProgressNotFound
		}
		return content.Progress{}, errors.Wrap(err, "getting assignment progress")
	}
	return p, nil
}

// UpsertProgress relies on the partial unique indexes keying one row per
// (student, course) or (student, assignment).
func (repo *progressRepository) UpsertProgress(p content.Progress) (content.Progress, error) {
	if p.ID != 0 {
		res, err := repo.db.Exec(
			`UPDATE progress SET videos = $1, score = $2, completed = $3, completed_at = $4 WHERE id = $5`,
			p.Videos, p.Score, p.Completed, p.CompletedAt, p.ID,
		)
		if err != nil {
			return content.Progress{}, errors.Wrap(err, "updating progress")
		}
		if n, err := res.RowsAffected(); err != nil {
			return content.Progress{}, errors.Wrap(err, "updating progress")
		} else if n == 0 {
			return content.Progress{}, content.ErrProgressNotFound
		}
		return p, nil
	}

	conflictKey := `(student_id, course_id) WHERE course_id IS NOT NULL`
	if p.AssignmentID != nil {
		conflictKey = `(student_id, assignment_id) WHERE assignment_id IS NOT NULL`
	}
	err := repo.db.QueryRowx(
		`INSERT INTO progress (student_id, course_id, assignment_id, videos, score, completed, completed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT `+conflictKey+`
		 DO UPDATE SET videos = EXCLUDED.videos, score = EXCLUDED.score,
		               completed = EXCLUDED.completed, completed_at = EXCLUDED.completed_at
		 RETURNING id`,
		p.StudentID, p.CourseID, p.AssignmentID, p.Videos, p.Score, p.Completed, p.CompletedAt, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return content.Progress{}, errors.Wrap(err, "upserting progress")
	}
	return p, nil
}
