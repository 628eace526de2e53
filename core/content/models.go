// Package content holds the course, assignment and progress domain: the material
// students browse and the scoring/tracking around it.
package content

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type (
	// Video is one lesson inside a course. Videos have no identity of their own;
	// they live as an ordered list on the course and are referenced by index.
	Video struct {
		Title       string `json:"title" validate:"required"`
		URL         string `json:"url" validate:"required,url"`
		Description string `json:"description"`
	}

	Course struct {
		ID          int       `json:"id" db:"id"`
		Name        string    `json:"name" db:"name"`
		ClassLevel  string    `json:"class" db:"class_level"`
		Subject     string    `json:"subject" db:"subject"`
		Description string    `json:"description" db:"description"`
		Videos      VideoList `json:"videos" db:"videos"`
		CreatedAt   time.Time `json:"created_at" db:"created_at"`
	}

	// Question is a single assignment item. MCQ questions carry lettered Options
	// and the Answer holds the correct letter; free-text questions have no
	// Options and are graded on presence only.
	Question struct {
		Prompt  string            `json:"prompt"`
		Options map[string]string `json:"options,omitempty"`
		Answer  string            `json:"answer,omitempty"`
	}

	Assignment struct {
		ID          int          `json:"id" db:"id"`
		CourseID    *int         `json:"course_id" db:"course_id"`
		Title       string       `json:"title" db:"title"`
		Description string       `json:"description" db:"description"`
		Questions   QuestionList `json:"questions" db:"questions"`
		CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	}

	// Progress is one student's state against either a course (video tracking)
	// or an assignment (score); exactly one of CourseID/AssignmentID is set.
	Progress struct {
		ID           int        `json:"id" db:"id"`
		StudentID    int        `json:"student_id" db:"student_id"`
		CourseID     *int       `json:"course_id" db:"course_id"`
		AssignmentID *int       `json:"assignment_id" db:"assignment_id"`
		Videos       VideoSet   `json:"videos" db:"videos"`
		Score        float64    `json:"score" db:"score"`
		Completed    bool       `json:"completed" db:"completed"`
		CompletedAt  *time.Time `json:"completed_at" db:"completed_at"`
		CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	}

	// NewCourse is the admin payload for creating or updating a course.
	NewCourse struct {
		Name        string  `json:"name" validate:"required"`
		ClassLevel  string  `json:"class" validate:"required,classlevel"`
		Subject     string  `json:"subject" validate:"required"`
		Description string  `json:"description"`
		Videos      []Video `json:"videos" validate:"dive"`
	}

	// VideoList and QuestionList are stored as JSON columns.
	VideoList    []Video
	QuestionList []Question
)

func (q Question) IsMCQ() bool { return len(q.Options) > 0 }

// Public strips the answer so graded questions can be served to students.
func (q Question) Public() Question {
	q.Answer = ""
	return q
}

// MCQ reports whether the assignment is graded by answer key. Mixed assignments
// do not exist; the first question decides.
func (a Assignment) MCQ() bool {
	return len(a.Questions) > 0 && a.Questions[0].IsMCQ()
}

func (vl VideoList) Value() (driver.Value, error) {
	if vl == nil {
		vl = VideoList{}
	}
	return json.Marshal(vl)
}

func (vl *VideoList) Scan(src interface{}) error {
	return scanJSON(src, vl, "VideoList")
}

func (ql QuestionList) Value() (driver.Value, error) {
	if ql == nil {
		ql = QuestionList{}
	}
	return json.Marshal(ql)
}

func (ql *QuestionList) Scan(src interface{}) error {
	return scanJSON(src, ql, "QuestionList")
}

func scanJSON(src, dst interface{}, what string) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return errors.Wrapf(json.Unmarshal(v, dst), "scanning %s", what)
	case string:
		return errors.Wrapf(json.Unmarshal([]byte(v), dst), "scanning %s", what)
	}
	return errors.Errorf("scanning %s: unsupported type %T", what, src)
}

// normalizeAnswer folds case and surrounding space so "b" matches "B ".
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
