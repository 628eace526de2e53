package content

import (
	"errors"
	"time"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrCourseNotFound     = errors.New("course not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrProgressNotFound   = errors.New("no progress recorded")
	ErrInvalidVideoIndex  = errors.New("no such video in this course")
)

type (
	// CourseFilter narrows course queries; empty fields match everything.
	CourseFilter struct {
		ClassLevel string
		Subject    string
	}

	// Result is the outcome of one assignment submission. For graded work Score
	// is the percentage of correct answers; for free-text work every answered
	// question earns a fixed share with the total capped at 100.
	Result struct {
		Score   float64 `json:"score"`
		Correct int     `json:"correct"`
		Total   int     `json:"total"`
	}

	CourseRepository interface {
		QueryCourses(filter CourseFilter) ([]Course, error)
		GetCourse(id int) (Course, error)
		CreateCourse(c Course) (Course, error)
		UpdateCourse(c Course) (Course, error)
	}

	AssignmentRepository interface {
		QueryAssignments() ([]Assignment, error)
		GetAssignment(id int) (Assignment, error)
		CreateAssignment(a Assignment) (Assignment, error)
	}

	ProgressRepository interface {
		QueryProgressByStudent(studentID int) ([]Progress, error)
		GetCourseProgress(studentID, courseID int) (Progress, error)
		GetAssignmentProgress(studentID, assignmentID int) (Progress, error)
		// UpsertProgress inserts or replaces the single row keyed by
		// (student, course) or (student, assignment).
		UpsertProgress(p Progress) (Progress, error)
	}

	ServiceInterface interface {
		QueryCourses(filter CourseFilter) ([]Course, error)
		GetCourse(id int) (Course, error)
		UpsertCourse(id int, nc NewCourse) (Course, error)
		AttachVideos(courseID int, videos []Video) (Course, error)
		QueryAssignments() ([]Assignment, error)
		GetAssignment(id int) (Assignment, error)
		GetAssignmentQuestions(id int) (Assignment, error)
		SubmitAssignment(studentID, assignmentID int, answers []string) (Result, error)
		CompleteVideo(studentID, courseID, index int) (Progress, error)
		StudentProgress(studentID int) ([]Progress, error)
		CourseProgress(studentID, courseID int) (Progress, error)
	}

	service struct {
		courses     CourseRepository
		assignments AssignmentRepository
		progress    ProgressRepository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(courses CourseRepository, assignments AssignmentRepository, progress ProgressRepository) ServiceInterface {
	return &service{
		courses:     courses,
		assignments: assignments,
		progress:    progress,
	}
}

func (svc *service) QueryCourses(filter CourseFilter) ([]Course, error) {
	return svc.courses.QueryCourses(filter)
}

func (svc *service) GetCourse(id int) (Course, error) {
	return svc.courses.GetCourse(id)
}

// UpsertCourse creates the course when id is zero and updates it otherwise.
func (svc *service) UpsertCourse(id int, nc NewCourse) (Course, error) {
	course := Course{
		Name:        nc.Name,
		ClassLevel:  nc.ClassLevel,
		Subject:     nc.Subject,
		Description: nc.Description,
		Videos:      VideoList(nc.Videos),
	}
	if id == 0 {
		course.CreatedAt = nowFunc().UTC()
		return svc.courses.CreateCourse(course)
	}

	existing, err := svc.courses.GetCourse(id)
	if err != nil {
		return Course{}, err
	}
	course.ID = existing.ID
	course.CreatedAt = existing.CreatedAt
	if course.Videos == nil {
		course.Videos = existing.Videos
	}
	return svc.courses.UpdateCourse(course)
}

// AttachVideos replaces the course's video list.
func (svc *service) AttachVideos(courseID int, videos []Video) (Course, error) {
	course, err := svc.courses.GetCourse(courseID)
	if err != nil {
		return Course{}, err
	}
	course.Videos = VideoList(videos)
	return svc.courses.UpdateCourse(course)
}

func (svc *service) QueryAssignments() ([]Assignment, error) {
	return svc.assignments.QueryAssignments()
}

func (svc *service) GetAssignment(id int) (Assignment, error) {
	return svc.assignments.GetAssignment(id)
}

// GetAssignmentQuestions returns the assignment with answers stripped, safe to
// serve to students before submission.
func (svc *service) GetAssignmentQuestions(id int) (Assignment, error) {
	a, err := svc.assignments.GetAssignment(id)
	if err != nil {
		return Assignment{}, err
	}
	public := make(QuestionList, len(a.Questions))
	for i, q := range a.Questions {
		public[i] = q.Public()
	}
	a.Questions = public
	return a, nil
}

// SubmitAssignment grades answers positionally against the assignment's
// questions and records the result as completed progress. Submitting again
// overwrites the previous score.
func (svc *service) SubmitAssignment(studentID, assignmentID int, answers []string) (Result, error) {
	a, err := svc.assignments.GetAssignment(assignmentID)
	if err != nil {
		return Result{}, err
	}

	res := grade(a, answers)

	now := nowFunc().UTC()
	p, err := svc.progress.GetAssignmentProgress(studentID, assignmentID)
	if err != nil {
		if err != ErrProgressNotFound {
			return Result{}, err
		}
		p = Progress{StudentID: studentID, AssignmentID: &a.ID, CreatedAt: now}
	}
	p.Score = res.Score
	p.Completed = true
	p.CompletedAt = &now
	if _, err = svc.progress.UpsertProgress(p); err != nil {
		return Result{}, err
	}
	return res, nil
}

func grade(a Assignment, answers []string) Result {
	res := Result{Total: len(a.Questions)}
	if res.Total == 0 {
		return res
	}

	answerAt := func(i int) string {
		if i < len(answers) {
			return normalizeAnswer(answers[i])
		}
		return ""
	}

	if a.MCQ() {
		for i, q := range a.Questions {
			if ans := answerAt(i); ans != "" && ans == normalizeAnswer(q.Answer) {
				res.Correct++
			}
		}
		res.Score = 100 * float64(res.Correct) / float64(res.Total)
		return res
	}

	// free text: presence earns a fixed share, capped
	for i := range a.Questions {
		if answerAt(i) != "" {
			res.Correct++
		}
	}
	res.Score = float64(res.Correct * 10)
	if res.Score > 100 {
		res.Score = 100
	}
	return res
}

// CompleteVideo marks one video of a course as watched. The course is completed
// once every video in its list has been watched at least once.
func (svc *service) CompleteVideo(studentID, courseID, index int) (Progress, error) {
	course, err := svc.courses.GetCourse(courseID)
	if err != nil {
		return Progress{}, err
	}
	if index < 0 || index >= len(course.Videos) {
		return Progress{}, ErrInvalidVideoIndex
	}

	now := nowFunc().UTC()
	p, err := svc.progress.GetCourseProgress(studentID, courseID)
	if err != nil {
		if err != ErrProgressNotFound {
			return Progress{}, err
		}
		p = Progress{StudentID: studentID, CourseID: &course.ID, CreatedAt: now}
	}

	p.Videos.Add(index)
	if !p.Completed && p.Videos.Len() == len(course.Videos) {
		p.Completed = true
		p.CompletedAt = &now
	}
	return svc.progress.UpsertProgress(p)
}

func (svc *service) StudentProgress(studentID int) ([]Progress, error) {
	return svc.progress.QueryProgressByStudent(studentID)
}

func (svc *service) CourseProgress(studentID, courseID int) (Progress, error) {
	return svc.progress.GetCourseProgress(studentID, courseID)
}
