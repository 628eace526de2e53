package content

import (
	"testing"
	"time"
)

type fakeCourseRepo struct {
	seq     int
	courses map[int]Course
}

func (r *fakeCourseRepo) QueryCourses(filter CourseFilter) ([]Course, error) {
	courses := make([]Course, 0)
	for _, c := range r.courses {
		if filter.ClassLevel != "" && c.ClassLevel != filter.ClassLevel {
			continue
		}
		if filter.Subject != "" && c.Subject != filter.Subject {
			continue
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (r *fakeCourseRepo) GetCourse(id int) (Course, error) {
	if c, ok := r.courses[id]; ok {
		return c, nil
	}
	return Course{}, ErrCourseNotFound
}

func (r *fakeCourseRepo) CreateCourse(c Course) (Course, error) {
	r.seq++
	c.ID = r.seq
	r.courses[c.ID] = c
	return c, nil
}

func (r *fakeCourseRepo) UpdateCourse(c Course) (Course, error) {
	if _, ok := r.courses[c.ID]; !ok {
		return Course{}, ErrCourseNotFound
	}
	r.courses[c.ID] = c
	return c, nil
}

type fakeAssignmentRepo struct {
	seq         int
	assignments map[int]Assignment
}

func (r *fakeAssignmentRepo) QueryAssignments() ([]Assignment, error) {
	assignments := make([]Assignment, 0)
	for _, a := range r.assignments {
		assignments = append(assignments, a)
	}
	return assignments, nil
}

func (r *fakeAssignmentRepo) GetAssignment(id int) (Assignment, error) {
	if a, ok := r.assignments[id]; ok {
		return a, nil
	}
	return Assignment{}, ErrAssignmentNotFound
}

func (r *fakeAssignmentRepo) CreateAssignment(a Assignment) (Assignment, error) {
	r.seq++
	a.ID = r.seq
	r.assignments[a.ID] = a
	return a, nil
}

type fakeProgressRepo struct {
	seq        int
	progresses map[int]Progress
}

func (r *fakeProgressRepo) QueryProgressByStudent(studentID int) ([]Progress, error) {
	progresses := make([]Progress, 0)
	for _, p := range r.progresses {
		if p.StudentID == studentID {
			progresses = append(progresses, p)
		}
	}
	return progresses, nil
}

func (r *fakeProgressRepo) GetCourseProgress(studentID, courseID int) (Progress, error) {
	for _, p := range r.progresses {
		if p.StudentID == studentID && p.CourseID != nil && *p.CourseID == courseID {
			return p, nil
		}
	}
	return Progress{}, ErrProgressNotFound
}

func (r *fakeProgressRepo) GetAssignmentProgress(studentID, assignmentID int) (Progress, error) {
	for _, p := range r.progresses {
		if p.StudentID == studentID && p.AssignmentID != nil && *p.AssignmentID == assignmentID {
			return p, nil
		}
	}
	return Progress{}, ErrProgressNotFound
}

func (r *fakeProgressRepo) UpsertProgress(p Progress) (Progress, error) {
	if p.ID == 0 {
		r.seq++
		p.ID = r.seq
	}
	r.progresses[p.ID] = p
	return p, nil
}

func newTestService() (ServiceInterface, *fakeCourseRepo, *fakeAssignmentRepo, *fakeProgressRepo) {
	courses := &fakeCourseRepo{courses: map[int]Course{}}
	assignments := &fakeAssignmentRepo{assignments: map[int]Assignment{}}
	progresses := &fakeProgressRepo{progresses: map[int]Progress{}}
	return NewService(courses, assignments, progresses), courses, assignments, progresses
}

func mcqAssignment() Assignment {
	opts := func(a, b string) map[string]string { return map[string]string{"a": a, "b": b} }
	return Assignment{
		Title: "Algebra basics",
		Questions: QuestionList{
			{Prompt: "1+1?", Options: opts("2", "3"), Answer: "a"},
			{Prompt: "2*3?", Options: opts("5", "6"), Answer: "b"},
			{Prompt: "9-4?", Options: opts("5", "4"), Answer: "a"},
			{Prompt: "8/2?", Options: opts("6", "4"), Answer: "b"},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestSubmitAssignmentMCQ(t *testing.T) {
	svc, _, assignments, progresses := newTestService()
	a, _ := assignments.CreateAssignment(mcqAssignment())

	tests := []struct {
		name        string
		answers     []string
		wantScore   float64
		wantCorrect int
	}{
		{name: "all correct", answers: []string{"a", "b", "a", "b"}, wantScore: 100, wantCorrect: 4},
		{name: "case and space folded", answers: []string{"A", " b ", "A", "B"}, wantScore: 100, wantCorrect: 4},
		{name: "half", answers: []string{"a", "b", "b", "a"}, wantScore: 50, wantCorrect: 2},
		{name: "short submission", answers: []string{"a"}, wantScore: 25, wantCorrect: 1},
		{name: "none", answers: nil, wantScore: 0, wantCorrect: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.SubmitAssignment(7, a.ID, tt.answers)
			if err != nil {
				t.Fatalf("SubmitAssignment(): %v", err)
			}
			if res.Score != tt.wantScore || res.Correct != tt.wantCorrect || res.Total != 4 {
				t.Errorf("Result = %+v, want score %v correct %d total 4", res, tt.wantScore, tt.wantCorrect)
			}
		})
	}

	// resubmission overwrites, never duplicates
	if len(progresses.progresses) != 1 {
		t.Errorf("progress rows = %d, want 1", len(progresses.progresses))
	}
	p, err := progresses.GetAssignmentProgress(7, a.ID)
	if err != nil {
		t.Fatalf("GetAssignmentProgress(): %v", err)
	}
	if !p.Completed || p.CompletedAt == nil {
		t.Error("submission must mark the assignment completed")
	}
}

func TestSubmitAssignmentFreeText(t *testing.T) {
	svc, _, assignments, _ := newTestService()
	a, _ := assignments.CreateAssignment(Assignment{
		Title: "Essay prompts",
		Questions: QuestionList{
			{Prompt: "Describe photosynthesis."},
			{Prompt: "Why does iron rust?"},
			{Prompt: "Explain gravity."},
		},
	})

	res, err := svc.SubmitAssignment(7, a.ID, []string{"Plants use light.", "", "Mass attracts mass."})
	if err != nil {
		t.Fatalf("SubmitAssignment(): %v", err)
	}
	if res.Score != 20 || res.Correct != 2 || res.Total != 3 {
		t.Errorf("Result = %+v, want score 20 correct 2 total 3", res)
	}

	if _, err = svc.SubmitAssignment(7, 999, nil); err != ErrAssignmentNotFound {
		t.Errorf("SubmitAssignment(unknown) error = %v, want %v", err, ErrAssignmentNotFound)
	}
}

func TestGetAssignmentQuestionsStripsAnswers(t *testing.T) {
	svc, _, assignments, _ := newTestService()
	a, _ := assignments.CreateAssignment(mcqAssignment())

	got, err := svc.GetAssignmentQuestions(a.ID)
	if err != nil {
		t.Fatalf("GetAssignmentQuestions(): %v", err)
	}
	for i, q := range got.Questions {
		if q.Answer != "" {
			t.Errorf("question %d still carries its answer", i)
		}
		if len(q.Options) == 0 {
			t.Errorf("question %d lost its options", i)
		}
	}

	// the stored assignment keeps its key
	stored, _ := assignments.GetAssignment(a.ID)
	if stored.Questions[0].Answer == "" {
		t.Error("stripping must not mutate the stored assignment")
	}
}

func TestCompleteVideo(t *testing.T) {
	svc, courses, _, _ := newTestService()
	c, _ := courses.CreateCourse(Course{
		Name:       "Physics",
		ClassLevel: "9th",
		Subject:    "science",
		Videos: VideoList{
			{Title: "Motion", URL: "http://v/1"},
			{Title: "Forces", URL: "http://v/2"},
			{Title: "Energy", URL: "http://v/3"},
		},
	})

	if _, err := svc.CompleteVideo(7, c.ID, 3); err != ErrInvalidVideoIndex {
		t.Errorf("CompleteVideo(out of range) error = %v, want %v", err, ErrInvalidVideoIndex)
	}
	if _, err := svc.CompleteVideo(7, c.ID, -1); err != ErrInvalidVideoIndex {
		t.Errorf("CompleteVideo(negative) error = %v, want %v", err, ErrInvalidVideoIndex)
	}

	p, err := svc.CompleteVideo(7, c.ID, 0)
	if err != nil {
		t.Fatalf("CompleteVideo(): %v", err)
	}
	if p.Completed {
		t.Error("course completed after one of three videos")
	}

	// re-watching is idempotent
	if p, err = svc.CompleteVideo(7, c.ID, 0); err != nil {
		t.Fatalf("CompleteVideo(): %v", err)
	}
	if p.Videos.Len() != 1 {
		t.Errorf("Videos.Len() = %d, want 1", p.Videos.Len())
	}

	if _, err = svc.CompleteVideo(7, c.ID, 1); err != nil {
		t.Fatalf("CompleteVideo(): %v", err)
	}
	if p, err = svc.CompleteVideo(7, c.ID, 2); err != nil {
		t.Fatalf("CompleteVideo(): %v", err)
	}
	if !p.Completed || p.CompletedAt == nil {
		t.Error("course must complete once every video is watched")
	}
}

func TestUpsertCourse(t *testing.T) {
	svc, _, _, _ := newTestService()

	c, err := svc.UpsertCourse(0, NewCourse{
		Name:       "Physics",
		ClassLevel: "9th",
		Subject:    "science",
		Videos:     []Video{{Title: "Motion", URL: "http://v/1"}},
	})
	if err != nil {
		t.Fatalf("UpsertCourse(create): %v", err)
	}
	if c.ID == 0 || c.CreatedAt.IsZero() {
		t.Errorf("created course = %+v", c)
	}

	// update keeps identity and videos when none are supplied
	updated, err := svc.UpsertCourse(c.ID, NewCourse{Name: "Physics I", ClassLevel: "9th", Subject: "science"})
	if err != nil {
		t.Fatalf("UpsertCourse(update): %v", err)
	}
	if updated.ID != c.ID || updated.Name != "Physics I" {
		t.Errorf("updated course = %+v", updated)
	}
	if len(updated.Videos) != 1 {
		t.Errorf("update dropped videos: %+v", updated.Videos)
	}

	if _, err = svc.UpsertCourse(999, NewCourse{Name: "X", ClassLevel: "9th", Subject: "s"}); err != ErrCourseNotFound {
		t.Errorf("UpsertCourse(unknown) error = %v, want %v", err, ErrCourseNotFound)
	}
}
