package dummydb

import (
	"sort"
	"strings"

	"github.com/edureach/backend/core/content"
)

var (
	coursePKCount     int
	assignmentPKCount int
	progressPKCount   int
)

type courseRepository struct {
	db *courseTable
}

var _ content.CourseRepository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) content.CourseRepository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) QueryCourses(filter content.CourseFilter) ([]content.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]content.Course, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		if filter.ClassLevel != "" && c.ClassLevel != filter.ClassLevel {
			continue
		}
		if filter.Subject != "" && !strings.EqualFold(c.Subject, filter.Subject) {
			continue
		}
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *courseRepository) GetCourse(id int) (content.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return content.Course{}, content.ErrCourseNotFound
}

func (repo *courseRepository) CreateCourse(c content.Course) (content.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	coursePKCount++
	c.ID = coursePKCount
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *courseRepository) UpdateCourse(c content.Course) (content.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[c.ID]; !ok {
		return content.Course{}, content.ErrCourseNotFound
	}
	repo.db.table[c.ID] = &c
	return c, nil
}

type assignmentRepository struct {
	db *assignmentTable
}

var _ content.AssignmentRepository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) content.AssignmentRepository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) QueryAssignments() ([]content.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]content.Assignment, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		assignments = append(assignments, *a)
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	return assignments, nil
}

func (repo *assignmentRepository) GetAssignment(id int) (content.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return content.Assignment{}, content.ErrAssignmentNotFound
}

func (repo *assignmentRepository) CreateAssignment(a content.Assignment) (content.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	assignmentPKCount++
	a.ID = assignmentPKCount
	repo.db.table[a.ID] = &a
	return a, nil
}

type progressRepository struct {
	db *progressTable
}

var _ content.ProgressRepository = (*progressRepository)(nil)

func NewProgressRepository(db *DB) content.ProgressRepository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) QueryProgressByStudent(studentID int) ([]content.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	progresses := make([]content.Progress, 0)
	for _, p := range repo.db.table {
		if p.StudentID == studentID {
			progresses = append(progresses, *p)
		}
	}
	sort.Slice(progresses, func(i, j int) bool { return progresses[i].ID < progresses[j].ID })
	return progresses, nil
}

func (repo *progressRepository) GetCourseProgress(studentID, courseID int) (content.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, p := range repo.db.table {
		if p.StudentID == studentID && p.CourseID != nil && *p.CourseID == courseID {
			return *p, nil
		}
	}
	return content.Progress{}, content.ErrProgressNotFound
}

func (repo *progressRepository) GetAssignmentProgress(studentID, assignmentID int) (content.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, p := range repo.db.table {
		if p.StudentID == studentID && p.AssignmentID != nil && *p.AssignmentID == assignmentID {
			return *p, nil
		}
	}
	return content.Progress{}, content.ErrProgressNotFound
}

func (repo *progressRepository) UpsertProgress(p content.Progress) (content.Progress, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if p.ID == 0 {
		// match on the natural key first
		for _, existing := range repo.db.table {
			if existing.StudentID != p.StudentID {
				continue
			}
			sameCourse := p.CourseID != nil && existing.CourseID != nil && *existing.CourseID == *p.CourseID
			sameAssignment := p.AssignmentID != nil && existing.AssignmentID != nil && *existing.AssignmentID == *p.AssignmentID
			if sameCourse || sameAssignment {
				p.ID = existing.ID
				p.CreatedAt = existing.CreatedAt
				break
			}
		}
	}
	if p.ID == 0 {
		progressPKCount++
		p.ID = progressPKCount
	}
	repo.db.table[p.ID] = &p
	return p, nil
}
