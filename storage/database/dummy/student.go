package dummydb

import (
	"sort"
	"strings"

	"github.com/edureach/backend/core/student"
)

var studentPKCount int

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, st := range repo.db.table {
		students = append(students, *st)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students
}

func (repo *studentRepository) CheckEmailUniqueness(email string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, st := range repo.db.table {
		if strings.EqualFold(st.Email, email) {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if strings.EqualFold(existing.Email, st.Email) {
			return student.Student{}, student.ErrEmailExists
		}
	}

	studentPKCount++
	st.ID = studentPKCount
	repo.db.table[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudentByID(id int) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if st, ok := repo.db.table[id]; ok {
		return *st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByEmail(email string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, st := range repo.db.table {
		if strings.EqualFold(st.Email, email) {
			return *st, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[st.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.table[st.ID] = &st
	return st, nil
}
