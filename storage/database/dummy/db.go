// Package dummydb provides mutex-guarded in-memory repositories for tests.
package dummydb

import (
	"sync"

	"github.com/edureach/backend/core/contact"
	"github.com/edureach/backend/core/content"
	"github.com/edureach/backend/core/otp"
	"github.com/edureach/backend/core/student"
)

type (
	DB struct {
		student    *studentTable
		otp        *otpTable
		course     *courseTable
		assignment *assignmentTable
		progress   *progressTable
		contact    *contactTable
	}

	studentTable struct {
		sync.RWMutex
		table map[int]*student.Student
	}

	otpTable struct {
		sync.RWMutex
		table map[int]*otp.Challenge // keyed by challenge ID
	}

	courseTable struct {
		sync.RWMutex
		table map[int]*content.Course
	}

	assignmentTable struct {
		sync.RWMutex
		table map[int]*content.Assignment
	}

	progressTable struct {
		sync.RWMutex
		table map[int]*content.Progress
	}

	contactTable struct {
		sync.RWMutex
		table map[int]*contact.Message
	}
)

func Open() (*DB, error) {
	db := &DB{
		student:    &studentTable{table: make(map[int]*student.Student)},
		otp:        &otpTable{table: make(map[int]*otp.Challenge)},
		course:     &courseTable{table: make(map[int]*content.Course)},
		assignment: &assignmentTable{table: make(map[int]*content.Assignment)},
		progress:   &progressTable{table: make(map[int]*content.Progress)},
		contact:    &contactTable{table: make(map[int]*contact.Message)},
	}
	return db, nil
}
