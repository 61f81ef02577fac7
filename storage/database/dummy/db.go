package dummydb

import (
	"sync"

	"github.com/somalabs/soma/core/account"
	"github.com/somalabs/soma/core/course"
	"github.com/somalabs/soma/core/progress"
)

type (
	DB struct {
		account  *accountTable
		course   *courseTable
		lesson   *lessonTable
		progress *progressTable
	}

	accountTable struct {
		sync.RWMutex
		table map[string]*account.User
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	lessonTable struct {
		sync.RWMutex
		table map[string]*course.Lesson
	}

	progressTable struct {
		sync.RWMutex
		table map[string]*progress.Record
	}
)

func Open() (*DB, error) {
	db := &DB{
		account:  &accountTable{table: make(map[string]*account.User)},
		course:   &courseTable{table: make(map[string]*course.Course)},
		lesson:   &lessonTable{table: make(map[string]*course.Lesson)},
		progress: &progressTable{table: make(map[string]*progress.Record)},
	}
	return db, nil
}
