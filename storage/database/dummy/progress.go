package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/somalabs/soma/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) QueryRecords(ctx context.Context, accountID, courseID string) ([]progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]progress.Record, 0)
	for _, rec := range repo.db.table {
		if rec.AccountID == accountID && rec.CourseID == courseID {
			records = append(records, *rec)
		}
	}
	return records, nil
}

func (repo *progressRepository) GetLessonRecord(ctx context.Context, accountID, lessonID string) (progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rec := range repo.db.table {
		if rec.AccountID == accountID && rec.LessonID == lessonID {
			return *rec, nil
		}
	}
	return progress.Record{}, progress.ErrNotFound
}

func (repo *progressRepository) GetCourseRecord(ctx context.Context, accountID, courseID string) (progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rec := range repo.db.table {
		if rec.AccountID == accountID && rec.CourseID == courseID && rec.IsCourseScoped() {
			return *rec, nil
		}
	}
	return progress.Record{}, progress.ErrNotFound
}

func (repo *progressRepository) CreateRecord(ctx context.Context, rec progress.Record) (progress.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// mirror the store's (account, course, lesson-or-null) uniqueness
	for _, existing := range repo.db.table {
		if existing.AccountID == rec.AccountID && existing.CourseID == rec.CourseID && existing.LessonID == rec.LessonID {
			return progress.Record{}, progress.ErrDuplicate
		}
	}

	rec.ID = uuid.New().String()
	repo.db.table[rec.ID] = &rec
	return rec, nil
}

func (repo *progressRepository) UpdateRecord(ctx context.Context, rec progress.Record) (progress.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origRec, ok := repo.db.table[rec.ID]
	if !ok {
		return progress.Record{}, progress.ErrNotFound
	}
	origRec.Completed = rec.Completed
	origRec.CompletedAt = rec.CompletedAt
	origRec.UpdatedAt = rec.UpdatedAt

	repo.db.table[rec.ID] = origRec
	return *origRec, nil
}
