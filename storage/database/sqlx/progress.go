package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/somalabs/soma/core/progress"
)

const pqUniqueViolation = "23505"

type progressRow struct {
	ID          string      `db:"id"`
	AccountID   string      `db:"account_id"`
	CourseID    string      `db:"course_id"`
	LessonID    null.String `db:"lesson_id"`
	Completed   bool        `db:"completed"`
	CompletedAt null.Time   `db:"completed_at"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) *progressRepository {
	return &progressRepository{db: db}
}

func (repo progressRepository) toRow(rec progress.Record) progressRow {
	return progressRow{
		ID:          rec.ID,
		AccountID:   rec.AccountID,
		CourseID:    rec.CourseID,
		LessonID:    null.NewString(rec.LessonID, rec.LessonID != ""),
		Completed:   rec.Completed,
		CompletedAt: null.NewTime(rec.CompletedAt.UTC(), !rec.CompletedAt.IsZero()),
		CreatedAt:   null.NewTime(rec.CreatedAt.UTC(), !rec.CreatedAt.IsZero()),
		UpdatedAt:   null.NewTime(rec.UpdatedAt.UTC(), !rec.UpdatedAt.IsZero()),
	}
}

func (repo progressRepository) fromRow(row progressRow) progress.Record {
	return progress.Record{
		ID:          row.ID,
		AccountID:   row.AccountID,
		CourseID:    row.CourseID,
		LessonID:    row.LessonID.String,
		Completed:   row.Completed,
		CompletedAt: row.CompletedAt.Time,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to progress.ErrNotFound
func (repo progressRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return progress.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// trapUniqueErr maps psql unique violations to progress.ErrDuplicate
func (repo progressRepository) trapUniqueErr(err error, msg string) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
		return progress.ErrDuplicate
	}
	return errors.Wrap(err, msg)
}

func (repo progressRepository) QueryRecords(ctx context.Context, accountID, courseID string) ([]progress.Record, error) {
	var rows []progressRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM progress WHERE account_id = $1 AND course_id = $2`, accountID, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying progress records")
	}
	records := make([]progress.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, repo.fromRow(row))
	}
	return records, nil
}

func (repo progressRepository) GetLessonRecord(ctx context.Context, accountID, lessonID string) (progress.Record, error) {
	var row progressRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM progress WHERE account_id = $1 AND lesson_id = $2`, accountID, lessonID)
	if err != nil {
		return progress.Record{}, repo.trapNoRowsErr(err, "finding lesson record")
	}
	return repo.fromRow(row), nil
}

func (repo progressRepository) GetCourseRecord(ctx context.Context, accountID, courseID string) (progress.Record, error) {
	var row progressRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM progress WHERE account_id = $1 AND course_id = $2 AND lesson_id IS NULL`, accountID, courseID)
	if err != nil {
		return progress.Record{}, repo.trapNoRowsErr(err, "finding course record")
	}
	return repo.fromRow(row), nil
}

func (repo progressRepository) CreateRecord(ctx context.Context, rec progress.Record) (progress.Record, error) {
	rec.ID = uuid.New().String()
	row := repo.toRow(rec)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO progress (id, account_id, course_id, lesson_id, completed, completed_at, created_at, updated_at)
		VALUES (:id, :account_id, :course_id, :lesson_id, :completed, :completed_at, :created_at, :updated_at)`,
		row)
	if err != nil {
		return progress.Record{}, repo.trapUniqueErr(err, "inserting progress record")
	}
	return repo.fromRow(row), nil
}

func (repo progressRepository) UpdateRecord(ctx context.Context, rec progress.Record) (progress.Record, error) {
	row := repo.toRow(rec)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE progress
		SET completed = :completed, completed_at = :completed_at, updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "updating progress record")
	}
	return repo.fromRow(row), nil
}
