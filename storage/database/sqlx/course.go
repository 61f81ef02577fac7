package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/somalabs/soma/core"
	"github.com/somalabs/soma/core/course"
)

type (
	courseRow struct {
		ID           string    `db:"id"`
		Title        string    `db:"title"`
		Description  string    `db:"description"`
		ThumbnailURL string    `db:"thumbnail_url"`
		Category     string    `db:"category"`
		Difficulty   string    `db:"difficulty"`
		DurationMins int       `db:"duration_mins"`
		CreatedAt    null.Time `db:"created_at"`
		UpdatedAt    null.Time `db:"updated_at"`
	}

	lessonRow struct {
		ID           string    `db:"id"`
		CourseID     string    `db:"course_id"`
		Title        string    `db:"title"`
		Content      string    `db:"content"`
		Position     int       `db:"position"`
		DurationMins int       `db:"duration_mins"`
		CreatedAt    null.Time `db:"created_at"`
	}
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) toCourseRow(crs course.Course) courseRow {
	return courseRow{
		ID:           crs.ID,
		Title:        crs.Title,
		Description:  crs.Description,
		ThumbnailURL: crs.ThumbnailURL,
		Category:     crs.Category,
		Difficulty:   crs.Difficulty,
		DurationMins: crs.DurationMins,
		CreatedAt:    null.NewTime(crs.CreatedAt.UTC(), !crs.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(crs.UpdatedAt.UTC(), !crs.UpdatedAt.IsZero()),
	}
}

func (repo courseRepository) fromCourseRow(row courseRow) course.Course {
	return course.Course{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		ThumbnailURL: row.ThumbnailURL,
		Category:     row.Category,
		Difficulty:   row.Difficulty,
		DurationMins: row.DurationMins,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}

func (repo courseRepository) toLessonRow(lsn course.Lesson) lessonRow {
	return lessonRow{
		ID:           lsn.ID,
		CourseID:     lsn.CourseID,
		Title:        lsn.Title,
		Content:      lsn.Content,
		Position:     lsn.Position,
		DurationMins: lsn.DurationMins,
		CreatedAt:    null.NewTime(lsn.CreatedAt.UTC(), !lsn.CreatedAt.IsZero()),
	}
}

func (repo courseRepository) fromLessonRow(row lessonRow) course.Lesson {
	return course.Lesson{
		ID:           row.ID,
		CourseID:     row.CourseID,
		Title:        row.Title,
		Content:      row.Content,
		Position:     row.Position,
		DurationMins: row.DurationMins,
		CreatedAt:    row.CreatedAt.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to course.ErrNotFound
func (repo courseRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	row := repo.toCourseRow(crs)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO course (id, title, description, thumbnail_url, category, difficulty, duration_mins, created_at, updated_at)
		VALUES (:id, :title, :description, :thumbnail_url, :category, :difficulty, :duration_mins, :created_at, :updated_at)`,
		row)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return repo.fromCourseRow(row), nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	query := `SELECT * FROM course`
	var clauses []string
	var args []interface{}

	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			clauses = append(clauses, `(title ILIKE ? OR description ILIKE ?)`)
			args = append(args, val, val)
		}
		if filter.Category != "" {
			clauses = append(clauses, `category = ?`)
			args = append(args, filter.Category)
		}
		if filter.Difficulty != "" {
			clauses = append(clauses, `difficulty = ?`)
			args = append(args, filter.Difficulty)
		}
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at", Ascending: false}}
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	query += ` ORDER BY ` + strings.Join(orderList, ", ")
	query = repo.db.Rebind(query)

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, repo.fromCourseRow(row))
	}
	return courses, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Course{}, course.ErrNotFound
	}
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "finding course")
	}
	return repo.fromCourseRow(row), nil
}

func (repo courseRepository) CreateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	lsn.ID = uuid.New().String()
	row := repo.toLessonRow(lsn)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO lesson (id, course_id, title, content, position, duration_mins, created_at)
		VALUES (:id, :course_id, :title, :content, :position, :duration_mins, :created_at)`,
		row)
	if err != nil {
		return course.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return repo.fromLessonRow(row), nil
}

func (repo courseRepository) QueryLessonsByCourse(ctx context.Context, courseID string) ([]course.Lesson, error) {
	var rows []lessonRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM lesson WHERE course_id = $1 ORDER BY position ASC`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	lessons := make([]course.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, repo.fromLessonRow(row))
	}
	return lessons, nil
}

func (repo courseRepository) GetLesson(ctx context.Context, id string) (course.Lesson, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Lesson{}, course.ErrNotFound
	}
	var row lessonRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM lesson WHERE id = $1`, id); err != nil {
		return course.Lesson{}, repo.trapNoRowsErr(err, "finding lesson")
	}
	return repo.fromLessonRow(row), nil
}
