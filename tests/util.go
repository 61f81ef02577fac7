package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/somalabs/soma/core"
	"github.com/somalabs/soma/core/account"
	"github.com/somalabs/soma/core/course"
	"github.com/somalabs/soma/core/progress"
)

// NewConfig returns a self-contained configuration for tests; nothing is
// read from the environment.
func NewConfig() *core.Config {
	return &core.Config{
		TestMode:        true,
		Env:             "TEST",
		AppName:         "Soma",
		SecretKey:       "s3cr3t-t3st-k3y",
		WorkDir:         core.Getwd(),
		FrontendBaseURL: "http://localhost:3000",
		DefaultFromEmail: mail.Address{
			Name:    "Soma",
			Address: "noreply@test.soma",
		},
		Server: core.ServerConfig{
			Host:                      "localhost",
			Port:                      "8000",
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

// NopLogger discards everything; it keeps test output quiet.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

func CreateAccount(
	t *testing.T,
	repo account.Repository,
	name, email, pwd string,
	isActive bool,
	createdAt ...time.Time,
) account.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := account.User{
		Name:      name,
		Email:     email,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateAccount() failed: %v", err)
		}
	}
	usr, err := repo.CreateAccount(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return usr
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	title, category, difficulty string,
	createdAt ...time.Time,
) course.Course {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Title:      title,
		Category:   category,
		Difficulty: difficulty,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateLesson(
	t *testing.T,
	repo course.Repository,
	courseID, title string,
	position int,
) course.Lesson {
	t.Helper()
	lsn, err := repo.CreateLesson(context.Background(), course.Lesson{
		CourseID:  courseID,
		Title:     title,
		Position:  position,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return lsn
}

func CreateLessonCompletion(
	t *testing.T,
	repo progress.Repository,
	accountID, courseID, lessonID string,
) progress.Record {
	t.Helper()
	rec, err := repo.CreateRecord(context.Background(), progress.NewLessonCompletion(accountID, courseID, lessonID))
	if err != nil {
		t.Fatalf("CreateLessonCompletion() failed: %v", err)
	}
	return rec
}

func CreateCourseCompletion(
	t *testing.T,
	repo progress.Repository,
	accountID, courseID string,
) progress.Record {
	t.Helper()
	rec, err := repo.CreateRecord(context.Background(), progress.NewCourseCompletion(accountID, courseID))
	if err != nil {
		t.Fatalf("CreateCourseCompletion() failed: %v", err)
	}
	return rec
}
