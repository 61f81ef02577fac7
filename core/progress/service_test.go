package progress_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/somalabs/soma/core/course"
	"github.com/somalabs/soma/core/policy"
	"github.com/somalabs/soma/core/progress"
	"github.com/somalabs/soma/storage/database/dummy"
	"github.com/somalabs/soma/tests"
)

func setup(t *testing.T) (progress.ServiceInterface, course.Repository, progress.Repository) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	courseRepo := dummydb.NewCourseRepository(db)
	progRepo := dummydb.NewProgressRepository(db)
	svc := progress.NewService(progRepo, courseRepo, policy.NewAuthorizer(), testutil.NopLogger{})
	return svc, courseRepo, progRepo
}

func TestService_ToggleLesson(t *testing.T) {
	svc, courseRepo, _ := setup(t)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, courseRepo, "Go Basics", "programming", course.DifficultyBeginner)
	l1 := testutil.CreateLesson(t, courseRepo, crs.ID, "Hello", 1)
	l2 := testutil.CreateLesson(t, courseRepo, crs.ID, "World", 2)

	// first toggle completes the lesson
	cp, err := svc.ToggleLesson(ctx, "u1", l1.ID)
	if err != nil {
		t.Fatalf("ToggleLesson() failed: %v", err)
	}
	if cp.CompletedLessons != 1 || cp.Percent != 50 {
		t.Errorf("CompletedLessons = %d, Percent = %d; want 1, 50", cp.CompletedLessons, cp.Percent)
	}
	if !cp.Lessons[0].Completed || cp.Lessons[0].CompletedAt.IsZero() {
		t.Errorf("lesson 1 not marked completed: %+v", cp.Lessons[0])
	}

	// second toggle un-completes it and clears the timestamp
	cp, err = svc.ToggleLesson(ctx, "u1", l1.ID)
	if err != nil {
		t.Fatalf("ToggleLesson() failed: %v", err)
	}
	if cp.CompletedLessons != 0 || cp.Percent != 0 {
		t.Errorf("CompletedLessons = %d, Percent = %d; want 0, 0", cp.CompletedLessons, cp.Percent)
	}
	if cp.Lessons[0].Completed || !cp.Lessons[0].CompletedAt.IsZero() {
		t.Errorf("lesson 1 still marked completed: %+v", cp.Lessons[0])
	}

	// completing both lessons reaches 100 without a course marker
	if _, err = svc.ToggleLesson(ctx, "u1", l1.ID); err != nil {
		t.Fatalf("ToggleLesson() failed: %v", err)
	}
	cp, err = svc.ToggleLesson(ctx, "u1", l2.ID)
	if err != nil {
		t.Fatalf("ToggleLesson() failed: %v", err)
	}
	if cp.Percent != 100 {
		t.Errorf("Percent = %d; want 100", cp.Percent)
	}
	if cp.CourseCompleted {
		t.Error("CourseCompleted = true; lessons alone must not complete the course")
	}

	// unknown lesson
	if _, err = svc.ToggleLesson(ctx, "u1", "ghost"); errors.Cause(err) != course.ErrNotFound {
		t.Errorf("ToggleLesson() error = %v, want %v", err, course.ErrNotFound)
	}
}

func TestService_ToggleLessonIsolation(t *testing.T) {
	svc, courseRepo, _ := setup(t)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, courseRepo, "Go Basics", "programming", course.DifficultyBeginner)
	l1 := testutil.CreateLesson(t, courseRepo, crs.ID, "Hello", 1)

	if _, err := svc.ToggleLesson(ctx, "u1", l1.ID); err != nil {
		t.Fatalf("ToggleLesson() failed: %v", err)
	}

	// another account sees its own, empty progress
	cp, err := svc.CourseProgress(ctx, "u2", crs.ID)
	if err != nil {
		t.Fatalf("CourseProgress() failed: %v", err)
	}
	if cp.CompletedLessons != 0 || cp.Percent != 0 {
		t.Errorf("CompletedLessons = %d, Percent = %d; want 0, 0", cp.CompletedLessons, cp.Percent)
	}
}

func TestService_MarkCourseComplete(t *testing.T) {
	svc, courseRepo, _ := setup(t)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, courseRepo, "Go Basics", "programming", course.DifficultyBeginner)
	testutil.CreateLesson(t, courseRepo, crs.ID, "Hello", 1)

	cp, err := svc.MarkCourseComplete(ctx, "u1", crs.ID)
	if err != nil {
		t.Fatalf("MarkCourseComplete() failed: %v", err)
	}
	if !cp.CourseCompleted || cp.CourseCompletedAt.IsZero() {
		t.Errorf("course not marked completed: %+v", cp)
	}
	if cp.CompletedLessons != 0 {
		t.Errorf("CompletedLessons = %d; course marker must not touch lessons", cp.CompletedLessons)
	}
	completedAt := cp.CourseCompletedAt

	// idempotent; keeps the original timestamp
	cp, err = svc.MarkCourseComplete(ctx, "u1", crs.ID)
	if err != nil {
		t.Fatalf("MarkCourseComplete() failed: %v", err)
	}
	if !cp.CourseCompleted {
		t.Error("CourseCompleted = false after re-mark")
	}
	if !cp.CourseCompletedAt.Equal(completedAt) {
		t.Errorf("CourseCompletedAt = %v; want original %v", cp.CourseCompletedAt, completedAt)
	}

	// unknown course
	if _, err = svc.MarkCourseComplete(ctx, "u1", "ghost"); errors.Cause(err) != course.ErrNotFound {
		t.Errorf("MarkCourseComplete() error = %v, want %v", err, course.ErrNotFound)
	}
}

func TestRepository_DuplicateRecordRejected(t *testing.T) {
	_, courseRepo, progRepo := setup(t)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, courseRepo, "Go Basics", "programming", course.DifficultyBeginner)
	l1 := testutil.CreateLesson(t, courseRepo, crs.ID, "Hello", 1)

	testutil.CreateLessonCompletion(t, progRepo, "u1", crs.ID, l1.ID)
	if _, err := progRepo.CreateRecord(ctx, progress.NewLessonCompletion("u1", crs.ID, l1.ID)); errors.Cause(err) != progress.ErrDuplicate {
		t.Errorf("CreateRecord() error = %v, want %v", err, progress.ErrDuplicate)
	}

	testutil.CreateCourseCompletion(t, progRepo, "u1", crs.ID)
	if _, err := progRepo.CreateRecord(ctx, progress.NewCourseCompletion("u1", crs.ID)); errors.Cause(err) != progress.ErrDuplicate {
		t.Errorf("CreateRecord() error = %v, want %v", err, progress.ErrDuplicate)
	}

	// a different account is free to use the same lesson
	testutil.CreateLessonCompletion(t, progRepo, "u2", crs.ID, l1.ID)
}
