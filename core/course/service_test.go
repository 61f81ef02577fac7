package course_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/somalabs/soma/core/course"
	"github.com/somalabs/soma/core/policy"
	"github.com/somalabs/soma/storage/database/dummy"
	"github.com/somalabs/soma/tests"
)

func setup(t *testing.T) (course.ServiceInterface, course.Repository) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewCourseRepository(db)
	return course.NewService(repo, policy.NewAuthorizer()), repo
}

func TestService_Query(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	now := time.Now()
	older := testutil.CreateCourse(t, repo, "Go Basics", "programming", course.DifficultyBeginner, now.Add(-time.Hour))
	newer := testutil.CreateCourse(t, repo, "Advanced Go", "programming", course.DifficultyAdvanced, now)
	cooking := testutil.CreateCourse(t, repo, "Pasta 101", "cooking", course.DifficultyBeginner, now.Add(-2*time.Hour))

	// unauthenticated callers are denied
	if _, err := svc.Query(ctx, "", nil, nil); errors.Cause(err) != policy.ErrDenied {
		t.Errorf("Query() error = %v, want %v", err, policy.ErrDenied)
	}

	// default ordering is newest first
	courses, err := svc.Query(ctx, "u1", nil, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(courses) != 3 {
		t.Fatalf("len(courses) = %d, want 3", len(courses))
	}
	if courses[0].ID != newer.ID || courses[1].ID != older.ID || courses[2].ID != cooking.ID {
		t.Errorf("unexpected order: %s, %s, %s", courses[0].Title, courses[1].Title, courses[2].Title)
	}

	// category filter
	courses, err = svc.Query(ctx, "u1", &course.QueryFilter{Category: "cooking"}, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(courses) != 1 || courses[0].ID != cooking.ID {
		t.Errorf("category filter: got %d courses", len(courses))
	}

	// search + difficulty combine with AND
	courses, err = svc.Query(ctx, "u1", &course.QueryFilter{Search: "go", Difficulty: course.DifficultyAdvanced}, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(courses) != 1 || courses[0].ID != newer.ID {
		t.Errorf("combined filter: got %d courses", len(courses))
	}

	// no match
	courses, err = svc.Query(ctx, "u1", &course.QueryFilter{Search: "rust"}, nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(courses) != 0 {
		t.Errorf("unknown search: got %d courses, want 0", len(courses))
	}
}

func TestService_GetByID(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, repo, "Go Basics", "programming", course.DifficultyBeginner)

	got, err := svc.GetByID(ctx, "u1", crs.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.Title != "Go Basics" {
		t.Errorf("Title = %q", got.Title)
	}

	if _, err = svc.GetByID(ctx, "u1", "ghost"); errors.Cause(err) != course.ErrNotFound {
		t.Errorf("GetByID() error = %v, want %v", err, course.ErrNotFound)
	}
}

func TestService_Lessons(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, repo, "Go Basics", "programming", course.DifficultyBeginner)
	// created out of order on purpose
	l3 := testutil.CreateLesson(t, repo, crs.ID, "Interfaces", 3)
	l1 := testutil.CreateLesson(t, repo, crs.ID, "Hello", 1)
	l2 := testutil.CreateLesson(t, repo, crs.ID, "Types", 2)

	lessons, err := svc.Lessons(ctx, "u1", crs.ID)
	if err != nil {
		t.Fatalf("Lessons() failed: %v", err)
	}
	want := []string{l1.ID, l2.ID, l3.ID}
	if len(lessons) != len(want) {
		t.Fatalf("len(lessons) = %d, want %d", len(lessons), len(want))
	}
	for i, id := range want {
		if lessons[i].ID != id {
			t.Errorf("lessons[%d].ID = %s, want %s", i, lessons[i].ID, id)
		}
	}

	// unknown course is a not-found, not an empty list
	if _, err = svc.Lessons(ctx, "u1", "ghost"); errors.Cause(err) != course.ErrNotFound {
		t.Errorf("Lessons() error = %v, want %v", err, course.ErrNotFound)
	}
}
