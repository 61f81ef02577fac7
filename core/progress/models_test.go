package progress

import (
	"testing"
	"time"

	"github.com/somalabs/soma/core/course"
)

func TestCompute(t *testing.T) {
	crs := course.Course{ID: "c1", Title: "Go Basics"}
	l1 := course.Lesson{ID: "l1", CourseID: "c1", Title: "Hello", Position: 1}
	l2 := course.Lesson{ID: "l2", CourseID: "c1", Title: "World", Position: 2}
	l3 := course.Lesson{ID: "l3", CourseID: "c1", Title: "Bye", Position: 3}
	now := time.Now().UTC()

	tests := []struct {
		name          string
		lessons       []course.Lesson
		records       []Record
		wantCompleted int
		wantTotal     int
		wantPercent   int
		wantCourse    bool
	}{
		{name: "no lessons, no records", wantPercent: 0},
		{name: "no records", lessons: []course.Lesson{l1, l2}, wantTotal: 2, wantPercent: 0},
		{
			name:    "half completed",
			lessons: []course.Lesson{l1, l2},
			records: []Record{
				{AccountID: "u1", CourseID: "c1", LessonID: "l1", Completed: true, CompletedAt: now},
			},
			wantCompleted: 1, wantTotal: 2, wantPercent: 50,
		},
		{
			name:    "all completed",
			lessons: []course.Lesson{l1, l2},
			records: []Record{
				{AccountID: "u1", CourseID: "c1", LessonID: "l1", Completed: true, CompletedAt: now},
				{AccountID: "u1", CourseID: "c1", LessonID: "l2", Completed: true, CompletedAt: now},
			},
			wantCompleted: 2, wantTotal: 2, wantPercent: 100,
		},
		{
			name:    "1 of 3 rounds to 33",
			lessons: []course.Lesson{l1, l2, l3},
			records: []Record{
				{AccountID: "u1", CourseID: "c1", LessonID: "l1", Completed: true, CompletedAt: now},
			},
			wantCompleted: 1, wantTotal: 3, wantPercent: 33,
		},
		{
			name:    "2 of 3 rounds to 67",
			lessons: []course.Lesson{l1, l2, l3},
			records: []Record{
				{AccountID: "u1", CourseID: "c1", LessonID: "l1", Completed: true, CompletedAt: now},
				{AccountID: "u1", CourseID: "c1", LessonID: "l2", Completed: true, CompletedAt: now},
			},
			wantCompleted: 2, wantTotal: 3, wantPercent: 67,
		},
		{
			name:    "un-completed record does not count",
			lessons: []course.Lesson{l1, l2},
			records: []Record{
				{AccountID: "u1", CourseID: "c1", LessonID: "l1", Completed: false},
			},
			wantCompleted: 0, wantTotal: 2, wantPercent: 0,
		},
		{
			name:    "record for unknown lesson is ignored",
			lessons: []course.Lesson{l1},
			records: []Record{
				{AccountID: "u1", CourseID: "c1", LessonID: "ghost", Completed: true, CompletedAt: now},
			},
			wantCompleted: 0, wantTotal: 1, wantPercent: 0,
		},
		{
			name:    "course marker independent of lessons",
			lessons: []course.Lesson{l1, l2},
			records: []Record{
				{AccountID: "u1", CourseID: "c1", Completed: true, CompletedAt: now},
			},
			wantCompleted: 0, wantTotal: 2, wantPercent: 0, wantCourse: true,
		},
		{
			name:    "all lessons done without course marker",
			lessons: []course.Lesson{l1},
			records: []Record{
				{AccountID: "u1", CourseID: "c1", LessonID: "l1", Completed: true, CompletedAt: now},
			},
			wantCompleted: 1, wantTotal: 1, wantPercent: 100, wantCourse: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := Compute(crs, tt.lessons, tt.records)
			if cp.CompletedLessons != tt.wantCompleted {
				t.Errorf("CompletedLessons = %d, want %d", cp.CompletedLessons, tt.wantCompleted)
			}
			if cp.TotalLessons != tt.wantTotal {
				t.Errorf("TotalLessons = %d, want %d", cp.TotalLessons, tt.wantTotal)
			}
			if cp.Percent != tt.wantPercent {
				t.Errorf("Percent = %d, want %d", cp.Percent, tt.wantPercent)
			}
			if cp.CourseCompleted != tt.wantCourse {
				t.Errorf("CourseCompleted = %v, want %v", cp.CourseCompleted, tt.wantCourse)
			}
			if len(cp.Lessons) != len(tt.lessons) {
				t.Errorf("len(Lessons) = %d, want %d", len(cp.Lessons), len(tt.lessons))
			}
		})
	}
}

func TestComputeLessonOrderPreserved(t *testing.T) {
	crs := course.Course{ID: "c1"}
	lessons := []course.Lesson{
		{ID: "l1", Position: 1},
		{ID: "l2", Position: 2},
		{ID: "l3", Position: 3},
	}

	cp := Compute(crs, lessons, nil)
	for i, status := range cp.Lessons {
		if status.ID != lessons[i].ID {
			t.Errorf("Lessons[%d].ID = %s, want %s", i, status.ID, lessons[i].ID)
		}
	}
}
