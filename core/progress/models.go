package progress

import (
	"math"
	"time"

	"github.com/somalabs/soma/core/course"
)

// Record is a completion marker owned by an account. It comes in two kinds:
// lesson-scoped (LessonID set) marks one lesson complete; course-scoped
// (LessonID empty) marks the whole course complete. The two signals are
// independent once set.
type Record struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	CourseID    string    `json:"course_id"`
	LessonID    string    `json:"lesson_id,omitempty"` // empty => course-scoped
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completed_at,omitempty"` // zero => null
	CreatedAt   time.Time `json:"created_at"`             // UTC
	UpdatedAt   time.Time `json:"updated_at"`             // UTC
}

func (r Record) IsCourseScoped() bool { return r.LessonID == "" }
func (r Record) IsLessonScoped() bool { return r.LessonID != "" }

// NewLessonCompletion returns a completed lesson-scoped Record.
// The first toggle on a lesson always creates a completed record.
func NewLessonCompletion(accountID, courseID, lessonID string) Record {
	now := time.Now().UTC()
	return Record{
		AccountID:   accountID,
		CourseID:    courseID,
		LessonID:    lessonID,
		Completed:   true,
		CompletedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewCourseCompletion returns a completed course-scoped Record.
func NewCourseCompletion(accountID, courseID string) Record {
	now := time.Now().UTC()
	return Record{
		AccountID:   accountID,
		CourseID:    courseID,
		Completed:   true,
		CompletedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type (
	// LessonStatus pairs a Lesson with the caller's completion state for it.
	LessonStatus struct {
		course.Lesson
		Completed   bool      `json:"completed"`
		CompletedAt time.Time `json:"completed_at,omitempty"`
	}

	// CourseProgress is the caller's derived view of one course. It holds no
	// server-side state and is recomputed from the store after every mutation.
	CourseProgress struct {
		Course            course.Course  `json:"course"`
		Lessons           []LessonStatus `json:"lessons"`
		CompletedLessons  int            `json:"completed_lessons"`
		TotalLessons      int            `json:"total_lessons"`
		Percent           int            `json:"percent"`
		CourseCompleted   bool           `json:"course_completed"`
		CourseCompletedAt time.Time      `json:"course_completed_at,omitempty"`
	}
)

// Compute derives CourseProgress from the three fetched sets. Percent is
// round(100 * completed / total), 0 for a course with no lessons.
func Compute(crs course.Course, lessons []course.Lesson, records []Record) CourseProgress {
	byLesson := make(map[string]Record, len(records))
	var courseRec Record
	var hasCourseRec bool
	for _, rec := range records {
		if rec.IsLessonScoped() {
			byLesson[rec.LessonID] = rec
		} else if !hasCourseRec || rec.Completed {
			courseRec = rec
			hasCourseRec = true
		}
	}

	cp := CourseProgress{
		Course:       crs,
		Lessons:      make([]LessonStatus, 0, len(lessons)),
		TotalLessons: len(lessons),
	}
	for _, lsn := range lessons {
		status := LessonStatus{Lesson: lsn}
		if rec, ok := byLesson[lsn.ID]; ok && rec.Completed {
			status.Completed = true
			status.CompletedAt = rec.CompletedAt
			cp.CompletedLessons++
		}
		cp.Lessons = append(cp.Lessons, status)
	}

	if cp.TotalLessons > 0 {
		cp.Percent = int(math.Round(100 * float64(cp.CompletedLessons) / float64(cp.TotalLessons)))
	}
	if hasCourseRec && courseRec.Completed {
		cp.CourseCompleted = true
		cp.CourseCompletedAt = courseRec.CompletedAt
	}
	return cp
}
