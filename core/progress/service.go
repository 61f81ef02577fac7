package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/somalabs/soma/core"
	"github.com/somalabs/soma/core/course"
	"github.com/somalabs/soma/core/policy"
)

var (
	// errors
	ErrNotFound = errors.New("progress record not found")
	// ErrDuplicate is returned by repositories when an insert collides with
	// the (account, course, lesson-or-null) uniqueness constraint.
	ErrDuplicate = errors.New("progress record already exists")
)

type (
	Repository interface {
		// QueryRecords returns all of the account's records for a course,
		// both lesson-scoped and course-scoped.
		QueryRecords(ctx context.Context, accountID, courseID string) ([]Record, error)
		GetLessonRecord(ctx context.Context, accountID, lessonID string) (Record, error)
		GetCourseRecord(ctx context.Context, accountID, courseID string) (Record, error)
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		UpdateRecord(ctx context.Context, rec Record) (Record, error)
	}

	ServiceInterface interface {
		CourseProgress(ctx context.Context, callerID, courseID string) (CourseProgress, error)
		ToggleLesson(ctx context.Context, callerID, lessonID string) (CourseProgress, error)
		MarkCourseComplete(ctx context.Context, callerID, courseID string) (CourseProgress, error)
	}

	Service struct {
		repo    Repository
		courses course.Repository
		authz   policy.Authorizer
		logger  core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, courses course.Repository, authz policy.Authorizer, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		courses: courses,
		authz:   authz,
		logger:  logger,
	}
}

func (svc *Service) authorize(action policy.Action, callerID, ownerID string) error {
	return svc.authz.Authorize(policy.Request{
		Entity:   policy.EntityProgress,
		Action:   action,
		CallerID: callerID,
		OwnerID:  ownerID,
	})
}

// CourseProgress fetches the course, its lessons (position asc) and the
// caller's records, and derives the caller's completion view.
func (svc *Service) CourseProgress(ctx context.Context, callerID, courseID string) (CourseProgress, error) {
	if err := svc.authorize(policy.ActionRead, callerID, callerID); err != nil {
		return CourseProgress{}, err
	}

	crs, err := svc.courses.GetCourse(ctx, courseID)
	if err != nil {
		return CourseProgress{}, errors.Wrap(err, "finding course")
	}
	lessons, err := svc.courses.QueryLessonsByCourse(ctx, courseID)
	if err != nil {
		return CourseProgress{}, errors.Wrap(err, "querying lessons")
	}
	records, err := svc.repo.QueryRecords(ctx, callerID, courseID)
	if err != nil {
		return CourseProgress{}, errors.Wrap(err, "querying progress records")
	}
	return Compute(crs, lessons, records), nil
}

// ToggleLesson flips the caller's completion marker for a lesson. A first
// toggle creates a completed record; a re-toggle un-completes it and clears
// the completion timestamp. The updated CourseProgress is recomputed from
// the store, never patched in place.
func (svc *Service) ToggleLesson(ctx context.Context, callerID, lessonID string) (CourseProgress, error) {
	lsn, err := svc.courses.GetLesson(ctx, lessonID)
	if err != nil {
		return CourseProgress{}, errors.Wrap(err, "finding lesson")
	}

	rec, err := svc.repo.GetLessonRecord(ctx, callerID, lessonID)
	switch errors.Cause(err) {
	case nil:
		if err = svc.authorize(policy.ActionUpdate, callerID, rec.AccountID); err != nil {
			return CourseProgress{}, err
		}
		rec.Completed = !rec.Completed
		if rec.Completed {
			rec.CompletedAt = time.Now().UTC()
		} else {
			rec.CompletedAt = time.Time{}
		}
		rec.UpdatedAt = time.Now().UTC()
		if _, err = svc.repo.UpdateRecord(ctx, rec); err != nil {
			return CourseProgress{}, errors.Wrap(err, "updating progress record")
		}
	case ErrNotFound:
		if err = svc.authorize(policy.ActionCreate, callerID, callerID); err != nil {
			return CourseProgress{}, err
		}
		if _, err = svc.repo.CreateRecord(ctx, NewLessonCompletion(callerID, lsn.CourseID, lsn.ID)); err != nil {
			if errors.Cause(err) != ErrDuplicate {
				return CourseProgress{}, errors.Wrap(err, "creating progress record")
			}
			// a concurrent toggle won the insert; serve the stored truth
			svc.logger.Warn("duplicate progress insert for lesson "+lsn.ID, err)
		}
	default:
		return CourseProgress{}, errors.Wrap(err, "finding progress record")
	}

	return svc.CourseProgress(ctx, callerID, lsn.CourseID)
}

// MarkCourseComplete sets the caller's course-scoped completion marker.
// It is idempotent and never un-marks.
func (svc *Service) MarkCourseComplete(ctx context.Context, callerID, courseID string) (CourseProgress, error) {
	if _, err := svc.courses.GetCourse(ctx, courseID); err != nil {
		return CourseProgress{}, errors.Wrap(err, "finding course")
	}

	rec, err := svc.repo.GetCourseRecord(ctx, callerID, courseID)
	switch errors.Cause(err) {
	case nil:
		if err = svc.authorize(policy.ActionUpdate, callerID, rec.AccountID); err != nil {
			return CourseProgress{}, err
		}
		if !rec.Completed { // re-marking keeps the original CompletedAt
			rec.Completed = true
			rec.CompletedAt = time.Now().UTC()
			rec.UpdatedAt = rec.CompletedAt
			if _, err = svc.repo.UpdateRecord(ctx, rec); err != nil {
				return CourseProgress{}, errors.Wrap(err, "updating progress record")
			}
		}
	case ErrNotFound:
		if err = svc.authorize(policy.ActionCreate, callerID, callerID); err != nil {
			return CourseProgress{}, err
		}
		if _, err = svc.repo.CreateRecord(ctx, NewCourseCompletion(callerID, courseID)); err != nil {
			if errors.Cause(err) != ErrDuplicate {
				return CourseProgress{}, errors.Wrap(err, "creating progress record")
			}
			// a concurrent mark won the insert; completion is already stored
			svc.logger.Warn("duplicate progress insert for course "+courseID, err)
		}
	default:
		return CourseProgress{}, errors.Wrap(err, "finding progress record")
	}

	return svc.CourseProgress(ctx, callerID, courseID)
}
