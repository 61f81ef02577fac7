package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/somalabs/soma/core"
	"github.com/somalabs/soma/core/policy"
)

var ErrNotFound = errors.New("course not found")

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		// QueryCourses applies AND operation on available QueryFilter fields.
		// A nil ordering defaults to newest first.
		QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		CreateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		// QueryLessonsByCourse returns the course's lessons ordered by position ascending.
		QueryLessonsByCourse(ctx context.Context, courseID string) ([]Lesson, error)
		GetLesson(ctx context.Context, id string) (Lesson, error)
	}

	ServiceInterface interface {
		Query(ctx context.Context, callerID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		GetByID(ctx context.Context, callerID, id string) (Course, error)
		Lessons(ctx context.Context, callerID, courseID string) ([]Lesson, error)
	}

	Service struct {
		repo  Repository
		authz policy.Authorizer
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, authz policy.Authorizer) *Service {
	return &Service{repo: repo, authz: authz}
}

func (svc *Service) Query(ctx context.Context, callerID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error) {
	if err := svc.authz.Authorize(policy.Request{
		Entity:   policy.EntityCourse,
		Action:   policy.ActionRead,
		CallerID: callerID,
	}); err != nil {
		return nil, err
	}
	return svc.repo.QueryCourses(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, callerID, id string) (Course, error) {
	if err := svc.authz.Authorize(policy.Request{
		Entity:   policy.EntityCourse,
		Action:   policy.ActionRead,
		CallerID: callerID,
	}); err != nil {
		return Course{}, err
	}
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) Lessons(ctx context.Context, callerID, courseID string) ([]Lesson, error) {
	if err := svc.authz.Authorize(policy.Request{
		Entity:   policy.EntityLesson,
		Action:   policy.ActionRead,
		CallerID: callerID,
	}); err != nil {
		return nil, err
	}
	// 404 on unknown course rather than an empty list
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryLessonsByCourse(ctx, courseID)
}
