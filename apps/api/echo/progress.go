package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/somalabs/soma/core/course"
	"github.com/somalabs/soma/core/progress"
)

type progressApi struct {
	svc progress.ServiceInterface
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := progressApi{svc: opts.ProgressSvc}

	cg := g.Group("/courses", jwt)
	cg.GET("/:id/progress", api.retrieveCourseProgress)
	cg.POST("/:id/complete", api.markCourseComplete)

	lg := g.Group("/lessons", jwt)
	lg.POST("/:id/toggle", api.toggleLesson)
}

// Handlers

func (api *progressApi) retrieveCourseProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	prog, err := api.svc.CourseProgress(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "retrieving course progress")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *progressApi) markCourseComplete(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	prog, err := api.svc.MarkCourseComplete(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking course complete")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *progressApi) toggleLesson(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	prog, err := api.svc.ToggleLesson(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "toggling lesson completion")
	}
	return ctx.JSON(http.StatusOK, prog)
}
