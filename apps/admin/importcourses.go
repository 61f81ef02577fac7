package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/somalabs/soma/core/course"
)

type courseImport struct {
	course.NewCourse
	Lessons []course.NewLesson `json:"lessons"`
}

// importCourses loads a JSON course catalog and creates each course with its
// lessons. Lessons with no explicit position are numbered by file order.
func (cli *commandLine) importCourses(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var imports []courseImport
	if err := json.Unmarshal(raw, &imports); err != nil {
		return err
	}

	ctx := context.Background()
	for i := range imports {
		imp := &imports[i]
		if err := imp.Validate(cli.validate); err != nil {
			return fmt.Errorf("course %d: %w", i+1, err)
		}
		for j := range imp.Lessons {
			if err := imp.Lessons[j].Validate(cli.validate); err != nil {
				return fmt.Errorf("course %d, lesson %d: %w", i+1, j+1, err)
			}
		}

		now := time.Now().UTC()
		crs, err := cli.courseRepo.CreateCourse(ctx, course.Course{
			Title:        imp.Title,
			Description:  imp.Description,
			ThumbnailURL: imp.ThumbnailURL,
			Category:     imp.Category,
			Difficulty:   imp.Difficulty,
			DurationMins: imp.DurationMins,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("course %d: %w", i+1, err)
		}

		for j, nl := range imp.Lessons {
			position := nl.Position
			if position == 0 {
				position = j + 1
			}
			if _, err := cli.courseRepo.CreateLesson(ctx, course.Lesson{
				CourseID:     crs.ID,
				Title:        nl.Title,
				Content:      nl.Content,
				Position:     position,
				DurationMins: nl.DurationMins,
				CreatedAt:    now,
			}); err != nil {
				return fmt.Errorf("course %d, lesson %d: %w", i+1, j+1, err)
			}
		}
		logger.Printf("imported course %q with %d lessons", crs.Title, len(imp.Lessons))
	}
	return nil
}
