package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/somalabs/soma/core"
)

// Advisory difficulty levels; stored as free text.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

var Difficulties = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

type Course struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Category     string    `json:"category"`
	Difficulty   string    `json:"difficulty"`
	DurationMins int       `json:"duration_mins"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

type Lesson struct {
	ID           string    `json:"id"`
	CourseID     string    `json:"course_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Position     int       `json:"position"` // advisory ordering; not unique-enforced
	DurationMins int       `json:"duration_mins"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// NewCourse contains information needed to create a Course. There is no
// authoring API; this is consumed by the admin CLI import path only.
type NewCourse struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
	Category     string `json:"category"`
	Difficulty   string `json:"difficulty" validate:"omitempty,difficulty"`
	DurationMins int    `json:"duration_mins" validate:"gte=0"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Category = core.CleanString(nc.Category, true /* lower */)
	nc.Difficulty = core.CleanString(nc.Difficulty, true /* lower */)
	return validate.Struct(nc)
}

// NewLesson contains information needed to create a Lesson under a Course.
type NewLesson struct {
	Title        string `json:"title" validate:"required"`
	Content      string `json:"content"`
	Position     int    `json:"position" validate:"gte=0"`
	DurationMins int    `json:"duration_mins" validate:"gte=0"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	return validate.Struct(nl)
}

// QueryFilter applies AND semantics on its set fields.
type QueryFilter struct {
	Search     string `query:"search"` // case-insensitive match on title or description
	Category   string `query:"category"`
	Difficulty string `query:"difficulty"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Category == "" && qf.Difficulty == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
	qf.Difficulty = core.CleanString(qf.Difficulty, true /* lower */)
}
