// Package prompts holds the per-stage model instructions for the
// installer discovery workflow.
package prompts

import (
	"errors"
	"slices"
)

// ErrInvalidStage is returned when a stage value is not recognized.
var ErrInvalidStage = errors.New("invalid workflow stage")

// Stage identifies the workflow stage an instruction set targets.
type Stage string

// Valid workflow stages.
const (
	StageLocate   Stage = "locate"
	StageValidate Stage = "validate"
	StageExtract  Stage = "extract"
)

var stages = []Stage{
	StageLocate,
	StageValidate,
	StageExtract,
}

// Stages returns the list of valid workflow stages.
func Stages() []Stage {
	return stages
}

// ParseStage validates a string as a known workflow stage.
// Returns ErrInvalidStage if the value is not recognized.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
