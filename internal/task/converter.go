// Package task defines the boundary to the task-conversion collaborator.
// Turning an annotation into a project task happens elsewhere in the
// system; the viewport's only obligations are to hand over the selected
// annotation and to mark it resolved when conversion succeeds.
package task

import (
	"plan-annotator/internal/annotation"
	"plan-annotator/internal/logger"
)

// Converter produces a task record from an annotation.
type Converter interface {
	Convert(a *annotation.Annotation) error
}

// LogConverter is the default stand-in used when no task backend is
// wired: it only records the request.
type LogConverter struct{}

// Convert logs the annotation that would become a task.
func (LogConverter) Convert(a *annotation.Annotation) error {
	logger.Info("task: converting annotation %s (%q)", a.ID, a.Comment)
	return nil
}
