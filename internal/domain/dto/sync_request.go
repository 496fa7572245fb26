package dto

import (
	"errors"
)

// SyncRequest is the payload of a course sync invocation. Zero values defer
// to the service configuration, so an empty payload means "sync everything
// the way the service is configured".
type SyncRequest struct {
	// CourseID restricts the run to a single course; 0 means all courses
	CourseID int64 `json:"course_id"`

	// Extensions overrides the configured allowlist when non-empty
	Extensions []string `json:"extensions,omitempty"`

	// IncludeAssignments also fetches assignment intro attachments
	IncludeAssignments bool `json:"include_assignments,omitempty"`

	// HarvestLinks scrapes pluginfile links out of summary HTML
	HarvestLinks bool `json:"harvest_links,omitempty"`

	// UseRecent lists recently accessed courses instead of enrolled ones
	UseRecent bool `json:"use_recent,omitempty"`
}

func (r *SyncRequest) Validate() error {
	if r.CourseID < 0 {
		return errors.New("course ID cannot be negative")
	}
	return nil
}
