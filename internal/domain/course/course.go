package course

// Course is one enrolled Moodle course
type Course struct {
	ID        int64
	ShortName string
	FullName  string
	Hidden    bool
}

// Name returns the display name used for the course output directory
func (c Course) Name() string {
	if c.FullName != "" {
		return c.FullName
	}
	return c.ShortName
}
