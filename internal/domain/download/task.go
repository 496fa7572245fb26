package download

// Task is a single file to fetch, derived 1:1 from a file leaf in a course
// content tree. DestinationPath is relative to the resolved save path and is
// already sanitized and collision-free within its course directory.
type Task struct {
	SourceURL       string
	DestinationPath string
	Name            string
	Size            int64
	TimeModified    int64
}
