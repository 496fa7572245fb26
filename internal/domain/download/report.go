package download

import "time"

// FileOutcome records the result of one download attempt. Err is nil on
// success; a non-nil Err means the file was skipped and the run continued.
type FileOutcome struct {
	Course string
	Name   string
	Path   string
	Bytes  int64
	Err    error
}

// Skipped reports whether the file was skipped
func (o FileOutcome) Skipped() bool {
	return o.Err != nil
}

// CourseOutcome aggregates the download results of one course. Err is set when
// the course itself could not be enumerated; in that case Files is empty and
// every file in the course counts as skipped.
type CourseOutcome struct {
	CourseID int64
	Course   string
	Files    []FileOutcome
	Err      error
}

// Skipped reports whether the whole course was skipped
func (o CourseOutcome) Skipped() bool {
	return o.Err != nil
}

// FilesWritten returns the number of files written for the course
func (o CourseOutcome) FilesWritten() int {
	n := 0
	for _, f := range o.Files {
		if !f.Skipped() {
			n++
		}
	}
	return n
}

// Report is the structured outcome of a full run. The pipeline only records
// outcomes; presentation and exit-code policy belong to the caller.
type Report struct {
	Courses  []CourseOutcome
	Started  time.Time
	Finished time.Time
}

// Failed reports whether any course or file was skipped
func (r *Report) Failed() bool {
	for _, c := range r.Courses {
		if c.Skipped() {
			return true
		}
		for _, f := range c.Files {
			if f.Skipped() {
				return true
			}
		}
	}
	return false
}

// FilesWritten returns the total number of files written
func (r *Report) FilesWritten() int {
	n := 0
	for _, c := range r.Courses {
		n += c.FilesWritten()
	}
	return n
}

// BytesWritten returns the total number of bytes written
func (r *Report) BytesWritten() int64 {
	var n int64
	for _, c := range r.Courses {
		for _, f := range c.Files {
			if !f.Skipped() {
				n += f.Bytes
			}
		}
	}
	return n
}

// SkippedFiles returns the number of files skipped in courses that were
// otherwise processed
func (r *Report) SkippedFiles() int {
	n := 0
	for _, c := range r.Courses {
		for _, f := range c.Files {
			if f.Skipped() {
				n++
			}
		}
	}
	return n
}

// SkippedCourses returns the number of courses skipped entirely
func (r *Report) SkippedCourses() int {
	n := 0
	for _, c := range r.Courses {
		if c.Skipped() {
			n++
		}
	}
	return n
}

// Duration returns the wall-clock duration of the run
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// ExitCode maps the report to a process exit code: 0 for full success, 1 when
// any course or file was skipped.
func (r *Report) ExitCode() int {
	if r.Failed() {
		return 1
	}
	return 0
}
