package moodle

// Wire types for the Moodle web service REST API. Field names follow the JSON
// shapes Moodle returns; only the fields the pipeline consumes are mapped.

// SiteInfo is the response of core_webservice_get_site_info. UserID is the
// input for enrolled-course enumeration.
type SiteInfo struct {
	SiteName  string `json:"sitename"`
	Username  string `json:"username"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	FullName  string `json:"fullname"`
	UserID    int64  `json:"userid"`
	SiteURL   string `json:"siteurl"`
	Release   string `json:"release"`
	Version   string `json:"version"`
}

// Course is one element of the core_enrol_get_users_courses response
type Course struct {
	ID          int64  `json:"id"`
	ShortName   string `json:"shortname"`
	FullName    string `json:"fullname"`
	DisplayName string `json:"displayname"`
	IDNumber    string `json:"idnumber"`
	Visible     int    `json:"visible"`
	Category    int64  `json:"category"`
	Progress    int    `json:"progress"`
	StartDate   int64  `json:"startdate"`
	EndDate     int64  `json:"enddate"`
}

// RecentCourse is one element of the core_course_get_recent_courses response
type RecentCourse struct {
	ID              int64  `json:"id"`
	FullName        string `json:"fullname"`
	ShortName       string `json:"shortname"`
	IDNumber        string `json:"idnumber"`
	Summary         string `json:"summary"`
	SummaryFormat   int    `json:"summaryformat"`
	StartDate       int64  `json:"startdate"`
	EndDate         int64  `json:"enddate"`
	Visible         bool   `json:"visible"`
	FullNameDisplay string `json:"fullnamedisplay"`
	ViewURL         string `json:"viewurl"`
	CourseImage     string `json:"courseimage"`
	Progress        int    `json:"progress"`
	HasProgress     bool   `json:"hasprogress"`
	IsFavourite     bool   `json:"isfavourite"`
	Hidden          bool   `json:"hidden"`
	TimeAccess      int64  `json:"timeaccess"`
	ShowShortName   bool   `json:"showshortname"`
	CourseCategory  string `json:"coursecategory"`
}

// Section is one element of the core_course_get_contents response
type Section struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Visible     int      `json:"visible"`
	Section     int      `json:"section"`
	UserVisible bool     `json:"uservisible"`
	Summary     string   `json:"summary"`
	Modules     []Module `json:"modules"`
}

// Module is a course module inside a section. Contents is only populated for
// module types that carry files (resource, folder, ...).
type Module struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Instance            int64     `json:"instance"`
	ContextID           int64     `json:"contextid"`
	Visible             int       `json:"visible"`
	UserVisible         bool      `json:"uservisible"`
	VisibleOnCoursePage int       `json:"visibleoncoursepage"`
	ModIcon             string    `json:"modicon"`
	ModName             string    `json:"modname"`
	URL                 string    `json:"url,omitempty"`
	Description         string    `json:"description,omitempty"`
	Contents            []Content `json:"contents,omitempty"`
}

// Content is a single downloadable item of a module
type Content struct {
	Type           string `json:"type"`
	Filename       string `json:"filename"`
	Filepath       string `json:"filepath"`
	Filesize       int64  `json:"filesize"`
	FileURL        string `json:"fileurl"`
	TimeCreated    int64  `json:"timecreated,omitempty"`
	TimeModified   int64  `json:"timemodified"`
	MimeType       string `json:"mimetype,omitempty"`
	IsExternalFile bool   `json:"isexternalfile,omitempty"`
}

// assignmentsResponse is the envelope of mod_assign_get_assignments
type assignmentsResponse struct {
	Courses  []AssignmentCourse `json:"courses"`
	Warnings []Warning          `json:"warnings,omitempty"`
}

// AssignmentCourse groups the assignments of one course
type AssignmentCourse struct {
	ID           int64        `json:"id"`
	FullName     string       `json:"fullname"`
	ShortName    string       `json:"shortname"`
	TimeModified int64        `json:"timemodified"`
	Assignments  []Assignment `json:"assignments"`
}

// Assignment is a single assignment activity. IntroAttachments are the files
// instructors attach to the assignment description.
type Assignment struct {
	ID                       int64             `json:"id"`
	CMID                     int64             `json:"cmid"`
	Course                   int64             `json:"course"`
	Name                     string            `json:"name"`
	DueDate                  int64             `json:"duedate"`
	AllowSubmissionsFromDate int64             `json:"allowsubmissionsfromdate"`
	Grade                    int               `json:"grade"`
	TimeModified             int64             `json:"timemodified"`
	CutoffDate               int64             `json:"cutoffdate"`
	Intro                    string            `json:"intro"`
	IntroFormat              int               `json:"introformat"`
	IntroAttachments         []IntroAttachment `json:"introattachments,omitempty"`
}

// IntroAttachment is a file attached to an assignment description
type IntroAttachment struct {
	Filename       string `json:"filename"`
	Filepath       string `json:"filepath"`
	Filesize       int64  `json:"filesize"`
	FileURL        string `json:"fileurl"`
	TimeModified   int64  `json:"timemodified"`
	MimeType       string `json:"mimetype"`
	IsExternalFile bool   `json:"isexternalfile"`
}

// Warning is Moodle's non-fatal problem report attached to some responses
type Warning struct {
	Item        string `json:"item,omitempty"`
	ItemID      int64  `json:"itemid,omitempty"`
	WarningCode string `json:"warningcode"`
	Message     string `json:"message"`
}
