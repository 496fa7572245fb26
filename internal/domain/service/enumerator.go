package service

import (
	"context"
	"fmt"

	"github.com/pwrtux/moodle-magnet/internal/domain/course"
	"github.com/pwrtux/moodle-magnet/internal/moodle"
)

// Enumerator lists a user's courses and builds their content trees. It is the
// only place raw API shapes are mapped into domain nodes, so the file-leaf
// invariant holds everywhere downstream.
type Enumerator struct {
	api MoodleAPI
}

func NewEnumerator(api MoodleAPI) *Enumerator {
	return &Enumerator{api: api}
}

// ListCourses returns the courses the token's user is enrolled in, excluding
// hidden ones. API errors propagate unchanged so the caller can decide
// between aborting and skipping.
func (e *Enumerator) ListCourses(ctx context.Context) ([]course.Course, error) {
	info, err := e.api.SiteInfo(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := e.api.UserCourses(ctx, info.UserID)
	if err != nil {
		return nil, err
	}

	courses := make([]course.Course, 0, len(raw))
	for _, c := range raw {
		mapped := course.Course{
			ID:        c.ID,
			ShortName: c.ShortName,
			FullName:  c.FullName,
			Hidden:    c.Visible == 0,
		}
		if mapped.Hidden {
			continue
		}
		courses = append(courses, mapped)
	}

	return courses, nil
}

// ListRecentCourses returns recently accessed courses, excluding hidden ones
func (e *Enumerator) ListRecentCourses(ctx context.Context) ([]course.Course, error) {
	raw, err := e.api.RecentCourses(ctx)
	if err != nil {
		return nil, err
	}

	courses := make([]course.Course, 0, len(raw))
	for _, c := range raw {
		if c.Hidden {
			continue
		}
		courses = append(courses, course.Course{
			ID:        c.ID,
			ShortName: c.ShortName,
			FullName:  c.FullName,
		})
	}

	return courses, nil
}

// ResolveCourse finds a single course by id for restricted runs. When the
// course list cannot be searched or the id is absent from it, a placeholder
// name is used so the run can still proceed against the id.
func (e *Enumerator) ResolveCourse(ctx context.Context, id int64) course.Course {
	if courses, err := e.ListCourses(ctx); err == nil {
		for _, c := range courses {
			if c.ID == id {
				return c
			}
		}
	}

	return course.Course{
		ID:       id,
		FullName: fmt.Sprintf("Course_%d", id),
	}
}

// Contents fetches one course's section tree and maps it into domain nodes.
// With harvestLinks set, pluginfile references embedded in section summaries
// and module descriptions become extra file leaves.
func (e *Enumerator) Contents(ctx context.Context, c course.Course, harvestLinks bool) (*course.Node, error) {
	sections, err := e.api.CourseContents(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return buildTree(c, sections, harvestLinks), nil
}

// buildTree validates and maps the raw section shapes once, at the API
// boundary. Only contents carrying a file URL become leaves; everything else
// is structure. Harvested links are deduplicated by URL against the whole
// tree, so a file both listed and embedded appears once.
func buildTree(c course.Course, sections []moodle.Section, harvestLinks bool) *course.Node {
	root := course.NewSection(c.Name())
	seen := make(map[string]bool)

	appendNew := func(parent *course.Node, leaves []*course.Node) {
		for _, leaf := range leaves {
			if seen[leaf.FileURL] {
				continue
			}
			seen[leaf.FileURL] = true
			parent.Children = append(parent.Children, leaf)
		}
	}

	for _, s := range sections {
		sectionNode := course.NewSection(s.Name)

		for _, m := range s.Modules {
			moduleNode := course.NewModule(m.Name)

			for _, content := range m.Contents {
				// External-link entries carry a fileurl too; only real
				// files are downloadable
				if content.Type != "file" || content.FileURL == "" {
					continue
				}
				appendNew(moduleNode, []*course.Node{
					course.NewFile(content.Filename, content.FileURL, content.Filesize, content.TimeModified),
				})
			}

			if harvestLinks {
				appendNew(moduleNode, HarvestFileLinks(m.Description))
			}

			sectionNode.Children = append(sectionNode.Children, moduleNode)
		}

		if harvestLinks {
			appendNew(sectionNode, HarvestFileLinks(s.Summary))
		}

		root.Children = append(root.Children, sectionNode)
	}

	return root
}
