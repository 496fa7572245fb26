package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pwrtux/moodle-magnet/internal/domain/course"
	"github.com/pwrtux/moodle-magnet/internal/usecase"
)

const (
	phasePicking = iota
	phaseConfirming
)

// Model is the interactive course picker. All courses start selected, so
// confirming without touching anything matches the non-interactive default.
type Model struct {
	courses  []course.Course
	selected map[int]bool
	cursor   int
	viewTop  int
	width    int
	height   int
	phase    int
	status   string
	aborted  bool
	keys     KeyMap
}

func NewModel(courses []course.Course) Model {
	selected := make(map[int]bool, len(courses))
	for i := range courses {
		selected[i] = true
	}
	return Model{
		courses:  courses,
		selected: selected,
		keys:     DefaultKeyMap(),
		width:    100,
		height:   30,
	}
}

func (model Model) Init() tea.Cmd {
	return nil
}

func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return model.handleKey(typed)
	case tea.WindowSizeMsg:
		model.width = typed.Width
		model.height = typed.Height
		model.ensureCursorVisible()
		return model, nil
	default:
		return model, nil
	}
}

func (model Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, model.keys.Quit):
		model.aborted = true
		return model, tea.Quit
	case model.phase == phaseConfirming && key.Matches(msg, model.keys.Yes):
		return model, tea.Quit
	case model.phase == phaseConfirming:
		// Anything but an explicit yes returns to the list
		model.phase = phasePicking
		model.status = "Download cancelled"
		return model, nil
	case key.Matches(msg, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
			model.ensureCursorVisible()
		}
		return model, nil
	case key.Matches(msg, model.keys.Down):
		if model.cursor < len(model.courses)-1 {
			model.cursor++
			model.ensureCursorVisible()
		}
		return model, nil
	case key.Matches(msg, model.keys.Toggle):
		model.selected[model.cursor] = !model.selected[model.cursor]
		model.status = ""
		return model, nil
	case key.Matches(msg, model.keys.All):
		all := model.selectedCount() == len(model.courses)
		for i := range model.courses {
			model.selected[i] = !all
		}
		model.status = ""
		return model, nil
	case key.Matches(msg, model.keys.Confirm):
		if model.selectedCount() == 0 {
			model.status = "No courses selected"
			return model, nil
		}
		model.phase = phaseConfirming
		return model, nil
	default:
		return model, nil
	}
}

// Aborted reports whether the user quit without confirming
func (model Model) Aborted() bool {
	return model.aborted
}

// Selection returns the selected courses in their original order
func (model Model) Selection() []course.Course {
	picked := make([]course.Course, 0, len(model.courses))
	for i, c := range model.courses {
		if model.selected[i] {
			picked = append(picked, c)
		}
	}
	return picked
}

func (model Model) selectedCount() int {
	n := 0
	for _, on := range model.selected {
		if on {
			n++
		}
	}
	return n
}

func (model *Model) ensureCursorVisible() {
	listHeight := model.listHeight()
	if listHeight <= 0 {
		return
	}
	if model.cursor < model.viewTop {
		model.viewTop = model.cursor
	}
	if model.cursor >= model.viewTop+listHeight {
		model.viewTop = model.cursor - listHeight + 1
	}
	maxTop := len(model.courses) - listHeight
	if maxTop < 0 {
		maxTop = 0
	}
	if model.viewTop > maxTop {
		model.viewTop = maxTop
	}
}

func (model Model) listHeight() int {
	height := model.height - 6
	if height < 3 {
		return 3
	}
	return height
}

// PickCourses runs the picker and returns the confirmed subset. Quitting
// without confirming returns ErrAborted so the caller can exit cleanly.
func PickCourses(ctx context.Context, courses []course.Course) ([]course.Course, error) {
	if len(courses) == 0 {
		return courses, nil
	}

	program := tea.NewProgram(NewModel(courses), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("course picker failed: %w", err)
	}

	model, ok := final.(Model)
	if !ok || model.Aborted() {
		return nil, usecase.ErrAborted
	}
	return model.Selection(), nil
}
