package service

import (
	"strings"
	"unicode/utf8"

	dom "taskboard/internal/domain"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
)

// CreateTask is the validated input for TaskService.Create.
// Zero Status and Priority mean "use the default".
type CreateTask struct {
	Title        string
	Description  string
	Status       dom.Status
	Completed    *bool
	Priority     dom.Priority
	Dependencies []string
}

// UpdateTask carries only the fields the client supplied; nil means unchanged.
type UpdateTask struct {
	Title        *string
	Description  *string
	Status       *dom.Status
	Completed    *bool
	Priority     *dom.Priority
	Dependencies *[]string
}

func (c CreateTask) build() (dom.Task, error) {
	t := dom.Task{
		Status:   dom.StatusNotStarted,
		Priority: dom.PriorityMedium,
	}
	var err error
	if t.Title, err = cleanTitle(c.Title); err != nil {
		return dom.Task{}, err
	}
	if t.Description, err = cleanDescription(c.Description); err != nil {
		return dom.Task{}, err
	}
	if c.Status != "" {
		if !c.Status.Valid() {
			return dom.Task{}, invalidStatus(c.Status)
		}
		t.Status = c.Status
	}
	if c.Completed != nil {
		if t.Status, err = reconcile(t.Status, c.Status != "", *c.Completed); err != nil {
			return dom.Task{}, err
		}
	}
	if c.Priority != "" {
		if !c.Priority.Valid() {
			return dom.Task{}, invalidPriority(c.Priority)
		}
		t.Priority = c.Priority
	}
	if t.Dependencies, err = cleanDependencies("", c.Dependencies); err != nil {
		return dom.Task{}, err
	}
	return t, nil
}

// apply merges u into a copy of t. id and timestamps are never touched here.
func (u UpdateTask) apply(t dom.Task) (dom.Task, error) {
	t = t.Clone()
	var err error
	if u.Title != nil {
		if t.Title, err = cleanTitle(*u.Title); err != nil {
			return dom.Task{}, err
		}
	}
	if u.Description != nil {
		if t.Description, err = cleanDescription(*u.Description); err != nil {
			return dom.Task{}, err
		}
	}
	if u.Status != nil {
		if !u.Status.Valid() {
			return dom.Task{}, invalidStatus(*u.Status)
		}
		t.Status = *u.Status
	}
	if u.Completed != nil {
		if t.Status, err = reconcile(t.Status, u.Status != nil, *u.Completed); err != nil {
			return dom.Task{}, err
		}
	}
	if u.Priority != nil {
		if !u.Priority.Valid() {
			return dom.Task{}, invalidPriority(*u.Priority)
		}
		t.Priority = *u.Priority
	}
	if u.Dependencies != nil {
		if t.Dependencies, err = cleanDependencies(t.ID, *u.Dependencies); err != nil {
			return dom.Task{}, err
		}
	}
	return t, nil
}

// reconcile folds the boolean completed flag into status. explicit is true when
// the same request also set status, in which case the two must agree.
func reconcile(status dom.Status, explicit, completed bool) (dom.Status, error) {
	switch {
	case completed && status == dom.StatusDone, !completed && status != dom.StatusDone:
		return status, nil
	case explicit:
		return "", invalid("completed", "contradicts status %q", status)
	case completed:
		return dom.StatusDone, nil
	default:
		return dom.StatusNotStarted, nil
	}
}

func cleanTitle(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid("title", "must not be empty")
	}
	if utf8.RuneCountInString(s) > maxTitleLen {
		return "", invalid("title", "must be at most %d characters", maxTitleLen)
	}
	return s, nil
}

func cleanDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxDescriptionLen {
		return "", invalid("description", "must be at most %d characters", maxDescriptionLen)
	}
	return s, nil
}

// cleanDependencies trims ids and drops blanks and repeats, keeping order.
// Referenced ids are not required to exist.
func cleanDependencies(self string, deps []string) ([]string, error) {
	out := []string{}
	seen := make(map[string]bool, len(deps))
	for _, d := range deps {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		if self != "" && d == self {
			return nil, invalid("dependencies", "task cannot depend on itself")
		}
		seen[d] = true
		out = append(out, d)
	}
	return out, nil
}

func invalidStatus(s dom.Status) error {
	return invalid("status", "unknown value %q (want %s, %s or %s)", s, dom.StatusNotStarted, dom.StatusInProgress, dom.StatusDone)
}

func invalidPriority(p dom.Priority) error {
	return invalid("priority", "unknown value %q (want %s, %s or %s)", p, dom.PriorityLow, dom.PriorityMedium, dom.PriorityHigh)
}
