package orgmode

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/harrisonrobin/gravity/pkg/model"
)

var (
	headlineRegex = regexp.MustCompile(`^\*+\s+(TODO|DONE)\s*(?:\[#([A-Z])\])?\s*(.*?)(?:\s+(:(\w+(:\w+)*):))?\s*$`)
	deadlineRegex = regexp.MustCompile(`DEADLINE:\s+<(\d{4}-\d{2}-\d{2})(?:\s+[A-Za-z]{2,3})?(?:\s+(\d{2}:\d{2}))?[^>]*>`)
	idRegex       = regexp.MustCompile(`:ID:\s+(\S+)`)
)

// Org priority cookies map onto importance tiers; headlines without a cookie are Minor.
var priorityTiers = map[string]model.Importance{
	"A": model.ImportanceAbsolute,
	"B": model.ImportanceCritical,
	"C": model.ImportanceRelevant,
}

func parseFile(filePath string) ([]model.Task, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}

// ParseFiles parses multiple Org-mode files and returns a slice of tasks.
func ParseFiles(filePaths []string) ([]model.Task, error) {
	var allTasks []model.Task
	for _, filePath := range filePaths {
		tasks, err := parseFile(filePath)
		if err != nil {
			return nil, err
		}
		allTasks = append(allTasks, tasks...)
	}
	return allTasks, nil
}

// Parse reads TODO/DONE headlines. A headline becomes a task when the next
// headline starts, provided it carried an :ID: and a DEADLINE. The kind
// comes from a headline tag naming one (:focus:, :trivial:, ...), else STANDARD.
func Parse(r io.Reader) ([]model.Task, error) {
	scanner := bufio.NewScanner(r)
	var tasks []model.Task
	var current *model.Task
	var due time.Time

	flush := func() {
		if current != nil && current.Title != "" && current.ID != "" && !due.IsZero() {
			current.Deadline = model.FormatDeadline(due)
			tasks = append(tasks, *current)
		}
		current = nil
		due = time.Time{}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "*") {
			flush()
			matches := headlineRegex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			current = &model.Task{
				Title:      strings.TrimSpace(matches[3]),
				Importance: model.ImportanceMinor,
				Kind:       model.KindStandard,
				Status:     model.StatusActive,
			}
			if matches[1] == "DONE" {
				current.Status = model.StatusCompleted
			}
			if tier, ok := priorityTiers[matches[2]]; ok {
				current.Importance = tier
			}
			if matches[4] != "" {
				for _, tag := range strings.Split(strings.Trim(matches[4], ":"), ":") {
					if k, err := model.ParseKind(tag); err == nil {
						current.Kind = k
						break
					}
				}
			}
			continue
		}
		if current == nil {
			continue
		}

		if matches := deadlineRegex.FindStringSubmatch(line); matches != nil {
			layout, value := "2006-01-02", matches[1]
			if matches[2] != "" {
				layout, value = "2006-01-02 15:04", matches[1]+" "+matches[2]
			}
			if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
				due = t
			}
		} else if matches := idRegex.FindStringSubmatch(line); matches != nil {
			current.ID = matches[1]
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}
