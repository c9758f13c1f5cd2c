package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harrisonrobin/gravity/pkg/model"
	"github.com/harrisonrobin/gravity/pkg/ranking"
	"github.com/harrisonrobin/gravity/pkg/tasks"
)

// feedbackDuration is how long the affirmation stays on screen.
const feedbackDuration = 3 * time.Second

var affirmations = []string{
	"Reality reconciled.",
	"A quiet victory.",
	"Momentum maintained.",
	"One less obligation.",
}

const (
	fieldTitle = iota
	fieldImportance
	fieldKind
	fieldDue
	fieldCount
)

// Messages
type tickMsg time.Time

type clearFeedbackMsg struct {
	seq int
}

// Model is the root Bubble Tea model
type Model struct {
	coll *tasks.Collection
	keys KeyMap
	now  func() time.Time
	tick time.Duration

	result ranking.Result
	cursor int // index into result.Queue

	adding bool
	form   []textinput.Model
	field  int

	feedback    string
	feedbackSeq int
	completions int
	err         string

	width int
}

type Option func(*Model)

// WithClock replaces the wall clock used for ranking.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

func New(coll *tasks.Collection, tick time.Duration, opts ...Option) Model {
	m := Model{
		coll: coll,
		keys: DefaultKeyMap(),
		now:  time.Now,
		tick: tick,
		form: newForm(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.refresh()
	return m
}

// Run starts the interactive program and blocks until it exits.
func Run(coll *tasks.Collection, tick time.Duration) error {
	_, err := tea.NewProgram(New(coll, tick), tea.WithAltScreen()).Run()
	return err
}

func newForm() []textinput.Model {
	placeholders := [fieldCount]string{
		fieldTitle:      "Title",
		fieldImportance: "Importance 1-4",
		fieldKind:       "TRIVIAL, STANDARD, FOCUS or EPIC",
		fieldDue:        "Due: 2h, 90m or RFC3339",
	}
	defaults := [fieldCount]string{
		fieldImportance: "2",
		fieldKind:       string(model.KindFocus),
		fieldDue:        "2h",
	}
	form := make([]textinput.Model, fieldCount)
	for i := range form {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.SetValue(defaults[i])
		ti.CharLimit = 120
		form[i] = ti
	}
	return form
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tickCmd(m.tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tick)

	case clearFeedbackMsg:
		if msg.seq == m.feedbackSeq {
			m.feedback = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateForm(msg)
		}
		return m.updateQueue(msg)
	}
	return m, nil
}

func (m Model) updateQueue(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.result.Queue)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.err = ""
		m.form = newForm()
		m.field = fieldTitle
		return m, m.form[m.field].Focus()
	case key.Matches(msg, m.keys.CompleteActive):
		if m.result.Active != nil {
			return m.complete(m.result.Active.Task.ID)
		}
	case key.Matches(msg, m.keys.CompleteSelected):
		if m.cursor < len(m.result.Queue) {
			return m.complete(m.result.Queue[m.cursor].Task.ID)
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.adding = false
		m.err = ""
		return m, nil
	case key.Matches(msg, m.keys.Submit), key.Matches(msg, m.keys.Next):
		if m.field < fieldCount-1 {
			m.form[m.field].Blur()
			m.field++
			return m, m.form[m.field].Focus()
		}
		if key.Matches(msg, m.keys.Submit) {
			return m.submit()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.form[m.field], cmd = m.form[m.field].Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	draft, err := m.draft()
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	if _, err := m.coll.Add(context.Background(), draft); err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.adding = false
	m.err = ""
	m.refresh()
	return m, nil
}

func (m Model) draft() (tasks.Draft, error) {
	tier, err := strconv.Atoi(strings.TrimSpace(m.form[fieldImportance].Value()))
	if err != nil {
		return tasks.Draft{}, fmt.Errorf("importance must be a number 1-4")
	}
	kind, err := model.ParseKind(m.form[fieldKind].Value())
	if err != nil {
		return tasks.Draft{}, err
	}
	due, err := tasks.ParseDue(m.form[fieldDue].Value(), m.now())
	if err != nil {
		return tasks.Draft{}, err
	}
	return tasks.Draft{
		Title:      m.form[fieldTitle].Value(),
		Importance: model.Importance(tier),
		Kind:       kind,
		Deadline:   due,
	}, nil
}

func (m Model) complete(id string) (tea.Model, tea.Cmd) {
	if _, err := m.coll.Complete(context.Background(), id); err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.err = ""
	m.feedback = affirmations[m.completions%len(affirmations)]
	m.completions++
	m.feedbackSeq++
	m.refresh()

	seq := m.feedbackSeq
	return m, tea.Tick(feedbackDuration, func(time.Time) tea.Msg {
		return clearFeedbackMsg{seq: seq}
	})
}

func (m *Model) refresh() {
	m.result = m.coll.Rank(m.now())
	if m.cursor >= len(m.result.Queue) {
		m.cursor = len(m.result.Queue) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("gravity"))
	b.WriteString(MutedStyle.Render("  " + m.result.At.Format("Mon 15:04")))
	b.WriteString("\n\n")

	if m.adding {
		b.WriteString(SectionTitleStyle.Render("New task"))
		b.WriteString("\n")
		for i := range m.form {
			b.WriteString(m.form[i].View())
			b.WriteString("\n")
		}
		if m.err != "" {
			b.WriteString(ErrorStyle.Render(m.err) + "\n")
		}
		b.WriteString(MutedStyle.Render("tab next · enter save · esc cancel"))
		return b.String()
	}

	if m.result.Active == nil {
		b.WriteString(MutedStyle.Render("Nothing pending. Press a to add a task."))
		b.WriteString("\n")
	} else {
		var active strings.Builder
		active.WriteString(ActiveTitleStyle.Render(m.result.Active.Task.Title))
		active.WriteString(MutedStyle.Render(fmt.Sprintf("  %.3f", m.result.Active.Score)))
		for _, seg := range m.result.Plan {
			active.WriteString("\n")
			active.WriteString(segmentStyle(seg.Kind).Render("• " + seg.Label()))
		}
		b.WriteString(SectionTitleStyle.Render("Active"))
		b.WriteString("\n")
		b.WriteString(ActiveStyle.Render(active.String()))
		b.WriteString("\n")
	}

	if m.feedback != "" {
		b.WriteString(FeedbackStyle.Render(m.feedback))
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString(ErrorStyle.Render(m.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(SectionTitleStyle.Render("Queue"))
	b.WriteString("\n")
	if len(m.result.Queue) == 0 {
		b.WriteString(MutedStyle.Render("empty") + "\n")
	}
	for i, r := range m.result.Queue {
		line := fmt.Sprintf("%-40s %-8s %.3f", r.Task.Title, r.Task.Kind, r.Score)
		if i == m.cursor {
			b.WriteString(SelectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if n := len(m.result.Skipped); n > 0 {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("%d task(s) skipped: malformed data", n)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	var help []string
	for _, k := range m.keys.ShortHelp() {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(MutedStyle.Render(strings.Join(help, " · ")))
	return b.String()
}
