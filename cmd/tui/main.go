package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/td0m/remind/internal/ui"
	"github.com/td0m/remind/pkg/engine"
	"github.com/td0m/remind/pkg/persist"
	"github.com/td0m/remind/pkg/task"
	"github.com/td0m/remind/pkg/task/date"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

var (
	filePath = flag.String("file", "./tasks.json", "Path to task file")
	user     = flag.String("user", "me", "User whose tasks to manage")
)

func main() {
	flag.Parse()

	e, err := engine.New(persist.InJSON(*filePath), engine.SystemClock())
	check(err)

	i := textinput.NewModel()
	i.Focus()
	i.Prompt = ""
	i.Width = 40

	a := &app{
		engine:   e,
		user:     *user,
		input:    i,
		viewport: viewport.Model{},
	}

	p := tea.NewProgram(a)
	p.EnterAltScreen()
	defer p.ExitAltScreen()

	check(p.Start())
}

const (
	headerHeight = 3
	footerHeight = 1
)

type mode int

const (
	modeNormal mode = iota
	modeAdd
	modeSnooze
)

type app struct {
	engine *engine.Engine
	user   string

	mode     mode
	viewport viewport.Model
	input    textinput.Model

	cursor  int
	tasks   []engine.Listed
	pending *engine.PendingDeletion
	status  string
}

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (m *app) Init() tea.Cmd {
	m.updateTasks()
	return nil
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (m *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		verticalMargins := headerHeight + footerHeight
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - verticalMargins
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			m.mode = modeNormal
			m.status = ""
		default:
			cmd = m.keyUpdate(msg)
		}
	}
	m.render()
	return m, cmd
}

// handle keys differently based on the current mode
func (m *app) keyUpdate(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.mode {
	case modeAdd:
		if msg.Type == tea.KeyEnter {
			m.addTask(m.input.Value())
			m.mode = modeNormal
			m.updateTasks()
		} else {
			m.input, cmd = m.input.Update(msg)
		}
	case modeSnooze:
		switch msg.String() {
		case "h":
			m.snoozeAtCursor(engine.SnoozeHour, "an hour")
		case "d":
			m.snoozeAtCursor(engine.SnoozeDay, "a day")
		}
		m.mode = modeNormal
		m.updateTasks()
	case modeNormal:
		switch msg.String() {
		case "q":
			return tea.Quit
		case "j":
			m.setCursor(m.cursor + 1)
		case "k":
			m.setCursor(m.cursor - 1)
		case "g":
			m.setCursor(0)
		case "G":
			m.setCursor(len(m.tasks))
		case "o", "a":
			m.mode = modeAdd
			m.status = ""
			m.input.SetValue("")
		case "x":
			m.deleteAtCursor()
			m.updateTasks()
		case "u":
			m.restore()
			m.updateTasks()
		case "s":
			if m.atCursor() != nil {
				m.mode = modeSnooze
				m.status = "snooze for: (h)our / (d)ay"
			}
		case "t":
			if t := m.atCursor(); t != nil {
				err := m.engine.Complete(m.user, []string{t.Description})
				m.reportErr(err)
				m.updateTasks()
			}
		}
	}
	return cmd
}

// addTask parses "description MM-DD": everything up to the last field
// is the description, the last field is the due date
func (m *app) addTask(input string) {
	fields := strings.Fields(input)
	if len(fields) < 2 {
		m.status = "usage: <description> <MM-DD>"
		return
	}
	md, err := date.ParseMonthDay(fields[len(fields)-1])
	if err != nil {
		m.status = "invalid date, use MM-DD (e.g. 07-15 for July 15)"
		return
	}
	description := strings.Join(fields[:len(fields)-1], " ")
	added, err := m.engine.Add(m.user, description, md)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("added %q due %s", added.Description, added.Due.Format("January 2, 2006"))
}

func (m *app) deleteAtCursor() {
	t := m.atCursor()
	if t == nil {
		return
	}
	pending, err := m.engine.DeleteAt(m.user, m.cursor)
	if err != nil {
		m.reportErr(err)
		return
	}
	// the new pending deletion supersedes any previous one
	m.pending = pending
	m.status = fmt.Sprintf("deleted %q ∙ press u to add it back", pending.Task().Description)
}

func (m *app) restore() {
	if m.pending == nil {
		return
	}
	if err := m.pending.Restore(); err != nil {
		m.reportErr(err)
		return
	}
	m.status = fmt.Sprintf("%q added back", m.pending.Task().Description)
	m.pending = nil
}

func (m *app) snoozeAtCursor(d time.Duration, human string) {
	t := m.atCursor()
	if t == nil {
		return
	}
	if err := m.engine.Snooze(m.user, []string{t.Description}, d); err != nil {
		m.reportErr(err)
		return
	}
	m.status = fmt.Sprintf("%q snoozed for %s", t.Description, human)
}

// reportErr surfaces failed saves and friends on the statusline
// instead of swallowing them
func (m *app) reportErr(err error) {
	if err != nil {
		m.status = err.Error()
	}
}

func (m *app) updateTasks() {
	m.tasks = m.engine.List(m.user)
	m.setCursor(m.cursor)
}

func (m *app) atCursor() *engine.Listed {
	if m.cursor >= len(m.tasks) {
		return nil
	}
	return &m.tasks[m.cursor]
}

func (m *app) setCursor(value int) {
	size := len(m.tasks)
	m.cursor = clamp(value, 0, max(size-1, 0))

	if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.YOffset = m.cursor - m.viewport.Height + 1
	}
	if m.cursor < m.viewport.YOffset {
		m.viewport.YOffset = m.cursor
	}
}

func (m *app) render() {
	m.viewport.SetContent(m.viewTasks())
}

func (m *app) viewTasks() string {
	now := m.engine.Now()
	s := ""
	for i, t := range m.tasks {
		title := ui.TaskTitle
		if i == m.cursor {
			title = title.Copy().Background(ui.Faded)
		}
		c := t.Classify(now)
		if c == task.Snoozed {
			title = title.Copy().Foreground(ui.Faded)
		}
		s += ui.TaskIcon.Render("∙")
		s += title.Render(t.Description)
		s += ui.TaskDivider
		s += lipgloss.NewStyle().Foreground(ui.StatusColor(t.DaysLeft(now), c)).Render(t.Status)
		s += "\n"
	}
	if len(m.tasks) == 0 {
		s = lipgloss.NewStyle().Foreground(ui.Faded).Render("no tasks ∙ press a to add one")
	}
	return s
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (m *app) View() string {
	due := len(m.engine.EvaluateOnActivity(m.user))
	info := m.user
	if due > 0 {
		info += " ∙ " + strconv.Itoa(due) + " due"
	}

	statusline := m.status
	if m.mode == modeAdd {
		statusline = "new task: " + m.input.View()
	}
	return ui.Header("remind", info, m.viewport.Width) + m.viewport.View() + "\n" + statusline
}

func clamp(v, low, high int) int {
	return min(high, max(low, v))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
