package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbletea"

	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/stacks"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil
	case configLoadedMsg:
		m.Loading = false
		if msg.err != nil {
			m.ErrorMessage = msg.err.Error()
			return m, nil
		}
		m.Workflow = msg.workflow
		m.Config = msg.config
		m.Pool = msg.workflow.NewPool(msg.config)
		return m, nil
	case spinner.TickMsg:
		if m.ViewState != ViewStateProgress {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	case taskDoneMsg:
		m.ViewState = ViewStateResult
		m.ResultText = msg.output
		m.ResultErr = msg.err
		return m, nil
	case tea.KeyMsg:
		if msg.String() == KeyCtrlC {
			return m, tea.Quit
		}
		if m.ViewState == ViewStateInput {
			return m.handleInputKey(msg)
		}
		if m.ViewState == ViewStateProgress {
			return m, nil
		}
		switch msg.String() {
		case KeyQuit:
			return m, tea.Quit
		case KeyEscape:
			return m.handleEscape(), nil
		case KeyUp, KeyUpAlt:
			return m.handleUp(), nil
		case KeyDown, KeyDownAlt:
			return m.handleDown(), nil
		case KeyEnter:
			return m.handleEnter()
		case KeyYes:
			if m.ViewState == ViewStateConfirm {
				return m.startConfirmed()
			}
		case KeyNo:
			if m.ViewState == ViewStateConfirm {
				return m.handleEscape(), nil
			}
		}
	}
	return m, nil
}

func (m Model) listLen() int {
	if m.Config == nil {
		return 0
	}
	switch m.ViewState {
	case ViewStateStackSelect:
		return len(m.Config.Stacks)
	case ViewStateHostSelect:
		return len(m.Config.Hosts)
	}
	return 0
}

func (m Model) handleUp() Model {
	switch m.ViewState {
	case ViewStateMainMenu:
		if m.MainMenuIndex > 0 {
			m.MainMenuIndex--
		}
	case ViewStateStackSelect, ViewStateHostSelect:
		if m.Cursor > 0 {
			m.Cursor--
		}
	}
	return m
}

func (m Model) handleDown() Model {
	switch m.ViewState {
	case ViewStateMainMenu:
		if m.MainMenuIndex < len(mainMenuItems)-1 {
			m.MainMenuIndex++
		}
	case ViewStateStackSelect, ViewStateHostSelect:
		if m.Cursor < m.listLen()-1 {
			m.Cursor++
		}
	}
	return m
}

func (m Model) handleEscape() Model {
	switch m.ViewState {
	case ViewStateConfirm:
		if m.Action == MenuDeployStack {
			m.ViewState = ViewStateStackSelect
		} else {
			m.ViewState = ViewStateHostSelect
		}
	default:
		m.ViewState = ViewStateMainMenu
		m.ResultText = ""
		m.ResultErr = nil
	}
	m.ErrorMessage = ""
	return m
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.ViewState {
	case ViewStateMainMenu:
		m.Action = MenuItem(m.MainMenuIndex)
		if m.Action == MenuExit {
			return m, tea.Quit
		}
		if m.Config == nil {
			return m, nil
		}
		m.Cursor = 0
		m.ErrorMessage = ""
		if m.Action == MenuDeployStack {
			m.ViewState = ViewStateStackSelect
		} else {
			m.ViewState = ViewStateHostSelect
		}
		return m, nil
	case ViewStateStackSelect:
		return m.selectStack()
	case ViewStateHostSelect:
		if m.listLen() == 0 {
			return m, nil
		}
		m.SelectedHost = &m.Config.Hosts[m.Cursor]
		if m.Action == MenuHostCheck {
			return m.startTask(fmt.Sprintf("Checking %s", m.SelectedHost.Name),
				hostCheckCmd(m.Workflow, m.Pool, m.SelectedHost))
		}
		m.ViewState = ViewStateConfirm
		return m, nil
	case ViewStateResult:
		return m.handleEscape(), nil
	}
	return m, nil
}

func (m Model) selectStack() (tea.Model, tea.Cmd) {
	if m.listLen() == 0 {
		return m, nil
	}
	s := &m.Config.Stacks[m.Cursor]
	def, err := m.Workflow.Registry().Lookup(s.Kind)
	if err != nil {
		m.ErrorMessage = err.Error()
		return m, nil
	}
	m.SelectedStack = s
	m.Definition = def
	m.Answers = make(map[string]string)
	m.Inputs = missingInputs(def, s)
	if len(m.Inputs) == 0 {
		m.ViewState = ViewStateConfirm
		return m, nil
	}
	return m.startInput(0)
}

// missingInputs lists the inputs that stacks.yaml does not set.
func missingInputs(def stacks.Definition, s *entity.Stack) []stacks.Input {
	var out []stacks.Input
	for _, in := range def.Inputs() {
		if _, ok := s.Params[in.Key]; ok {
			continue
		}
		out = append(out, in)
	}
	return out
}

func (m Model) startInput(i int) (tea.Model, tea.Cmd) {
	in := m.Inputs[i]
	m.InputIndex = i
	m.ViewState = ViewStateInput
	m.ErrorMessage = ""

	m.TextInput.Reset()
	m.TextInput.Placeholder = inputPlaceholder(in)
	if in.Sensitive {
		m.TextInput.EchoMode = textinput.EchoPassword
		m.TextInput.EchoCharacter = '•'
	} else {
		m.TextInput.EchoMode = textinput.EchoNormal
	}
	cmd := m.TextInput.Focus()
	return m, tea.Batch(cmd, textinput.Blink)
}

func inputPlaceholder(in stacks.Input) string {
	switch {
	case in.Default != "":
		return in.Default
	case in.IsSecret() && in.Generate:
		return "empty keeps the existing secret or generates one"
	case in.IsSecret():
		return "empty keeps the existing secret"
	}
	return ""
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEscape:
		m.TextInput.Blur()
		m.ViewState = ViewStateStackSelect
		m.ErrorMessage = ""
		return m, nil
	case KeyEnter:
		in := m.Inputs[m.InputIndex]
		val := strings.TrimSpace(m.TextInput.Value())
		if val == "" && in.Required && !in.IsSecret() && in.Default == "" {
			m.ErrorMessage = fmt.Sprintf("%s is required", inputLabel(in))
			return m, nil
		}
		if val != "" && in.Validate != nil {
			if err := in.Validate(val); err != nil {
				m.ErrorMessage = err.Error()
				return m, nil
			}
		}
		m.Answers[in.Key] = val
		if m.InputIndex+1 < len(m.Inputs) {
			return m.startInput(m.InputIndex + 1)
		}
		m.TextInput.Blur()
		m.ErrorMessage = ""
		m.ViewState = ViewStateConfirm
		return m, nil
	}

	var cmd tea.Cmd
	m.TextInput, cmd = m.TextInput.Update(msg)
	return m, cmd
}

func inputLabel(in stacks.Input) string {
	if in.Label != "" {
		return in.Label
	}
	return in.Key
}

func (m Model) startConfirmed() (tea.Model, tea.Cmd) {
	if m.Action == MenuDeployStack {
		return m.startTask(fmt.Sprintf("Deploying %s to %s", m.SelectedStack.Name, m.SelectedStack.Host),
			deployCmd(m.Workflow, m.Config, m.Pool, m.SelectedStack.Name, m.Answers))
	}
	return m.startTask(fmt.Sprintf("Provisioning %s", m.SelectedHost.Name),
		provisionCmd(m.Workflow, m.Pool, m.SelectedHost))
}

func (m Model) startTask(text string, task tea.Cmd) (tea.Model, tea.Cmd) {
	m.ViewState = ViewStateProgress
	m.ProgressText = text
	m.ResultText = ""
	m.ResultErr = nil
	return m, tea.Batch(m.Spinner.Tick, task)
}

func Run(env string, configDir string) error {
	p := tea.NewProgram(NewModel(env, configDir), tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(Model); ok && fm.Pool != nil {
		fm.Pool.CloseAll()
	}
	return err
}

func runTUI(ctx *Context) error {
	return Run(ctx.Env, ctx.ConfigDir)
}
