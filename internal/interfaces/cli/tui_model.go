package cli

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbletea"

	"github.com/lite-lake/infra-swarmops/internal/application/orchestrator"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/transport"
	"github.com/lite-lake/infra-swarmops/internal/stacks"
)

type ViewState int

const (
	ViewStateMainMenu ViewState = iota
	ViewStateStackSelect
	ViewStateHostSelect
	ViewStateInput
	ViewStateConfirm
	ViewStateProgress
	ViewStateResult
)

type MenuItem int

const (
	MenuDeployStack MenuItem = iota
	MenuHostCheck
	MenuProvisionHost
	MenuExit
)

var mainMenuItems = []string{
	"Deploy Stack        Deploy a catalogue stack",
	"Host Check          Inspect a host",
	"Provision Host      Harden a host and initialize Swarm",
	"Exit",
}

type Model struct {
	Env       string
	ConfigDir string

	Workflow *orchestrator.Workflow
	Config   *entity.Config
	Pool     *transport.Pool

	ViewState     ViewState
	MainMenuIndex int
	Action        MenuItem
	Cursor        int

	SelectedStack *entity.Stack
	SelectedHost  *entity.Host
	Definition    stacks.Definition

	Inputs     []stacks.Input
	InputIndex int
	Answers    map[string]string
	TextInput  textinput.Model

	Spinner      spinner.Model
	Loading      bool
	ProgressText string
	ResultText   string
	ResultErr    error
	ErrorMessage string

	Width  int
	Height int
}

type configLoadedMsg struct {
	workflow *orchestrator.Workflow
	config   *entity.Config
	err      error
}

type taskDoneMsg struct {
	output string
	err    error
}

func NewModel(env, configDir string) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 48

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return Model{
		Env:       env,
		ConfigDir: configDir,
		ViewState: ViewStateMainMenu,
		TextInput: ti,
		Spinner:   sp,
		Loading:   true,
	}
}

func (m Model) Init() tea.Cmd {
	return loadConfigCmd(m.Env, m.ConfigDir)
}
