package cli

import (
	"fmt"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

func (m Model) View() string {
	switch m.ViewState {
	case ViewStateStackSelect:
		return m.renderStackSelect()
	case ViewStateHostSelect:
		return m.renderHostSelect()
	case ViewStateInput:
		return m.renderInput()
	case ViewStateConfirm:
		return m.renderConfirm()
	case ViewStateProgress:
		return m.renderProgress()
	case ViewStateResult:
		return m.renderResult()
	}
	return m.renderMainMenu()
}

func (m Model) renderTitle(sub string) string {
	title := fmt.Sprintf("  Swarmops [%s]", strings.ToUpper(m.Env))
	if sub != "" {
		title += "  " + sub
	}
	return TitleStyle.Render(title) + "\n\n"
}

func (m Model) renderError() string {
	if m.ErrorMessage == "" {
		return ""
	}
	return "\n" + ErrorStyle.Render("  "+m.ErrorMessage) + "\n"
}

func (m Model) renderMainMenu() string {
	var sb strings.Builder
	sb.WriteString(m.renderTitle(""))

	if m.Loading {
		sb.WriteString(fmt.Sprintf("  %s Loading configuration...\n", m.Spinner.View()))
		return BaseStyle.Render(sb.String())
	}

	for i, item := range mainMenuItems {
		if i == m.MainMenuIndex {
			sb.WriteString(MenuSelectedStyle.Render("> "+item) + "\n")
		} else {
			sb.WriteString(MenuItemStyle.Render("  "+item) + "\n")
		}
	}
	sb.WriteString(m.renderError())
	sb.WriteString("\n" + BuildHelpText([]HelpItem{HelpNavUp, HelpEnter, HelpQuit}))
	return BaseStyle.Render(sb.String())
}

func (m Model) renderStackSelect() string {
	var sb strings.Builder
	sb.WriteString(m.renderTitle("Deploy Stack"))

	if len(m.Config.Stacks) == 0 {
		sb.WriteString(WarningStyle.Render("  No stacks defined in stacks.yaml") + "\n")
	}
	for i, s := range m.Config.Stacks {
		line := fmt.Sprintf("%-20s %-12s %s", s.Name, s.Kind, s.Host)
		if i == m.Cursor {
			sb.WriteString(MenuSelectedStyle.Render("> "+line) + "\n")
		} else {
			sb.WriteString(MenuItemStyle.Render("  "+line) + "\n")
		}
	}
	sb.WriteString(m.renderError())
	sb.WriteString("\n" + BuildHelpText([]HelpItem{HelpNavUp, HelpEnter, HelpEsc, HelpQuit}))
	return BaseStyle.Render(sb.String())
}

func (m Model) renderHostSelect() string {
	var sb strings.Builder
	sub := "Host Check"
	if m.Action == MenuProvisionHost {
		sub = "Provision Host"
	}
	sb.WriteString(m.renderTitle(sub))

	if len(m.Config.Hosts) == 0 {
		sb.WriteString(WarningStyle.Render("  No hosts defined in hosts.yaml") + "\n")
	}
	for i, h := range m.Config.Hosts {
		line := fmt.Sprintf("%-20s %s", h.Name, hostAddress(&h))
		if i == m.Cursor {
			sb.WriteString(MenuSelectedStyle.Render("> "+line) + "\n")
		} else {
			sb.WriteString(MenuItemStyle.Render("  "+line) + "\n")
		}
	}
	sb.WriteString("\n" + BuildHelpText([]HelpItem{HelpNavUp, HelpEnter, HelpEsc, HelpQuit}))
	return BaseStyle.Render(sb.String())
}

func (m Model) renderInput() string {
	var sb strings.Builder
	sb.WriteString(m.renderTitle(fmt.Sprintf("Deploy %s", m.SelectedStack.Name)))

	in := m.Inputs[m.InputIndex]
	sb.WriteString(fmt.Sprintf("  %s (%d/%d)\n", LabelStyle.Render(inputLabel(in)), m.InputIndex+1, len(m.Inputs)))
	sb.WriteString("  " + m.TextInput.View() + "\n")
	sb.WriteString(m.renderError())
	sb.WriteString("\n" + BuildHelpText([]HelpItem{HelpSubmit, HelpEsc}))
	return BaseStyle.Render(sb.String())
}

func (m Model) renderConfirm() string {
	var sb strings.Builder
	sb.WriteString(m.renderTitle("Confirm"))

	if m.Action == MenuDeployStack {
		sb.WriteString(fmt.Sprintf("  Deploy stack %s (%s) to host %s?\n",
			m.SelectedStack.Name, m.SelectedStack.Kind, m.SelectedStack.Host))
	} else {
		sb.WriteString(fmt.Sprintf("  Provision host %s (%s)?\n", m.SelectedHost.Name, hostAddress(m.SelectedHost)))
		sb.WriteString(WarningStyle.Render("  SSH, firewall and docker settings on the host will change.") + "\n")
	}
	sb.WriteString("\n" + BuildHelpText([]HelpItem{HelpConfirm, HelpEsc}))
	return BaseStyle.Render(sb.String())
}

func (m Model) renderProgress() string {
	var sb strings.Builder
	sb.WriteString(m.renderTitle(""))
	sb.WriteString(fmt.Sprintf("  %s %s\n", m.Spinner.View(), m.ProgressText))
	sb.WriteString("\n" + HelpStyle.Render("  Ctrl+C to cancel"))
	return BaseStyle.Render(sb.String())
}

func (m Model) renderResult() string {
	var sb strings.Builder
	sb.WriteString(m.renderTitle("Result"))

	if m.ResultText != "" {
		sb.WriteString(m.ResultText)
		if !strings.HasSuffix(m.ResultText, "\n") {
			sb.WriteString("\n")
		}
	}
	if m.ResultErr != nil {
		sb.WriteString("\n" + ErrorStyle.Render("  ✗ "+m.ResultErr.Error()) + "\n")
	} else {
		sb.WriteString("\n" + SuccessStyle.Render("  ✓ Done") + "\n")
	}
	sb.WriteString("\n" + BuildHelpText([]HelpItem{{Key: "Enter", Desc: "back"}, HelpQuit}))
	return BaseStyle.Render(sb.String())
}

func hostAddress(h *entity.Host) string {
	if h.Local {
		return "local"
	}
	return h.IP.Public
}
