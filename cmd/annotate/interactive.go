package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-annotate/annotation"
	"github.com/wippyai/wasm-annotate/wasm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	model    *annotation.Model
	filename string
	funcs    []funcInfo
	filter   textinput.Model
	selected int
	state    modelState
}

type funcInfo struct {
	name      string
	native    string
	params    []paramInfo
	index     uint32
	annotated bool
}

type paramInfo struct {
	lowered wit.Type
	tag     annotation.TypeTag
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateShowFunc
	stateShowPersist
)

func newInteractiveModel(filename string) *interactiveModel {
	filter := textinput.New()
	filter.Placeholder = "filter exports"
	filter.Prompt = "/ "
	filter.Width = 40
	filter.Focus()

	return &interactiveModel{
		filename: filename,
		filter:   filter,
		state:    stateSelectFunc,
	}
}

type loadedMsg struct {
	err   error
	model *annotation.Model
	funcs []funcInfo
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.loadModule, textinput.Blink)
}

func (m *interactiveModel) loadModule() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	module, err := wasm.ParseModule(data)
	if err != nil {
		return loadedMsg{err: err}
	}
	model, err := annotation.MergeBinary(data)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{model: model, funcs: exportedFuncs(model, module)}
}

func exportedFuncs(model *annotation.Model, module *wasm.Module) []funcInfo {
	funcs := make([]funcInfo, 0, len(model.Exports))
	for name, idx := range model.Exports {
		fi := funcInfo{name: name, index: idx, native: nativeSignature(module.GetFuncType(idx))}
		if ft, ok := model.TypeOf(idx); ok {
			fi.annotated = true
			for _, tag := range ft.Params {
				fi.params = append(fi.params, paramInfo{tag: tag, lowered: loweredType(tag)})
			}
		}
		funcs = append(funcs, fi)
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].name < funcs[j].name })
	return funcs
}

func nativeSignature(ft *wasm.FuncType) string {
	if ft == nil {
		return "?"
	}
	names := func(types []wasm.ValType) string {
		s := make([]string, len(types))
		for i, t := range types {
			s[i] = t.String()
		}
		return strings.Join(s, ", ")
	}
	return "(" + names(ft.Params) + ") -> (" + names(ft.Results) + ")"
}

// loweredType is the component-model type a host sees for a parameter
// after lowering to core values. Reference tags travel as u32 handles.
func loweredType(tag annotation.TypeTag) wit.Type {
	switch tag {
	case annotation.I32:
		return wit.S32{}
	case annotation.I64:
		return wit.S64{}
	case annotation.F32:
		return wit.F32{}
	case annotation.F64:
		return wit.F64{}
	default:
		return wit.U32{}
	}
}

func (m *interactiveModel) visible() []funcInfo {
	q := strings.TrimSpace(m.filter.Value())
	if q == "" {
		return m.funcs
	}
	var out []funcInfo
	for _, f := range m.funcs {
		if strings.Contains(f.name, q) {
			out = append(out, f)
		}
	}
	return out
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateSelectFunc || m.err != nil {
				return m, tea.Quit
			}

		case "up":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.state == stateSelectFunc && m.selected < len(m.visible())-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			if m.state == stateSelectFunc && len(m.visible()) > 0 {
				m.state = stateShowFunc
			}
			return m, nil

		case "tab":
			switch m.state {
			case stateSelectFunc:
				m.state = stateShowPersist
			case stateShowPersist:
				m.state = stateSelectFunc
			}
			return m, nil

		case "esc":
			m.state = stateSelectFunc
			return m, nil
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.model = msg.model
		m.funcs = msg.funcs
		return m, nil
	}

	if m.state == stateSelectFunc {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		if n := len(m.visible()); m.selected >= n {
			m.selected = max(n-1, 0)
		}
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.model == nil {
		return "Loading module..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("WASM Annotations"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		for i, f := range m.visible() {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatFunc(f)))
			} else {
				b.WriteString("  " + formatFunc(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter details • tab persist • ctrl+c quit"))

	case stateShowFunc:
		f := m.visible()[m.selected]
		b.WriteString(fmt.Sprintf("%s (function %d)\n", funcStyle.Render(f.name), f.index))
		b.WriteString(fmt.Sprintf("native %s\n\n", typeStyle.Render(f.native)))
		if !f.annotated {
			b.WriteString("no annotated type\n")
		}
		for i, p := range f.params {
			b.WriteString(fmt.Sprintf("  arg%d: %s lowered as %s\n",
				i, typeStyle.Render(p.tag.String()), typeStyle.Render(witTypeStr(p.lowered))))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • q quit"))

	case stateShowPersist:
		b.WriteString("Persisted externals:\n\n")
		if len(m.model.Persist) == 0 {
			b.WriteString("  none\n")
		}
		for _, e := range m.model.Persist {
			b.WriteString(fmt.Sprintf("  %s %d: %s\n", e.Form, e.Index, typeStyle.Render(e.Type.String())))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab exports • q quit"))
	}

	return b.String()
}

func formatFunc(f funcInfo) string {
	if !f.annotated {
		return funcStyle.Render(f.name) + "(?)"
	}
	params := make([]string, 0, len(f.params))
	for _, p := range f.params {
		params = append(params, typeStyle.Render(p.tag.String()))
	}
	return funcStyle.Render(f.name) + "(" + strings.Join(params, ", ") + ")"
}

func witTypeStr(t wit.Type) string {
	switch t.(type) {
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInteractiveModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
