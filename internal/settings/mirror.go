// Package settings holds the process-local mirror of frequently read
// settings. Nothing here touches the disk; values reset to their defaults on
// every process start unless a caller writes them through the store.
package settings

import "slices"

// Defaults for the model parameters.
const (
	DefaultTemperature      = 0.7
	DefaultTopP             = 0.9
	DefaultPresencePenalty  = 0.0
	DefaultFrequencyPenalty = 0.0
)

// Mirror is a set of independently synchronized scalar settings. There is no
// cross-field transaction.
type Mirror struct {
	selectedPattern  *Cell[string]
	defaultPattern   *Cell[string]
	model            *Cell[string]
	temperature      *Cell[float64]
	topP             *Cell[float64]
	presencePenalty  *Cell[float64]
	frequencyPenalty *Cell[float64]
	fabricFolder     *Cell[string]
	patterns         *Cell[[]string]
	running          *Cell[bool]
}

// NewMirror creates a mirror populated with the documented defaults.
func NewMirror() *Mirror {
	return &Mirror{
		selectedPattern:  NewCell(""),
		defaultPattern:   NewCell(""),
		model:            NewCell(""),
		temperature:      NewCell(DefaultTemperature),
		topP:             NewCell(DefaultTopP),
		presencePenalty:  NewCell(DefaultPresencePenalty),
		frequencyPenalty: NewCell(DefaultFrequencyPenalty),
		fabricFolder:     NewCell(""),
		patterns:         NewCell([]string{}),
		running:          NewCell(false),
	}
}

func (m *Mirror) SelectedPattern() string           { return m.selectedPattern.Get() }
func (m *Mirror) SetSelectedPattern(pattern string) { m.selectedPattern.Set(pattern) }

func (m *Mirror) DefaultPattern() string           { return m.defaultPattern.Get() }
func (m *Mirror) SetDefaultPattern(pattern string) { m.defaultPattern.Set(pattern) }

func (m *Mirror) Model() string         { return m.model.Get() }
func (m *Mirror) SetModel(model string) { m.model.Set(model) }

func (m *Mirror) Temperature() float64     { return m.temperature.Get() }
func (m *Mirror) SetTemperature(v float64) { m.temperature.Set(v) }

func (m *Mirror) TopP() float64     { return m.topP.Get() }
func (m *Mirror) SetTopP(v float64) { m.topP.Set(v) }

func (m *Mirror) PresencePenalty() float64     { return m.presencePenalty.Get() }
func (m *Mirror) SetPresencePenalty(v float64) { m.presencePenalty.Set(v) }

func (m *Mirror) FrequencyPenalty() float64     { return m.frequencyPenalty.Get() }
func (m *Mirror) SetFrequencyPenalty(v float64) { m.frequencyPenalty.Set(v) }

func (m *Mirror) FabricFolder() string        { return m.fabricFolder.Get() }
func (m *Mirror) SetFabricFolder(path string) { m.fabricFolder.Set(path) }

// Patterns returns a copy of the pattern names.
func (m *Mirror) Patterns() []string {
	return slices.Clone(m.patterns.Get())
}

// SetPatterns stores a copy of names.
func (m *Mirror) SetPatterns(names []string) {
	m.patterns.Set(slices.Clone(names))
}

// IsRunning reports whether an invocation is believed to be in flight. The
// flag is advisory: two overlapping invocations each toggle it, so it can read
// false while the later one is still running.
func (m *Mirror) IsRunning() bool { return m.running.Get() }

// SetRunning sets the advisory running flag.
func (m *Mirror) SetRunning(running bool) { m.running.Set(running) }

// SwapRunning sets the running flag and reports its previous value.
func (m *Mirror) SwapRunning(running bool) bool { return m.running.Swap(running) }

// Parameters is a point-in-time copy of the model parameters. Fields are read
// one by one, so the copy is not atomic across fields.
type Parameters struct {
	Model            string  `json:"model" yaml:"model"`
	Temperature      float64 `json:"temperature" yaml:"temperature"`
	TopP             float64 `json:"top_p" yaml:"top_p"`
	PresencePenalty  float64 `json:"presence_penalty" yaml:"presence_penalty"`
	FrequencyPenalty float64 `json:"frequency_penalty" yaml:"frequency_penalty"`
}

// Parameters reads the current model parameters.
func (m *Mirror) Parameters() Parameters {
	return Parameters{
		Model:            m.Model(),
		Temperature:      m.Temperature(),
		TopP:             m.TopP(),
		PresencePenalty:  m.PresencePenalty(),
		FrequencyPenalty: m.FrequencyPenalty(),
	}
}
