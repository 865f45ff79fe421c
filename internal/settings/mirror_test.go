package settings

import (
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestNewMirror_Defaults(t *testing.T) {
	m := NewMirror()

	assert.Equal(t, "", m.SelectedPattern())
	assert.Equal(t, "", m.DefaultPattern())
	assert.Equal(t, "", m.Model())
	assert.Equal(t, 0.7, m.Temperature())
	assert.Equal(t, 0.9, m.TopP())
	assert.Equal(t, 0.0, m.PresencePenalty())
	assert.Equal(t, 0.0, m.FrequencyPenalty())
	assert.Equal(t, "", m.FabricFolder())
	assert.Empty(t, m.Patterns())
	assert.False(t, m.IsRunning())
}

func TestMirror_SettersAreIndependent(t *testing.T) {
	m := NewMirror()

	m.SetSelectedPattern("summarize")
	m.SetModel("gpt-4o")
	m.SetTemperature(0.2)

	assert.Equal(t, "summarize", m.SelectedPattern())
	assert.Equal(t, "", m.DefaultPattern())
	assert.Equal(t, Parameters{
		Model:            "gpt-4o",
		Temperature:      0.2,
		TopP:             DefaultTopP,
		PresencePenalty:  DefaultPresencePenalty,
		FrequencyPenalty: DefaultFrequencyPenalty,
	}, m.Parameters())
}

func TestMirror_PatternsAreCopied(t *testing.T) {
	m := NewMirror()
	names := []string{"summarize", "extract_wisdom"}

	m.SetPatterns(names)
	names[0] = "mutated"
	got := m.Patterns()
	got[1] = "mutated"

	assert.Equal(t, []string{"summarize", "extract_wisdom"}, m.Patterns())
}

func TestMirror_ConcurrentAccess(t *testing.T) {
	m := NewMirror()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			m.SetTemperature(float64(i) / 100)
			m.SetRunning(i%2 == 0)
		}(i)
		go func() {
			defer wg.Done()
			_ = m.Parameters()
			_ = m.IsRunning()
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, m.Temperature(), 0.0)
}

func TestCell_Swap(t *testing.T) {
	c := NewCell(false)

	assert.False(t, c.Swap(true))
	assert.True(t, c.Get())
}

func TestMirror_SwapRunning(t *testing.T) {
	m := NewMirror()

	assert.False(t, m.SwapRunning(true))
	assert.True(t, m.IsRunning())
	assert.True(t, m.SwapRunning(false))
	assert.False(t, m.IsRunning())
}

func TestMirror_LastWriterWins(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("get returns the last value set", prop.ForAll(
		func(values []string) bool {
			m := NewMirror()
			for _, v := range values {
				m.SetSelectedPattern(v)
			}
			if len(values) == 0 {
				return m.SelectedPattern() == ""
			}
			return m.SelectedPattern() == values[len(values)-1]
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
