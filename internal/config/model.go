package config

import (
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of the application
// configuration.
type Model struct {
	Settings   Settings
	Components []*Component
	Steps      []*Step
}

// Settings holds the values of a `settings` block. Empty strings and a zero
// FrameInterval mean "not set"; command-line flags fill them in.
type Settings struct {
	LogLevel      string
	LogFormat     string
	FrameInterval time.Duration
}

// Component is the format-agnostic representation of a `component` block.
// Template holds the markup, already read from template_file when the
// block used one.
type Component struct {
	Name     string
	Template string
	Data     map[string]cty.Value
}

// Step is one scripted write to a mounted component's data object.
type Step struct {
	Name      string
	Component string
	Set       map[string]cty.Value
}

// Component returns the component definition named name.
func (m *Model) Component(name string) (*Component, bool) {
	for _, c := range m.Components {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Merge appends other's definitions and steps and takes its non-empty
// settings.
func (m *Model) Merge(other *Model) {
	if other.Settings.LogLevel != "" {
		m.Settings.LogLevel = other.Settings.LogLevel
	}
	if other.Settings.LogFormat != "" {
		m.Settings.LogFormat = other.Settings.LogFormat
	}
	if other.Settings.FrameInterval != 0 {
		m.Settings.FrameInterval = other.Settings.FrameInterval
	}
	m.Components = append(m.Components, other.Components...)
	m.Steps = append(m.Steps, other.Steps...)
}
