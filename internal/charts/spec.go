// Package charts describes dashboard charts and owns their lifecycle on a
// rendered page. The browser draws a chart from the JSON config of its Spec.
package charts

import (
	"encoding/json"
	"fmt"
)

// Kind is a chart type understood by the browser charting library
type Kind string

const (
	Pie  Kind = "pie"
	Line Kind = "line"
	Bar  Kind = "bar"
)

// Dataset is one series of a chart
type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor any       `json:"backgroundColor,omitempty"` // string or []string
	BorderColor     any       `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
}

// Spec is the full description of one chart
type Spec struct {
	Kind     Kind
	Title    string
	Labels   []string
	Datasets []Dataset

	XTitle      string
	YTitle      string
	MaxXTicks   int
	YStepSize   float64
	BeginAtZero bool
}

// Validate checks that every dataset lines up with the labels
func (s Spec) Validate() error {
	switch s.Kind {
	case Pie, Line, Bar:
	default:
		return fmt.Errorf("chart %q: unknown kind %q", s.Title, s.Kind)
	}
	for i, ds := range s.Datasets {
		if len(ds.Data) != len(s.Labels) {
			return fmt.Errorf("chart %q: dataset %d has %d points for %d labels", s.Title, i, len(ds.Data), len(s.Labels))
		}
	}
	return nil
}

type axisTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type ticks struct {
	MaxTicksLimit int     `json:"maxTicksLimit,omitempty"`
	StepSize      float64 `json:"stepSize,omitempty"`
}

type axis struct {
	Title       *axisTitle `json:"title,omitempty"`
	Ticks       *ticks     `json:"ticks,omitempty"`
	BeginAtZero bool       `json:"beginAtZero,omitempty"`
}

type config struct {
	Type Kind `json:"type"`
	Data struct {
		Labels   []string  `json:"labels"`
		Datasets []Dataset `json:"datasets"`
	} `json:"data"`
	Options struct {
		Responsive bool            `json:"responsive"`
		Scales     map[string]axis `json:"scales,omitempty"`
		Plugins    struct {
			Legend struct {
				Position string `json:"position"`
			} `json:"legend"`
			Title axisTitle `json:"title"`
		} `json:"plugins"`
	} `json:"options"`
}

// MarshalJSON renders the browser library's config object
func (s Spec) MarshalJSON() ([]byte, error) {
	var c config
	c.Type = s.Kind
	c.Data.Labels = s.Labels
	if c.Data.Labels == nil {
		c.Data.Labels = []string{}
	}
	c.Data.Datasets = s.Datasets
	if c.Data.Datasets == nil {
		c.Data.Datasets = []Dataset{}
	}
	c.Options.Responsive = true
	c.Options.Plugins.Legend.Position = "top"
	c.Options.Plugins.Title = axisTitle{Display: s.Title != "", Text: s.Title}

	if s.Kind != Pie {
		x := axis{}
		if s.XTitle != "" {
			x.Title = &axisTitle{Display: true, Text: s.XTitle}
		}
		if s.MaxXTicks > 0 {
			x.Ticks = &ticks{MaxTicksLimit: s.MaxXTicks}
		}
		y := axis{BeginAtZero: s.BeginAtZero}
		if s.YTitle != "" {
			y.Title = &axisTitle{Display: true, Text: s.YTitle}
		}
		if s.YStepSize > 0 {
			y.Ticks = &ticks{StepSize: s.YStepSize}
		}
		c.Options.Scales = map[string]axis{"x": x, "y": y}
	}
	return json.Marshal(c)
}
