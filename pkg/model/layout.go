package model

// MaxSectionColumns bounds FormSection.Columns.
const MaxSectionColumns = 4

// FormSection groups named fields under an optional title.
type FormSection struct {
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []string `json:"fields" yaml:"fields"`
	// Columns is the grid width, 1 to 4. Zero means 1.
	Columns int `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// ColumnCount returns Columns clamped to the 1..4 range.
func (s FormSection) ColumnCount() int {
	switch {
	case s.Columns < 1:
		return 1
	case s.Columns > MaxSectionColumns:
		return MaxSectionColumns
	default:
		return s.Columns
	}
}

// Tab groups sections. Only one tab is active at a time.
type Tab struct {
	Title    string        `json:"title" yaml:"title"`
	Sections []FormSection `json:"sections" yaml:"sections"`
}

// Layout arranges fields. Tabs take precedence over Sections; an empty layout
// renders every field in a single column.
type Layout struct {
	Tabs     []Tab         `json:"tabs,omitempty" yaml:"tabs,omitempty"`
	Sections []FormSection `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// LayoutMode describes which arrangement a layout resolves to.
type LayoutMode string

const (
	LayoutSingle   LayoutMode = "single"
	LayoutSections LayoutMode = "sections"
	LayoutTabs     LayoutMode = "tabs"
)

// Mode reports the arrangement the layout resolves to.
func (l *Layout) Mode() LayoutMode {
	switch {
	case l == nil:
		return LayoutSingle
	case len(l.Tabs) > 0:
		return LayoutTabs
	case len(l.Sections) > 0:
		return LayoutSections
	default:
		return LayoutSingle
	}
}

// FieldRefs lists every field name referenced by the layout, in order, with
// duplicates preserved.
func (l *Layout) FieldRefs() []string {
	if l == nil {
		return nil
	}
	var out []string
	for _, tab := range l.Tabs {
		for _, section := range tab.Sections {
			out = append(out, section.Fields...)
		}
	}
	for _, section := range l.Sections {
		out = append(out, section.Fields...)
	}
	return out
}
