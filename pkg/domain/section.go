package domain

import "strings"

// MetaValue is a single value of a metadata entry.
type MetaValue struct {
	Value string `json:"value"`
	Bold  bool   `json:"bold,omitempty"`
}

// MetaProp is a labelled metadata entry attached to a section.
// Link, when set, is a template where "{}" is replaced by the value.
type MetaProp struct {
	Label  string      `json:"label"`
	Values []MetaValue `json:"values,omitempty"`
	Link   string      `json:"link,omitempty"`
}

// Placeholder stands in for content already shown elsewhere on the page.
type Placeholder struct {
	TargetID string `json:"target_id"`
	Message  string `json:"message"`
}

// SectionResult is the presentation-facing tree produced by one generation.
type SectionResult struct {
	ID          string           `json:"id,omitempty"`
	Title       string           `json:"title"`
	HelpText    string           `json:"help_text,omitempty"`
	Metadata    []MetaProp       `json:"metadata,omitempty"`
	Body        string           `json:"body,omitempty"`
	Children    []*SectionResult `json:"children,omitempty"`
	Placeholder *Placeholder     `json:"placeholder,omitempty"`
}

// Meta returns the entry with the given label.
func (s *SectionResult) Meta(label string) (MetaProp, bool) {
	for _, p := range s.Metadata {
		if p.Label == label {
			return p, true
		}
	}
	return MetaProp{}, false
}

// String concatenates the body of the section and of its children.
// With wrap set the output is enclosed in Dialogue Start/End templates.
func (s *SectionResult) String(wrap bool) string {
	var sb strings.Builder
	s.write(&sb)
	out := strings.TrimSpace(sb.String())
	if wrap {
		return "{{Dialogue Start}}\n" + out + "\n{{Dialogue End}}"
	}
	return out
}

func (s *SectionResult) write(sb *strings.Builder) {
	if s.Body != "" {
		sb.WriteString(s.Body)
	}
	for _, child := range s.Children {
		sb.WriteString("\n")
		child.write(sb)
	}
}
