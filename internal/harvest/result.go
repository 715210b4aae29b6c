package harvest

import "strings"

// NotFound is how an absent field renders in the report. Inside the pipeline
// absence is always the empty string or the empty slice, never this string.
const NotFound = "NOT FOUND"

// Result maps field names to harvested, standardized, exclusion-filtered
// values. Multi-valued fields are deduplicated and sorted before storage.
type Result struct {
	QANumberFull  string
	QANumberShort string

	Models        []string
	PartNumbers   []string
	SerialNumbers []string

	DocumentType  string
	DocumentTitle string
	Revision      string
	Language      string
	Subject       string
	Author        string
	PublishedDate string

	// QAAmbiguous is set when the text matched more than one QA-number shape
	// with conflicting results; the classifier routes these to manual review.
	QAAmbiguous bool

	Warnings []string
}

// HasModels reports whether any model survived filtering.
func (r Result) HasModels() bool {
	return len(r.Models) > 0
}

// QADisplay is the report form of the full QA number: the short code is
// embedded parenthetically when it was found and is not already present.
func (r Result) QADisplay() string {
	return composeFull(r.QANumberFull, r.QANumberShort)
}

// Display renders a single-valued field, substituting the NotFound sentinel.
func Display(v string) string {
	if strings.TrimSpace(v) == "" {
		return NotFound
	}
	return v
}

// DisplayList renders a multi-valued field as one cell.
func DisplayList(vs []string) string {
	if len(vs) == 0 {
		return NotFound
	}
	return strings.Join(vs, "; ")
}
