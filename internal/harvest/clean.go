package harvest

import (
	"regexp"
	"strings"
)

var (
	reCRLF      = regexp.MustCompile(`\r\n?`)
	reHorizRuns = regexp.MustCompile(`[ \t]{2,}`)
	reTabs      = regexp.MustCompile(`\t`)

	// Boilerplate headers/footers stripped before any harvesting. Whole lines
	// only; Clean never removes newlines, so position-sensitive patterns like
	// "Model:\n<models>" survive.
	reBoilerplate = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^[ \t]*page[ \t]+\d+([ \t]+of[ \t]+\d+)?[ \t]*$`),
		regexp.MustCompile(`(?m)^[ \t]*-[ \t]*\d+[ \t]*-[ \t]*$`),
		regexp.MustCompile(`(?im)^.*\bconfidential\b.*$`),
		regexp.MustCompile(`(?im)^.*for authorized use only.*$`),
		regexp.MustCompile(`(?im)^.*KYOCERA Document Solutions Inc\..*$`),
	}
)

// Clean strips boilerplate lines and collapses runs of horizontal whitespace
// to single spaces. Line structure is preserved.
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	for _, re := range reBoilerplate {
		s = re.ReplaceAllString(s, "")
	}
	s = reTabs.ReplaceAllString(s, " ")
	s = reHorizRuns.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.Join(lines, "\n")
}

// collapseValue flattens a multi-line capture into a single-line value:
// newlines become spaces, whitespace runs collapse, trailing separators drop.
func collapseValue(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = reHorizRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return strings.TrimRight(s, ",;/ ")
}
