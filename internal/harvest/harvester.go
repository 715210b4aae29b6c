package harvest

import (
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Harvest runs every field cascade against the cleaned text body (and
// secondarily the filename) and returns the filtered result. A failing rule
// is skipped, never fatal; an absent field is the empty value, never nil
// ambiguity.
func Harvest(text, filename string, cfg *RuleConfig, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}
	cleaned := Clean(text)

	var res Result
	res.QANumberFull, res.QANumberShort, res.QAAmbiguous = harvestQANumber(cleaned, filename, cfg)
	if res.QAAmbiguous {
		res.Warnings = append(res.Warnings, "qa number matched more than one shape")
		logger.Warn("ambiguous qa number shapes", "filename", filename, "full", res.QANumberFull)
	}

	res.Models = harvestMulti(cleaned, filename, cfg.Models, cfg)
	res.PartNumbers = harvestMulti(cleaned, filename, cfg.PartNumbers, cfg)
	res.SerialNumbers = harvestMulti(cleaned, filename, cfg.SerialNumbers, cfg)

	res.DocumentType = harvestSingle(cleaned, filename, cfg.DocumentType, cfg, cfg.Exclude)
	res.DocumentTitle = harvestSingle(cleaned, filename, cfg.DocumentTitle, cfg, cfg.Exclude)
	res.Revision = harvestSingle(cleaned, filename, cfg.Revision, cfg, cfg.Exclude)
	res.Language = harvestSingle(cleaned, filename, cfg.Language, cfg, cfg.Exclude)
	res.Subject = harvestSingle(cleaned, filename, cfg.Subject, cfg, cfg.Exclude)
	res.PublishedDate = normalizeDate(harvestSingle(cleaned, filename, cfg.PublishedDate, cfg, cfg.Exclude))

	// Authors pass the general exclusions plus the unwanted-author list.
	author := harvestSingle(cleaned, filename, cfg.Author, cfg, cfg.Exclude)
	if author != "" && matchesAny(author, cfg.UnwantedAuthors) {
		author = ""
	}
	res.Author = author

	return res
}

// harvestSingle is the deterministic priority cascade: rules in order, each
// tried against the text then the filename, first match wins.
func harvestSingle(text, filename string, rules []Rule, cfg *RuleConfig, exclude []Rule) string {
	for _, r := range rules {
		v, ok := findIn(r, text, filename)
		if !ok {
			continue
		}
		v = cfg.standardize(collapseValue(v))
		if v == "" || matchesAny(v, exclude) {
			// The only candidate this rule produced was excluded; the cascade
			// still stops here, yielding the not-found sentinel.
			return ""
		}
		return v
	}
	return ""
}

// harvestMulti applies every rule and pools all matches, then standardizes,
// filters, dedupes and sorts for determinism.
func harvestMulti(text, filename string, rules []Rule, cfg *RuleConfig) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rules {
		matches := r.findAll(text)
		if len(matches) == 0 {
			matches = r.findAll(filename)
		}
		for _, m := range matches {
			v := cfg.standardize(collapseValue(m))
			if v == "" || matchesAny(v, cfg.Exclude) {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// standardize applies the ordered rewrite list to one raw value.
func (c *RuleConfig) standardize(v string) string {
	for _, rw := range c.Standardize {
		if rw.re == nil {
			continue
		}
		v = rw.re.ReplaceAllString(v, rw.Replace)
	}
	return strings.TrimSpace(v)
}

func matchesAny(v string, rules []Rule) bool {
	for _, r := range rules {
		if r.matches(v) {
			return true
		}
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2006/01/02",
	"01/02/2006",
}

// normalizeDate reformats recognized date layouts to ISO; unrecognized values
// pass through unchanged.
func normalizeDate(v string) string {
	if v == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return v
}
