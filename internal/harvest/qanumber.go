package harvest

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Alternate full-number shape <CODE><DIGITS>-<SUFFIX>. When it matches and no
// short code was found, the full number is rewritten to "<SUFFIX> (<CODE>)"
// and the short code becomes <CODE>. Anchored so an already-rewritten
// "<SUFFIX> (<CODE>)" string never matches again (the rewrite is idempotent).
var reAltShape = regexp.MustCompile(`^([A-Z]{1,2}\d{2,4})-([A-Z0-9][A-Z0-9-]*)$`)

// Revision token in the filename: rev / r / rev. followed by digits.
// An explicit separator class is used instead of \b because underscores are
// word characters and filename stems are usually underscore-separated.
var reFileRevision = regexp.MustCompile(`(?i)(?:^|[ _.(-])(?:rev\.?|r)[ _-]?(\d+)\b`)

type qaCandidate struct {
	full  string
	short string
}

// harvestQANumber runs the three mutually exclusive QA-number shapes in
// priority order (E-number, P-number, general). The highest-priority match
// wins; if a lower-priority shape yields a conflicting number the result is
// flagged ambiguous for manual review instead of being silently discarded.
func harvestQANumber(text, filename string, cfg *RuleConfig) (full, short string, ambiguous bool) {
	var candidates []qaCandidate

	// E-number shape: group 1 short code, group 2 full number.
	for _, r := range cfg.QAENumber {
		if m := submatch(r, text, filename, 2); m != nil {
			candidates = append(candidates, qaCandidate{full: m[2], short: m[1]})
			break
		}
	}
	// P-number shape: group 1 full number, group 2 short code.
	for _, r := range cfg.QAPNumber {
		if m := submatch(r, text, filename, 2); m != nil {
			candidates = append(candidates, qaCandidate{full: m[1], short: m[2]})
			break
		}
	}
	// General shape: group 1 full number; short searched independently.
	for _, r := range cfg.QAGeneral {
		if v, ok := findIn(r, text, filename); ok {
			c := qaCandidate{full: v}
			for _, sr := range cfg.QAShort {
				if sv, sok := findIn(sr, text, filename); sok {
					c.short = sv
					break
				}
			}
			candidates = append(candidates, c)
			break
		}
	}

	if len(candidates) == 0 {
		return "", "", false
	}

	winner := candidates[0]
	winFull, winShort := normalizeQANumber(winner.full, winner.short)
	winFull, winShort = cfg.standardize(winFull), cfg.standardize(winShort)
	for _, c := range candidates[1:] {
		f, s := normalizeQANumber(c.full, c.short)
		f, s = cfg.standardize(f), cfg.standardize(s)
		if composeFull(f, s) != composeFull(winFull, winShort) {
			ambiguous = true
		}
	}

	// QA numbers honor the same exclusion filter as every other field: an
	// excluded value is dropped, not replaced by a lower-priority candidate.
	if winFull != "" && matchesAny(winFull, cfg.Exclude) {
		winFull = ""
	}
	if winShort != "" && matchesAny(winShort, cfg.Exclude) {
		winShort = ""
	}

	full, short = winFull, winShort
	if rev := filenameRevision(filename); rev != "" && full != "" {
		full = composeFull(full, short) + " REV: " + rev
	}
	return full, short, ambiguous
}

// normalizeQANumber applies the post-match rewrites: underscores to hyphens,
// then the alternate-shape rewrite when no short code was found.
func normalizeQANumber(full, short string) (string, string) {
	full = strings.ReplaceAll(full, "_", "-")
	short = strings.TrimSpace(short)
	if short == "" {
		if m := reAltShape.FindStringSubmatch(full); m != nil {
			full = m[2] + " (" + m[1] + ")"
			short = m[1]
		}
	}
	return full, short
}

// composeFull embeds the short code parenthetically unless it already is.
func composeFull(full, short string) string {
	if full == "" || short == "" || strings.Contains(full, "("+short+")") {
		return full
	}
	return full + " (" + short + ")"
}

// filenameRevision pulls a revision token out of the filename stem.
func filenameRevision(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if m := reFileRevision.FindStringSubmatch(stem); m != nil {
		return m[1]
	}
	return ""
}

// submatch tries a rule against the text body, then the filename, requiring
// at least n capture groups. Trimmed groups are returned.
func submatch(r Rule, text, filename string, n int) []string {
	for _, target := range []string{text, filename} {
		if r.re == nil {
			return nil
		}
		m := r.re.FindStringSubmatch(target)
		if m == nil || len(m) < n+1 {
			continue
		}
		for i := range m {
			m[i] = strings.TrimSpace(m[i])
		}
		return m
	}
	return nil
}

// findIn tries a rule against the text body, then the filename.
func findIn(r Rule, text, filename string) (string, bool) {
	if v, ok := r.find(text); ok {
		return v, true
	}
	return r.find(filename)
}
