package harvest

import "log/slog"

// DefaultRuleConfig returns the built-in rule cascade tuned for vendor
// service bulletins. Callers that need different vocabularies load their own
// YAML via LoadRuleConfig.
func DefaultRuleConfig() *RuleConfig {
	cfg := &RuleConfig{
		QAENumber: []Rule{
			{Name: "e-number", Pattern: `\b(E\d{2})[-_]([A-Z]{2,4}[-_]\d{3,5})\b`},
		},
		QAPNumber: []Rule{
			{Name: "ref-no-paren", Pattern: `(?i)Ref\.?\s*No\.?\s*:?\s*([A-Z]{2,4}[-_]\d{3,5})\s*\(([A-Z]\d{1,4})\)`},
			{Name: "paren-short", Pattern: `\b([A-Z]{2,4}[-_]\d{3,5})\s*\(([A-Z]\d{1,4})\)`},
		},
		QAGeneral: []Rule{
			{Name: "coded-full", Pattern: `\b([A-Z]\d{2,4}[-_][A-Z]{2,4}[-_]\d{3,5})\b`},
			{Name: "plain-full", Pattern: `\b([A-Z]{2,4}[-_]\d{3,5})\b`},
			{Name: "qa-prefixed", Pattern: `(?i)\bQA[-_ ]?(\d{4,6})\b`},
		},
		QAShort: []Rule{
			{Name: "paren-code", Pattern: `\(([A-Z]\d{1,4})\)`},
		},
		Models: []Rule{
			{Name: "model-block", Pattern: `(?is)\bModels?\s*:\s*\n?(.+?)(?:\n[ \t]*\n|$)`},
			{Name: "taskalfa", Pattern: `\b(TASKalfa\s+[A-Za-z0-9]+i?)\b`},
			{Name: "ecosys", Pattern: `\b(ECOSYS\s+[A-Za-z0-9]+)\b`},
		},
		PartNumbers: []Rule{
			{Name: "pn-labelled", Pattern: `(?i)\bP/?N[.:]?\s*([0-9A-Z][0-9A-Z-]{5,})`},
			{Name: "part-no", Pattern: `(?i)\bpart\s*(?:no|number)[.:]?\s*([0-9A-Z][0-9A-Z-]{5,})`},
			{Name: "vendor-part", Pattern: `\b(30[0-9][A-Z0-9]{7,9})\b`},
		},
		SerialNumbers: []Rule{
			{Name: "sn-labelled", Pattern: `(?i)\bS/?N[.:]?\s*([A-Z0-9]{8,})`},
			{Name: "serial-no", Pattern: `(?i)\bserial\s*(?:no|number)[.:]?\s*([A-Z0-9]{8,})`},
		},
		DocumentType: []Rule{
			{Name: "known-types", Pattern: `(?i)\b(service bulletin|safety information|technical bulletin|parts list|firmware release|product information)\b`},
		},
		DocumentTitle: []Rule{
			{Name: "title-line", Pattern: `(?im)^[ \t]*title\s*:\s*(.+)$`},
		},
		Revision: []Rule{
			{Name: "rev-line", Pattern: `(?i)\brev(?:ision)?\.?\s*[:#]?\s*(\d+(?:\.\d+)?)\b`},
		},
		Language: []Rule{
			{Name: "language-line", Pattern: `(?i)\blanguage\s*:\s*([A-Za-z]+)`},
			{Name: "known-languages", Pattern: `\b(English|Japanese|German|French|Spanish|Italian)\b`},
		},
		Subject: []Rule{
			{Name: "subject-line", Pattern: `(?im)^[ \t]*subject\s*:\s*(.+)$`},
			{Name: "re-line", Pattern: `(?im)^[ \t]*re\s*:\s*(.+)$`},
		},
		Author: []Rule{
			{Name: "author-line", Pattern: `(?im)^[ \t]*(?:author|issued by|prepared by)\s*:\s*(.+)$`},
		},
		PublishedDate: []Rule{
			{Name: "date-line", Pattern: `(?im)^[ \t]*(?:date of issue|issue date|published|date)\s*:\s*(.+)$`},
			{Name: "iso-date", Pattern: `\b(\d{4}-\d{2}-\d{2})\b`},
			{Name: "long-date", Pattern: `\b([A-Z][a-z]+ \d{1,2}, \d{4})\b`},
		},
		Standardize: []Rewrite{
			{Pattern: `TASKalfa[-_]`, Replace: "TASKalfa "},
			{Pattern: `ECOSYS[-_]`, Replace: "ECOSYS "},
			{Pattern: `(?i)^task\s*alfa\b`, Replace: "TASKalfa"},
			{Pattern: `[,;/]+$`, Replace: ""},
		},
		Exclude: []Rule{
			{Name: "na", Pattern: `^n/?a$`},
			{Name: "confidential", Pattern: `confidential`},
			{Name: "vendor-legal", Pattern: `kyocera document solutions`},
			{Name: "rights", Pattern: `all rights reserved`},
		},
		UnwantedAuthors: []Rule{
			{Name: "administrator", Pattern: `^administrator$`},
			{Name: "unknown", Pattern: `^unknown$`},
		},
	}
	cfg.compile(slog.Default())
	return cfg
}
