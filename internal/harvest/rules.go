package harvest

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is one ordered pattern in a field's cascade. Compiled once at config
// construction; a rule that fails to compile is dropped there, never at
// harvest time.
type Rule struct {
	Name    string `yaml:"name,omitempty"`
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// Rewrite is one ordered standardization step (pattern -> replacement).
type Rewrite struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`

	re *regexp.Regexp
}

// RuleConfig is the full, injected pattern configuration for one run.
// Construct it once (LoadRuleConfig or DefaultRuleConfig) and pass it into
// Harvest; reloading means constructing a new value, never mutating this one.
type RuleConfig struct {
	// QA-number match shapes, mutually exclusive, tried in this priority order.
	QAENumber []Rule `yaml:"qa_e_number"` // group 1 short code, group 2 full number
	QAPNumber []Rule `yaml:"qa_p_number"` // group 1 full number, group 2 short code
	QAGeneral []Rule `yaml:"qa_general"`  // group 1 full number
	QAShort   []Rule `yaml:"qa_short"`    // independent short-number companion

	Models        []Rule `yaml:"models"`
	PartNumbers   []Rule `yaml:"part_numbers"`
	SerialNumbers []Rule `yaml:"serial_numbers"`
	DocumentType  []Rule `yaml:"document_type"`
	DocumentTitle []Rule `yaml:"document_title"`
	Revision      []Rule `yaml:"revision"`
	Language      []Rule `yaml:"language"`
	Subject       []Rule `yaml:"subject"`
	Author        []Rule `yaml:"author"`
	PublishedDate []Rule `yaml:"published_date"`

	Standardize     []Rewrite `yaml:"standardize"`
	Exclude         []Rule    `yaml:"exclude"`          // matched case-insensitively
	UnwantedAuthors []Rule    `yaml:"unwanted_authors"` // matched case-insensitively
}

// LoadRuleConfig reads a YAML rule file and compiles it. Rules with invalid
// patterns are logged and dropped; only an unreadable or undecodable file is
// an error.
func LoadRuleConfig(path string, logger *slog.Logger) (*RuleConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule config: %w", err)
	}
	var cfg RuleConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode rule config: %w", err)
	}
	cfg.compile(logger)
	return &cfg, nil
}

// compile compiles every pattern, dropping the ones that do not compile.
// Exclusion and unwanted-author rules are forced case-insensitive.
func (c *RuleConfig) compile(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	lists := []*[]Rule{
		&c.QAENumber, &c.QAPNumber, &c.QAGeneral, &c.QAShort,
		&c.Models, &c.PartNumbers, &c.SerialNumbers,
		&c.DocumentType, &c.DocumentTitle, &c.Revision, &c.Language,
		&c.Subject, &c.Author, &c.PublishedDate,
	}
	for _, list := range lists {
		*list = compileRules(*list, false, logger)
	}
	c.Exclude = compileRules(c.Exclude, true, logger)
	c.UnwantedAuthors = compileRules(c.UnwantedAuthors, true, logger)

	kept := c.Standardize[:0]
	for _, rw := range c.Standardize {
		re, err := regexp.Compile(rw.Pattern)
		if err != nil {
			logger.Warn("dropping standardization rule with bad pattern", "pattern", rw.Pattern, "error", err)
			continue
		}
		rw.re = re
		kept = append(kept, rw)
	}
	c.Standardize = kept
}

func compileRules(rules []Rule, caseInsensitive bool, logger *slog.Logger) []Rule {
	kept := rules[:0]
	for _, r := range rules {
		p := r.Pattern
		if caseInsensitive && !strings.HasPrefix(p, "(?i)") {
			p = "(?i)" + p
		}
		re, err := regexp.Compile(p)
		if err != nil {
			logger.Warn("dropping rule with bad pattern", "rule", r.Name, "pattern", r.Pattern, "error", err)
			continue
		}
		r.re = re
		kept = append(kept, r)
	}
	return kept
}

// find applies the rule to target, returning group 1 (or the whole match when
// the rule has no groups). A matching panic is caught and reported as not-ok
// so a single bad rule never aborts a harvest.
func (r *Rule) find(target string) (val string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("rule match panicked, skipping rule", "rule", r.Name, "panic", rec)
			val, ok = "", false
		}
	}()
	if r.re == nil {
		return "", false
	}
	m := r.re.FindStringSubmatch(target)
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		return strings.TrimSpace(m[1]), true
	}
	return strings.TrimSpace(m[0]), true
}

// findAll returns every group-1 (or whole-match) capture in target.
func (r *Rule) findAll(target string) []string {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("rule match panicked, skipping rule", "rule", r.Name, "panic", rec)
		}
	}()
	if r.re == nil {
		return nil
	}
	var out []string
	for _, m := range r.re.FindAllStringSubmatch(target, -1) {
		v := m[0]
		if len(m) > 1 {
			v = m[1]
		}
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (r *Rule) matches(target string) bool {
	if r.re == nil {
		return false
	}
	return r.re.MatchString(target)
}
