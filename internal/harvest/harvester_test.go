package harvest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarvest_ModelBlock(t *testing.T) {
	cfg := &RuleConfig{
		Models: []Rule{
			{Name: "model-block", Pattern: `(?is)\bModels?\s*:\s*\n?(.+?)(?:\n[ \t]*\n|$)`},
		},
	}
	cfg.compile(nil)

	res := Harvest("Model:\nTASKalfa 3005i\nECOSYS M3040", "bulletin.pdf", cfg, nil)
	require.Len(t, res.Models, 1)
	assert.Equal(t, "TASKalfa 3005i ECOSYS M3040", res.Models[0])
}

func TestHarvest_ExclusionYieldsNotFound(t *testing.T) {
	cfg := &RuleConfig{
		Author: []Rule{
			{Name: "author-line", Pattern: `(?im)^[ \t]*author\s*:\s*(.+)$`},
		},
		UnwantedAuthors: []Rule{
			{Name: "administrator", Pattern: `^administrator$`},
		},
	}
	cfg.compile(nil)

	// The only candidate is unwanted: the field ends up empty, which renders
	// as the not-found sentinel.
	res := Harvest("Author: ADMINISTRATOR", "bulletin.pdf", cfg, nil)
	assert.Empty(t, res.Author)
	assert.Equal(t, NotFound, Display(res.Author))
}

func TestHarvest_ExcludedMultiValue(t *testing.T) {
	cfg := &RuleConfig{
		Models: []Rule{
			{Name: "any-line", Pattern: `(?m)^(.+)$`},
		},
		Exclude: []Rule{
			{Name: "noise", Pattern: `^internal use$`},
		},
	}
	cfg.compile(nil)

	res := Harvest("Internal Use", "bulletin.pdf", cfg, nil)
	assert.Empty(t, res.Models)
	assert.Equal(t, NotFound, DisplayList(res.Models))
}

func TestHarvest_MultiValuedDedupedAndSorted(t *testing.T) {
	cfg := &RuleConfig{
		Models: []Rule{
			{Name: "taskalfa", Pattern: `\b(TASKalfa\s+[A-Za-z0-9]+i?)\b`},
			{Name: "ecosys", Pattern: `\b(ECOSYS\s+[A-Za-z0-9]+)\b`},
		},
	}
	cfg.compile(nil)

	text := "ECOSYS M3040 and TASKalfa 3005i, also TASKalfa 3005i again"
	res := Harvest(text, "bulletin.pdf", cfg, nil)
	assert.Equal(t, []string{"ECOSYS M3040", "TASKalfa 3005i"}, res.Models)
}

func TestHarvest_SingleValuedCascadeOrder(t *testing.T) {
	cfg := &RuleConfig{
		Subject: []Rule{
			{Name: "subject-line", Pattern: `(?im)^subject\s*:\s*(.+)$`},
			{Name: "re-line", Pattern: `(?im)^re\s*:\s*(.+)$`},
		},
	}
	cfg.compile(nil)

	// Both rules match; the first one wins.
	text := "Re: second choice\nSubject: first choice"
	res := Harvest(text, "bulletin.pdf", cfg, nil)
	assert.Equal(t, "first choice", res.Subject)
}

func TestHarvest_FilenameFallbackTarget(t *testing.T) {
	cfg := &RuleConfig{
		DocumentType: []Rule{
			{Name: "known-types", Pattern: `(?i)(service bulletin)`},
		},
	}
	cfg.compile(nil)

	res := Harvest("no type in the body", "Service Bulletin AB-1234.pdf", cfg, nil)
	assert.Equal(t, "Service Bulletin", res.DocumentType)
}

func TestHarvest_Standardization(t *testing.T) {
	cfg := &RuleConfig{
		Models: []Rule{
			{Name: "taskalfa", Pattern: `\b(TASKalfa[-_][A-Za-z0-9]+i?)\b`},
		},
		Standardize: []Rewrite{
			{Pattern: `TASKalfa[-_]`, Replace: "TASKalfa "},
		},
	}
	cfg.compile(nil)

	res := Harvest("see TASKalfa_3005i", "bulletin.pdf", cfg, nil)
	assert.Equal(t, []string{"TASKalfa 3005i"}, res.Models)
}

func TestHarvest_BadRuleDroppedNotFatal(t *testing.T) {
	cfg := &RuleConfig{
		Subject: []Rule{
			{Name: "broken", Pattern: `([`},
			{Name: "subject-line", Pattern: `(?im)^subject\s*:\s*(.+)$`},
		},
	}
	cfg.compile(nil)

	res := Harvest("Subject: still works", "bulletin.pdf", cfg, nil)
	assert.Equal(t, "still works", res.Subject)
}

func TestHarvest_DateNormalization(t *testing.T) {
	cfg := &RuleConfig{
		PublishedDate: []Rule{
			{Name: "date-line", Pattern: `(?im)^date\s*:\s*(.+)$`},
		},
	}
	cfg.compile(nil)

	res := Harvest("Date: January 5, 2024", "bulletin.pdf", cfg, nil)
	assert.Equal(t, "2024-01-05", res.PublishedDate)

	res = Harvest("Date: sometime in spring", "bulletin.pdf", cfg, nil)
	assert.Equal(t, "sometime in spring", res.PublishedDate)
}

func TestClean_StripsBoilerplateKeepsNewlines(t *testing.T) {
	in := "Model:\nTASKalfa   3005i\nPage 1 of 3\nCONFIDENTIAL - do not distribute\nfor authorized use only\nSubject:  Drum unit"
	out := Clean(in)

	assert.Contains(t, out, "Model:\nTASKalfa 3005i")
	assert.Contains(t, out, "Subject: Drum unit")
	assert.NotContains(t, out, "Page 1 of 3")
	assert.NotContains(t, out, "CONFIDENTIAL")
	assert.NotContains(t, out, "authorized use only")
}

func TestCollapseValue(t *testing.T) {
	assert.Equal(t, "TASKalfa 3005i ECOSYS M3040", collapseValue("TASKalfa 3005i\nECOSYS M3040"))
	assert.Equal(t, "a b", collapseValue("  a \t b ;,"))
}
