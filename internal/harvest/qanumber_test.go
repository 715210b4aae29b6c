package harvest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHarvestQANumber_PNumberShape(t *testing.T) {
	cfg := DefaultRuleConfig()

	full, short, ambiguous := harvestQANumber("Ref. No. AB-1234 (E22)", "bulletin.pdf", cfg)
	assert.Equal(t, "AB-1234", full)
	assert.Equal(t, "E22", short)
	assert.False(t, ambiguous)
}

func TestHarvestQANumber_FilenameRevisionSuffix(t *testing.T) {
	cfg := DefaultRuleConfig()

	full, short, _ := harvestQANumber("Ref. No. AB-1234 (E22)", "bulletin_rev2.pdf", cfg)
	assert.Equal(t, "AB-1234 (E22) REV: 2", full)
	assert.Equal(t, "E22", short)
}

func TestHarvestQANumber_SuffixRewrite(t *testing.T) {
	cfg := DefaultRuleConfig()

	full, short, ambiguous := harvestQANumber("E123-AB-4567", "bulletin.pdf", cfg)
	assert.Equal(t, "AB-4567 (E123)", full)
	assert.Equal(t, "E123", short)
	assert.False(t, ambiguous)
}

func TestNormalizeQANumber_Idempotent(t *testing.T) {
	full, short := normalizeQANumber("E123-AB-4567", "")
	assert.Equal(t, "AB-4567 (E123)", full)
	assert.Equal(t, "E123", short)

	again, shortAgain := normalizeQANumber(full, short)
	assert.Equal(t, full, again)
	assert.Equal(t, short, shortAgain)

	// Also stable when the short code was lost along the way.
	again, _ = normalizeQANumber(full, "")
	assert.Equal(t, full, again)
}

func TestNormalizeQANumber_Underscores(t *testing.T) {
	full, _ := normalizeQANumber("AB_1234", "E22")
	assert.Equal(t, "AB-1234", full)
}

func TestHarvestQANumber_AmbiguousShapes(t *testing.T) {
	cfg := DefaultRuleConfig()

	// An E-number shape and an unrelated P-number shape in the same text
	// resolve to different numbers: flagged for manual review, highest
	// priority shape still reported.
	text := "E22-CD-9999 plus Ref. No. AB-1234 (E30)"
	full, short, ambiguous := harvestQANumber(text, "bulletin.pdf", cfg)
	assert.True(t, ambiguous)
	assert.Equal(t, "CD-9999", full)
	assert.Equal(t, "E22", short)
}

func TestFilenameRevision(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"bulletin_rev2.pdf", "2"},
		{"bulletin_Rev. 10.pdf", "10"},
		{"bulletin r3.pdf", "3"},
		{"bulletin.pdf", ""},
		{"revision-notes.pdf", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, filenameRevision(tt.filename), "filename %q", tt.filename)
	}
}

func TestComposeFull(t *testing.T) {
	assert.Equal(t, "AB-1234 (E22)", composeFull("AB-1234", "E22"))
	assert.Equal(t, "AB-1234 (E22)", composeFull("AB-1234 (E22)", "E22"))
	assert.Equal(t, "AB-1234", composeFull("AB-1234", ""))
	assert.Equal(t, "", composeFull("", "E22"))
}

func TestHarvestQANumber_ExcludedValueDropped(t *testing.T) {
	cfg := &RuleConfig{
		QAPNumber: []Rule{{Name: "ref-no-paren", Pattern: `(?i)Ref\.?\s*No\.?\s*:?\s*([A-Z]{2,4}-\d{3,5})\s*\(([A-Z]\d{1,4})\)`}},
		Exclude:   []Rule{{Name: "retired-series", Pattern: `^AB-1234$`}},
	}
	cfg.compile(nil)

	// The winning candidate is excluded: dropped, not replaced by a
	// lower-priority match, and no revision suffix is composed onto nothing.
	full, short, ambiguous := harvestQANumber("Ref. No. AB-1234 (E22)", "bulletin_rev2.pdf", cfg)
	assert.Empty(t, full)
	assert.Equal(t, "E22", short)
	assert.False(t, ambiguous)
}

func TestHarvestQANumber_ExcludedShortCode(t *testing.T) {
	cfg := &RuleConfig{
		QAPNumber: []Rule{{Name: "ref-no-paren", Pattern: `(?i)Ref\.?\s*No\.?\s*:?\s*([A-Z]{2,4}-\d{3,5})\s*\(([A-Z]\d{1,4})\)`}},
		Exclude:   []Rule{{Name: "placeholder-code", Pattern: `^E99$`}},
	}
	cfg.compile(nil)

	full, short, _ := harvestQANumber("Ref. No. AB-1234 (E99)", "bulletin.pdf", cfg)
	assert.Equal(t, "AB-1234", full)
	assert.Empty(t, short)
}

func TestHarvestQANumber_Standardized(t *testing.T) {
	cfg := &RuleConfig{
		QAGeneral:   []Rule{{Name: "plain-full", Pattern: `\b([A-Z]{2,4}-\d{3,5})\b`}},
		Standardize: []Rewrite{{Pattern: `^QB-`, Replace: "QA-"}},
	}
	cfg.compile(nil)

	full, _, _ := harvestQANumber("see QB-1234 for details", "bulletin.pdf", cfg)
	assert.Equal(t, "QA-1234", full)
}
