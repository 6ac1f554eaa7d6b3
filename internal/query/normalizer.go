package query

import "regexp"

// substitution is one whole-word rewrite. The table is applied in slice
// order, each entry over the full working text, so an earlier rewrite is
// visible to later entries. The order below is fixed and load-once.
type substitution struct {
	pattern *regexp.Regexp
	repl    string
}

var substitutions = []substitution{
	{regexp.MustCompile(`(?i)\byesturday\b`), "yesterday"},
	{regexp.MustCompile(`(?i)\btmrw\b`), "tomorrow"},
	{regexp.MustCompile(`(?i)\btmr\b`), "tomorrow"},
	{regexp.MustCompile(`(?i)\btomoro\b`), "tomorrow"},
	{regexp.MustCompile(`(?i)\bwk\b`), "week"},
	{regexp.MustCompile(`(?i)\bmo\b`), "month"},
	{regexp.MustCompile(`(?i)\bmon\b`), "month"},
	{regexp.MustCompile(`(?i)\byr\b`), "year"},
	{regexp.MustCompile(`(?i)\byer\b`), "year"},
	{regexp.MustCompile(`(?i)\b2d\b`), "2 days"},
	{regexp.MustCompile(`(?i)\b3d\b`), "3 days"},
}

// Normalize lower-cases, trims boundary whitespace and applies the
// whole-word slang/typo substitution table.
func Normalize(q string) string {
	q = trimLower(q)
	for _, s := range substitutions {
		q = s.pattern.ReplaceAllString(q, s.repl)
	}
	return q
}
