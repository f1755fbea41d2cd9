// Package extract performs pattern-based field extraction over the article
// corpus: a fixed pattern table is applied to every document and matches are
// reported with surrounding context. Extraction reads the same corpus as the
// retrieval engine but has no data or control dependency on it.
package extract

import (
	"regexp"
	"strings"
)

// Pattern is one entry of the static extraction table.
type Pattern struct {
	Name        string
	Description string
	re          *regexp.Regexp
	clean       func(string) string
}

// DefaultPatterns returns the fixed extraction table: monetary amounts,
// percentages, dates, organizations, quoted text, email addresses, and
// numbers with units. The table is static configuration; callers must not
// mutate it between documents.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:        "money_amounts",
			Description: "monetary amounts",
			re: regexp.MustCompile(`(?i)(?:\$|USD\s*|US\$\s*)[\d,]+(?:\.\d{1,2})?\s*(?:billion|million|thousand|bn|mn|m|k|b)?(?:\s+dollars?)?` +
				`|\b\d+(?:\.\d{1,2})?\s*(?:billion|million|thousand)\s+(?:dollars?|USD|pounds?|GBP|euros?|EUR)` +
				`|(?:£|GBP\s*)[\d,]+(?:\.\d{1,2})?\s*(?:billion|million|thousand|bn|mn|m|k)?` +
				`|(?:€|EUR\s*)[\d,]+(?:\.\d{1,2})?\s*(?:billion|million|thousand|bn|mn|m|k)?`),
			clean: cleanMoneyAmount,
		},
		{
			Name:        "percentages",
			Description: "percentage figures",
			re:          regexp.MustCompile(`(?i)\b\d+(?:\.\d{1,2})?\s*(?:percent|%)`),
			clean: func(s string) string {
				return strings.TrimSpace(strings.ReplaceAll(s, "percent", "%"))
			},
		},
		{
			Name:        "dates",
			Description: "date expressions",
			re: regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2},?\s+\d{4}` +
				`|\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}` +
				`|\b\d{4}[-/]\d{1,2}[-/]\d{1,2}`),
		},
		{
			Name:        "organizations",
			Description: "organization names",
			re:          regexp.MustCompile(`\b(?:[A-Z][a-z]+\s+)*(?:Corporation|Corp|Inc|Company|Co|Ltd|Limited|Group|Bank|University|Institute|Agency|Department|Ministry|Commission|Committee|Council|Association|Organization|Foundation|Fund|Trust|Partners|LLC|LLP|Plc)\b`),
		},
		{
			Name:        "quoted_text",
			Description: "quoted statements",
			re:          regexp.MustCompile(`"[^"]+"`),
			clean: func(s string) string {
				return strings.Trim(s, `"`)
			},
		},
		{
			Name:        "email_addresses",
			Description: "email addresses",
			re:          regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		},
		{
			Name:        "numbers_with_units",
			Description: "numbers with units",
			re:          regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:GB|MB|KB|TB|meters?|km|miles?|kg|g|tons?|hours?|minutes?|seconds?|days?|weeks?|months?|years?)\b`),
		},
	}
}

// cleanMoneyAmount collapses whitespace and normalises the gap between the
// currency marker and the number.
func cleanMoneyAmount(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for _, sym := range []string{"$", "£", "€"} {
		s = strings.ReplaceAll(s, sym+" ", sym)
	}
	return s
}
