package agent

import (
	"regexp"
	"strings"

	"github.com/ledgerline/monacopay/internal/domain"
)

// RemarkMatch is one category detected in a free-text remark, with the
// parameters extracted from it (day/month numbers, ranges).
type RemarkMatch struct {
	Category   domain.EdgeCaseCategory
	Confidence float64
	Params     map[string]string
}

// remarkRule is one entry of the classification table: a pattern, the
// category it indicates, a base confidence, and the names of the capture
// groups to expose as parameters. Rules are evaluated independently, so a
// remark can match several categories at once.
type remarkRule struct {
	re         *regexp.Regexp
	category   domain.EdgeCaseCategory
	confidence float64
	groups     []string
}

// The accountants write remarks in French; patterns cover the usual
// spellings with and without accents. Date-bearing phrasings score higher
// than bare keywords.
var remarkRules = []remarkRule{
	{regexp.MustCompile(`(?:entr[ée]e|d[ée]but|arriv[ée]e)\s+le\s+(\d{1,2})[/-](\d{1,2})`), domain.EdgeNewHire, 0.90, []string{"day", "month"}},
	{regexp.MustCompile(`embauche`), domain.EdgeNewHire, 0.70, nil},
	{regexp.MustCompile(`nouvelle?\s+recrue|nouvel(?:le)?\s+employ[ée]e?`), domain.EdgeNewHire, 0.60, nil},

	{regexp.MustCompile(`(?:sortie|fin)\s+le\s+(\d{1,2})[/-](\d{1,2})`), domain.EdgeDeparture, 0.90, []string{"day", "month"}},
	{regexp.MustCompile(`d[ée]mission|licenciement`), domain.EdgeDeparture, 0.80, nil},
	{regexp.MustCompile(`d[ée]part`), domain.EdgeDeparture, 0.70, nil},

	{regexp.MustCompile(`nouveau\s+salaire|modification\s+(?:de\s+)?salaire`), domain.EdgeSalaryChange, 0.80, nil},
	{regexp.MustCompile(`augmentation|revalorisation`), domain.EdgeSalaryChange, 0.70, nil},

	{regexp.MustCompile(`13\s*[èe]?m?e?\s*mois|treizi[èe]me`), domain.EdgeBonus, 0.70, nil},
	{regexp.MustCompile(`prime|bonus|gratification`), domain.EdgeBonus, 0.60, nil},

	{regexp.MustCompile(`cong[ée]\s+sans\s+solde|absence\s+non\s+r[ée]mun[ée]r[ée]e`), domain.EdgeUnpaidLeave, 0.80, nil},
	{regexp.MustCompile(`arr[êe]t\s+maladie`), domain.EdgeUnpaidLeave, 0.60, nil},

	{regexp.MustCompile(`du\s+(\d{1,2})\s+au\s+(\d{1,2})`), domain.EdgeProrate, 0.80, []string{"range_start", "range_end"}},
	{regexp.MustCompile(`pro\s*rata`), domain.EdgeProrate, 0.70, nil},
}

// ParseRemark classifies a free-text remark against the rule table. Every
// rule is evaluated; when several rules hit the same category the highest
// confidence wins and parameters merge. An empty or unmatched remark yields
// a single zero-confidence "none" match.
func ParseRemark(remark string) []RemarkMatch {
	text := strings.ToLower(strings.TrimSpace(remark))
	if text == "" {
		return []RemarkMatch{{Category: domain.EdgeNone, Params: map[string]string{}}}
	}

	byCategory := make(map[domain.EdgeCaseCategory]*RemarkMatch)
	var order []domain.EdgeCaseCategory

	for _, rule := range remarkRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		match, ok := byCategory[rule.category]
		if !ok {
			match = &RemarkMatch{Category: rule.category, Params: map[string]string{}}
			byCategory[rule.category] = match
			order = append(order, rule.category)
		}
		if rule.confidence > match.Confidence {
			match.Confidence = rule.confidence
		}
		for i, name := range rule.groups {
			if i+1 < len(m) && m[i+1] != "" {
				match.Params[name] = m[i+1]
			}
		}
	}

	if len(order) == 0 {
		return []RemarkMatch{{Category: domain.EdgeNone, Params: map[string]string{}}}
	}

	out := make([]RemarkMatch, 0, len(order))
	for _, cat := range order {
		out = append(out, *byCategory[cat])
	}
	return out
}
