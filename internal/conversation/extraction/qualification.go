package extraction

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"leadchat_backend/internal/conversation/domain"
)

// Budget bucket bounds in dollars.
const (
	budgetSmallCeiling  = 25_000
	budgetMediumCeiling = 100_000
)

var (
	amountRe        = regexp.MustCompile(`(\$\s*)?(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)\s*(k|thousand|mm|m|million)?\b`)
	budgetContextRe = regexp.MustCompile(`\b(?:budget|spend|invest(?:ment)?|usd|dollars?|cost|afford)\b`)
	notMoneyRe      = regexp.MustCompile(`^\s*(?:\+\s*)?(?:employees|people|staff|persons?|users|customers|clients|engineers|developers|workers|months?|weeks?|days?|years?|hours?|locations|stores|sites|%)`)

	budgetVerbal = []vocabTerm{
		term(domain.BudgetSmall, "small budget", "limited budget", "tight budget", "low budget", "shoestring", "not much budget"),
		term(domain.BudgetMedium, "moderate budget", "medium budget", "mid-range budget", "reasonable budget", "five figures"),
		term(domain.BudgetLarge, "large budget", "big budget", "significant budget", "substantial budget", "enterprise budget", "well funded", "six figures", "seven figures", "no budget constraints", "budget is not an issue", "money is not an issue"),
	}
)

func matchBudget(_, lower string) (domain.Fact, bool) {
	for _, t := range budgetVerbal {
		if t.re.MatchString(lower) {
			return domain.Fact{Value: t.value}, true
		}
	}

	var bare []float64
	for _, loc := range amountRe.FindAllStringSubmatchIndex(lower, -1) {
		if notMoneyRe.MatchString(lower[loc[1]:]) {
			continue
		}
		digits := strings.ReplaceAll(lower[loc[4]:loc[5]], ",", "")
		amount, err := strconv.ParseFloat(digits, 64)
		if err != nil || amount <= 0 {
			continue
		}

		suffix := ""
		if loc[6] >= 0 {
			suffix = lower[loc[6]:loc[7]]
		}
		switch suffix {
		case "k", "thousand":
			return domain.Fact{Value: budgetBucket(amount * 1_000)}, true
		case "m", "mm", "million":
			return domain.Fact{Value: budgetBucket(amount * 1_000_000)}, true
		}
		if loc[2] >= 0 {
			return domain.Fact{Value: budgetBucket(amount)}, true
		}
		if !isYear(digits) {
			bare = append(bare, amount)
		}
	}

	// Bare numbers count only when the sentence talks about money.
	if len(bare) == 0 || !budgetContextRe.MatchString(lower) {
		return domain.Fact{}, false
	}
	amount := bare[0]
	// "our budget is about 50" means thousands in this conversation.
	if amount < 1_000 {
		amount *= 1_000
	}
	return domain.Fact{Value: budgetBucket(amount)}, true
}

// isYear reports whether a bare number reads as a calendar year.
func isYear(digits string) bool {
	if len(digits) != 4 {
		return false
	}
	n, err := strconv.Atoi(digits)
	return err == nil && n >= 1900 && n <= 2099
}

func budgetBucket(amount float64) string {
	switch {
	case amount < budgetSmallCeiling:
		return domain.BudgetSmall
	case amount <= budgetMediumCeiling:
		return domain.BudgetMedium
	default:
		return domain.BudgetLarge
	}
}

var (
	// Negated urgency is listed first so "not urgent" never reads as urgent.
	timelineVerbal = []vocabTerm{
		term(domain.TimelineLongTerm, "not urgent", "no rush", "no hurry", "not in a hurry", "not a priority right now"),
		term(domain.TimelineUrgent, "asap", "as soon as possible", "urgent", "urgently", "immediately", "right away", "right now", "this week", "next week", "within a week", "within weeks", "yesterday", "this month", "within a month", "in a few weeks", "couple of weeks"),
		term(domain.TimelineNearTerm, "next month", "next few months", "couple of months", "couple months", "few months", "this quarter", "next quarter", "within a quarter", "end of the quarter", "end of quarter", "in a month or two"),
		term(domain.TimelineLongTerm, "next year", "long term", "long-term", "later this year", "end of the year", "end of year", "half a year", "eventually", "sometime"),
	}
	timelineSpanRe  = regexp.MustCompile(`\b(?:in|within|next|over|about|around|under|less than|approximately|roughly|by)\s+(?:the\s+)?(?:next\s+)?(\d+|one|two|three|four|five|six|seven|eight|nine|ten|twelve|a|an)\s*(day|week|month|quarter|year)s?\b`)
	timelineRangeRe = regexp.MustCompile(`\b(\d+)\s*(?:-|to)\s*(\d+)\s*(day|week|month|quarter|year)s?\b`)
)

var numberWords = map[string]float64{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "twelve": 12,
}

func matchTimeline(_, lower string) (domain.Fact, bool) {
	for _, t := range timelineVerbal {
		if t.re.MatchString(lower) {
			return domain.Fact{Value: t.value}, true
		}
	}

	if m := timelineRangeRe.FindStringSubmatch(lower); m != nil {
		upper, err := strconv.ParseFloat(m[2], 64)
		if err == nil && upper > 0 {
			return domain.Fact{Value: timelineBucket(toMonths(upper, m[3]))}, true
		}
	}
	if m := timelineSpanRe.FindStringSubmatch(lower); m != nil {
		n, ok := numberWords[m[1]]
		if !ok {
			parsed, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return domain.Fact{}, false
			}
			n = parsed
		}
		if n > 0 {
			return domain.Fact{Value: timelineBucket(toMonths(n, m[2]))}, true
		}
	}
	return domain.Fact{}, false
}

func toMonths(n float64, unit string) float64 {
	switch unit {
	case "day":
		return n / 30
	case "week":
		return n * 7 / 30
	case "quarter":
		return n * 3
	case "year":
		return n * 12
	default:
		return n
	}
}

func timelineBucket(months float64) string {
	switch {
	case months < 1:
		return domain.TimelineUrgent
	case months <= 3:
		return domain.TimelineNearTerm
	default:
		return domain.TimelineLongTerm
	}
}

var (
	headcountRe = regexp.MustCompile(`\b(\d{1,3}(?:,\d{3})+|\d+)\s*(\+)?\s*(?:(?:-|to)\s*(\d{1,3}(?:,\d{3})+|\d+)\s*)?(?:full[- ]time\s+)?(?:employees|people|staff|persons|team members|engineers|developers|workers|fte|ftes)\b`)
	teamOfRe    = regexp.MustCompile(`\b(?:team|staff|headcount|company) of (?:about |around |roughly )?(\d{1,3}(?:,\d{3})+|\d+)\b`)

	sizeVerbal = []vocabTerm{
		term(domain.CompanySizeMicro, "just me", "solo", "one-person", "one person", "freelancer", "startup", "small team"),
		term(domain.CompanySizeSmall, "small business", "small company", "small firm"),
		term(domain.CompanySizeMedium, "mid-size", "mid-sized", "midsize", "medium-sized", "medium size", "medium sized"),
		term(domain.CompanySizeEnterprise, "enterprise", "large company", "large organization", "large organisation", "corporation", "multinational", "fortune 500"),
	}
)

func matchCompanySize(_, lower string) (domain.Fact, bool) {
	if m := headcountRe.FindStringSubmatch(lower); m != nil {
		n := parseCount(m[1])
		if m[3] != "" {
			n = math.Max(n, parseCount(m[3]))
		} else if m[2] == "+" {
			// "200+" means more than 200.
			n++
		}
		if n > 0 {
			return domain.Fact{Value: sizeBucket(n)}, true
		}
	}
	if m := teamOfRe.FindStringSubmatch(lower); m != nil {
		if n := parseCount(m[1]); n > 0 {
			return domain.Fact{Value: sizeBucket(n)}, true
		}
	}
	for _, t := range sizeVerbal {
		if t.re.MatchString(lower) {
			return domain.Fact{Value: t.value}, true
		}
	}
	return domain.Fact{}, false
}

func parseCount(s string) float64 {
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return n
}

func sizeBucket(n float64) string {
	switch {
	case n <= 10:
		return domain.CompanySizeMicro
	case n <= 50:
		return domain.CompanySizeSmall
	case n <= 200:
		return domain.CompanySizeMedium
	default:
		return domain.CompanySizeEnterprise
	}
}

var (
	deferRe  = regexp.MustCompile(`\b(?:needs? (?:to get )?approval|needs? to (?:check|run it by|ask|consult)|my boss|my manager|my supervisor|the board|not the decision maker|not the one who decides|not my (?:decision|call)|someone else decides|(?:have|has) to approve|requires? approval|sign[- ]off from)\b`)
	affirmRe = regexp.MustCompile(`\b(?:i decide|i(?:'m| am) the decision maker|i make (?:the )?(?:final )?decisions?|i(?:'m| am) the (?:owner|founder|co-founder|ceo|cto|president)|i own the (?:company|business)|it(?:'s| is) my (?:decision|call)|i have (?:the )?final say|i sign off|i(?:'m| am) (?:responsible for|in charge of) (?:the )?(?:decision|budget|purchasing))\b`)
)

func matchDecisionMaker(_, lower string) (domain.Fact, bool) {
	if deferRe.MatchString(lower) {
		return domain.Fact{Flag: domain.No}, true
	}
	if affirmRe.MatchString(lower) {
		return domain.Fact{Flag: domain.Yes}, true
	}
	return domain.Fact{}, false
}
