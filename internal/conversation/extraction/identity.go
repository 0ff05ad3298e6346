package extraction

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"leadchat_backend/internal/conversation/domain"
)

var (
	nameRe    = regexp.MustCompile(`\b(?:my name is|my name's|i am|i'm|call me)\s+([a-z][a-z ]{1,48})`)
	emailRe   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	companyRe = regexp.MustCompile(`(?i)\b(?:work(?:s|ing)? (?:at|for)|(?:our|my) company is|company is|i'm with|i am with)\s+([^.,;!?\n]{3,99})`)
)

// maxNameWords caps how many words of a captured span are treated as a name.
const maxNameWords = 4

// nonNameLeads are words that, right after "I am"/"I'm", show the phrase is
// not an introduction ("I'm looking for...", "I am the decision maker").
var nonNameLeads = wordSet(`a an the not looking interested working trying from in at with based
	currently just here so very really also still new glad happy sure good fine ok okay
	responsible part one curious hoping planning thinking wondering reaching calling writing
	going having building struggling using exploring seeking considering ready available
	decision owner ceo cto cfo coo founder cofounder head manager director lead in on into
	afraid unsure uncertain open keen excited frustrated tired done`)

// nameStops end a captured name ("John and I work at ...").
var nameStops = wordSet(`and from at with i im of working here who the but so my we our in on for
	to is am are was by`)

// companyStops end a captured company span ("Acme and we need ...").
var companyStops = wordSet(`and where which as but who that since because so`)

// nonCompanyLeads reject spans that describe rather than name the company.
var nonCompanyLeads = wordSet(`in a an the based located small large big growing looking struggling
	currently not very about around still mid medium into focused called named pretty quite
	really only fairly relatively`)

func matchName(_, lower string) (domain.Fact, bool) {
	for _, m := range nameRe.FindAllStringSubmatch(lower, -1) {
		words := strings.Fields(m[1])
		if len(words) == 0 || nonNameLeads[words[0]] {
			continue
		}
		kept := make([]string, 0, maxNameWords)
		for _, w := range words {
			if nameStops[w] || len(kept) == maxNameWords {
				break
			}
			kept = append(kept, w)
		}
		name := strings.Join(kept, " ")
		if len(name) < 2 {
			continue
		}
		return domain.Fact{Value: cases.Title(language.English).String(name)}, true
	}
	return domain.Fact{}, false
}

func matchEmail(text, _ string) (domain.Fact, bool) {
	email := emailRe.FindString(text)
	if email == "" {
		return domain.Fact{}, false
	}
	return domain.Fact{Value: email}, true
}

func matchCompany(text, _ string) (domain.Fact, bool) {
	for _, m := range companyRe.FindAllStringSubmatch(apostrophes.Replace(text), -1) {
		words := strings.Fields(m[1])
		if len(words) > 0 {
			switch strings.ToLower(words[0]) {
			case "called", "named":
				words = words[1:]
			}
		}
		if len(words) == 0 || nonCompanyLeads[strings.ToLower(words[0])] {
			continue
		}
		kept := make([]string, 0, len(words))
		for _, w := range words {
			if companyStops[strings.ToLower(w)] {
				break
			}
			kept = append(kept, w)
		}
		company := strings.TrimSpace(strings.Join(kept, " "))
		if len(company) < 3 {
			continue
		}
		return domain.Fact{Value: cases.Title(language.English, cases.NoLower).String(company)}, true
	}
	return domain.Fact{}, false
}

func wordSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}
