package ambiguity

import "math/rand"

// Selector picks a clarification template for a reason.
type Selector interface {
	Pick(reason Reason) string
}

// templates hold the clarification pool per reason. None of them quote the
// user's words back.
var templates = map[Reason][]string{
	ReasonUncertainty: {
		"No problem if it's not settled yet. What is your best estimate right now?",
		"That's fine to be unsure. Could you give me a rough idea so we can plan around it?",
		"Understood. If you had to pick one option today, which would it be?",
	},
	ReasonLackOfKnowledge: {
		"That's okay. Is there someone on your team who would know, or can you share what you do know?",
		"No worries. Could you describe the situation in your own words instead?",
		"Fair enough. What part of it are you most certain about?",
	},
	ReasonGuessing: {
		"Thanks. Could you confirm that, or tell me what would make it more certain?",
		"Got it. Is that a firm answer or should we treat it as an estimate?",
		"Understood. How confident are you in that, and is there a more precise answer?",
	},
	ReasonNonSpecific: {
		"Could you be a bit more specific? A concrete example would help a lot.",
		"Can you name one specific example so I understand what you mean?",
		"To help me recommend the right service, could you give me specific details?",
	},
	ReasonMinimalResponse: {
		"Thanks! Could you add a little more detail to that answer?",
		"Got it. Can you tell me a bit more so I can help you better?",
		"Understood. Would you mind expanding on that in a sentence or two?",
	},
	ReasonHesitation: {
		"Take your time. Whenever you're ready, just share what comes to mind.",
		"No rush. Would it help if I rephrased the question?",
		"Happy to wait. Even a rough answer is a great starting point.",
	},
	ReasonTooShort: {
		"Could you tell me a little more? A short sentence is perfect.",
		"I want to make sure I understand. Can you give me a bit more detail?",
		"That was a little brief. Could you elaborate so I can help?",
	},
	ReasonMissingEmailFormat: {
		"That doesn't look like an email address. Could you share it in the form name@company.com?",
		"I couldn't find an email address there. What's the best email to reach you?",
		"To send you a summary I'll need a valid email address, such as name@example.com.",
	},
}

var fallbackTemplates = []string{
	"Could you clarify that a little so I can help you better?",
}

func poolFor(reason Reason) []string {
	if pool, ok := templates[reason]; ok && len(pool) > 0 {
		return pool
	}
	return fallbackTemplates
}

// RandomSelector picks a template uniformly at random for variety.
type RandomSelector struct{}

// Pick implements Selector.
func (RandomSelector) Pick(reason Reason) string {
	pool := poolFor(reason)
	return pool[rand.Intn(len(pool))]
}

// FixedSelector always picks the template at Index (wrapped), for tests and
// reproducible transcripts.
type FixedSelector struct {
	Index int
}

// Pick implements Selector.
func (f FixedSelector) Pick(reason Reason) string {
	pool := poolFor(reason)
	i := f.Index % len(pool)
	if i < 0 {
		i += len(pool)
	}
	return pool[i]
}

// Clarify returns the clarification text for reason using sel, falling back
// to a RandomSelector when sel is nil.
func Clarify(sel Selector, reason Reason) string {
	if sel == nil {
		sel = RandomSelector{}
	}
	return sel.Pick(reason)
}

