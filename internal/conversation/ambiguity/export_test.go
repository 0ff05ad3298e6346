package ambiguity

// templatesFor returns a copy of the pool for reason.
func templatesFor(reason Reason) []string {
	return append([]string(nil), poolFor(reason)...)
}
