package sanitize

import "testing"

func TestUtterance(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"strips tags", "<b>My name</b> is <i>Ana</i>", 0, "My name is Ana"},
		{"encoded tags", "&lt;script&gt;alert(1)&lt;/script&gt;hi", 0, "alert(1)hi"},
		{"collapses whitespace", "  we\tneed\n\n help  ", 0, "we need help"},
		{"truncates on runes", "héllo wörld", 5, "héllo"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Utterance(tc.in, tc.max); got != tc.want {
				t.Fatalf("Utterance(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
