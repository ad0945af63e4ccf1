package sanitize

import "testing"

func TestTextRemovesAllHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "script tag", input: `Kandy Perahera <script>alert('xss')</script> Night`, expected: `Kandy Perahera  Night`},
		{name: "inline handler", input: `<b onclick="steal()">Beach Festival</b>`, expected: `Beach Festival`},
		{name: "plain text untouched", input: `Colombo Jazz Evening`, expected: `Colombo Jazz Evening`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Text(tc.input); got != tc.expected {
				t.Fatalf("Text(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestHTMLKeepsSafeFormatting(t *testing.T) {
	input := `<p>Three-day <strong>food</strong> festival</p><script>evil()</script>`
	got := HTML(input)
	if got != `<p>Three-day <strong>food</strong> festival</p>` {
		t.Fatalf("HTML(%q) = %q", input, got)
	}
}

func TestTextSlice(t *testing.T) {
	got := TextSlice([]string{"<i>a.jpg</i>", "b.jpg"})
	if len(got) != 2 || got[0] != "a.jpg" || got[1] != "b.jpg" {
		t.Fatalf("unexpected result: %v", got)
	}
	if TextSlice(nil) != nil {
		t.Fatal("nil input must stay nil")
	}
}
