package format

import "testing"

func TestEscapeHelpers(t *testing.T) {
	if got := Bold("a<b>&c"); got != "<b>a&lt;b&gt;&amp;c</b>" {
		t.Fatalf("bold = %s", got)
	}
	if got := Code("X1"); got != "<code>X1</code>" {
		t.Fatalf("code = %s", got)
	}
	if got := Link("chan", "https://t.me/x?a=1&b=2"); got != `<a href="https://t.me/x?a=1&amp;b=2">chan</a>` {
		t.Fatalf("link = %s", got)
	}
	if got := Link("plain <x>", ""); got != "plain &lt;x&gt;" {
		t.Fatalf("empty link = %s", got)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"привет мир", 6, "приве…"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
	}
	for _, tc := range cases {
		if got := Truncate(tc.in, tc.max); got != tc.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("\n  \n  Title here \nbody"); got != "Title here" {
		t.Fatalf("first line = %q", got)
	}
	if FirstLine("   ") != "" {
		t.Fatalf("blank input should give empty line")
	}
}
