package bibtex

import "testing"

func TestDecodeLaTeX(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"acute braced", `Garc{\'i}a`, "García"},
		{"acute dotless i", `Garc{\'\i}a`, "García"},
		{"umlaut", `M{\"u}ller`, "Müller"},
		{"tilde", `Pe{\~n}a`, "Peña"},
		{"cedilla", `Fran{\c c}ois`, "François"},
		{"caron", `Milo{\v s}`, "Miloš"},
		{"eszett", `Gro{\ss}e`, "Große"},
		{"o slash", `S{\o}rensen`, "Sørensen"},
		{"escaped ampersand", `Johnson \& Johnson`, "Johnson & Johnson"},
		{"nbsp tie", `Vol.~3`, "Vol. 3"},
		{"quotes", "``quoted''", `"quoted"`},
		{"plain unicode passes through", "José Müller", "José Müller"},
		{"grouping braces stripped", "{The} {ACM} Digital {Library}", "The ACM Digital Library"},
		{"whitespace collapsed", "a  b\n\tc", "a b c"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeLaTeX(tt.input); got != tt.want {
				t.Errorf("DecodeLaTeX(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
