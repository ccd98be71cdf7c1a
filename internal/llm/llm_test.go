package llm

import "testing"

func TestExtractFirstJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"Sure! Here you go:\n```json\n{\"questions\":[{\"q\":1}]}\n```", `{"questions":[{"q":1}]}`},
		{`prefix {"outer":{"inner":2}} suffix {"second":3}`, `{"outer":{"inner":2}}`},
		{`no json here`, `no json here`},
	}
	for _, c := range cases {
		if got := ExtractFirstJSON(c.in); got != c.want {
			t.Fatalf("ExtractFirstJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
