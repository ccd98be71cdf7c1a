package config

import "testing"

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{URL: "postgres://u:p@db:5432/prepwise?sslmode=disable"}
	dsn, err := p.DSN()
	if err != nil || dsn != p.URL {
		t.Fatalf("explicit URL not preferred: %q, %v", dsn, err)
	}

	p = PostgresConfig{Host: "db", User: "u", Password: "p", DBName: "prepwise"}
	dsn, err = p.DSN()
	if err != nil {
		t.Fatalf("DSN: %v", err)
	}
	want := "postgres://u:p@db:5432/prepwise?sslmode=disable"
	if dsn != want {
		t.Fatalf("dsn = %q, want %q", dsn, want)
	}

	if _, err := (PostgresConfig{}).DSN(); err == nil {
		t.Fatalf("empty config produced a DSN")
	}
}

func TestSearchAPIKeyPerProvider(t *testing.T) {
	s := SearchConfig{TavilyAPIKey: "t", SerperAPIKey: "s", BraveAPIKey: "b"}
	cases := map[string]string{"tavily": "t", "serper": "s", "brave": "b", "": "t"}
	for provider, want := range cases {
		s.Provider = provider
		if got := s.APIKey(); got != want {
			t.Fatalf("provider %q key = %q, want %q", provider, got, want)
		}
	}
}

func TestRoutingModelFor(t *testing.T) {
	r := LLMRoutingConfig{Planning: "plan-model", Fallback: "fallback-model"}
	if got := r.ModelFor("planning"); got != "plan-model" {
		t.Fatalf("planning = %q", got)
	}
	if got := r.ModelFor("synthesis"); got != "fallback-model" {
		t.Fatalf("unset task did not fall back: %q", got)
	}
}
