package trie

import "testing"

func TestComplete(t *testing.T) {
	t.Run("Unknown prefix", func(t *testing.T) {
		tr := New()
		tr.Insert("echo", " ")

		if _, ok := tr.Complete("zz").(None); !ok {
			t.Errorf("expected None, got %#v", tr.Complete("zz"))
		}
	})

	t.Run("Single unambiguous match", func(t *testing.T) {
		tr := New()
		tr.Insert("echo", " ")
		tr.Insert("exit", " ")

		res, ok := tr.Complete("ech").(Single)
		if !ok {
			t.Fatalf("expected Single, got %#v", tr.Complete("ech"))
		}
		if res.Extra != "o" || res.Suffix != " " {
			t.Errorf("expected Extra=%q Suffix=%q, got Extra=%q Suffix=%q", "o", " ", res.Extra, res.Suffix)
		}
	})

	t.Run("Exact match with no further branching", func(t *testing.T) {
		tr := New()
		tr.Insert("pwd", " ")

		res, ok := tr.Complete("pwd").(Single)
		if !ok {
			t.Fatalf("expected Single, got %#v", tr.Complete("pwd"))
		}
		if res.Extra != "" || res.Suffix != " " {
			t.Errorf("expected Extra=%q Suffix=%q, got Extra=%q Suffix=%q", "", " ", res.Extra, res.Suffix)
		}
	})

	t.Run("Ambiguous branch lists all completions sorted", func(t *testing.T) {
		tr := New()
		tr.Insert("exit", " ")
		tr.Insert("exec", " ")

		res, ok := tr.Complete("ex").(Multiple)
		if !ok {
			t.Fatalf("expected Multiple, got %#v", tr.Complete("ex"))
		}
		want := []string{"exec ", "exit "}
		if len(res.All) != len(want) {
			t.Fatalf("expected %d completions, got %d (%v)", len(want), len(res.All), res.All)
		}
		for i := range want {
			if res.All[i] != want[i] {
				t.Errorf("completion %d: expected %q, got %q", i, want[i], res.All[i])
			}
		}
	})

	t.Run("Value node that keeps branching", func(t *testing.T) {
		tr := New()
		tr.Insert("echo", " ")
		tr.Insert("echoX", " ")

		res, ok := tr.Complete("echo").(Single)
		if !ok {
			t.Fatalf("expected Single, got %#v", tr.Complete("echo"))
		}
		if res.Suffix != "" {
			t.Errorf("expected empty Suffix at a branching value node, got %q", res.Suffix)
		}
	})
}

func TestBuildDefault(t *testing.T) {
	t.Run("Builtins complete even with an empty PATH", func(t *testing.T) {
		tr := BuildDefault("", []string{"echo", "exit"})

		if _, ok := tr.Complete("ec").(Single); !ok {
			t.Errorf("expected builtin echo to be completable, got %#v", tr.Complete("ec"))
		}
	})
}
