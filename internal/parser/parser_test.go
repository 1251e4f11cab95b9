package parser

import "testing"

func TestParse(t *testing.T) {
	t.Run("Empty input yields an empty pipeline", func(t *testing.T) {
		pl, err := Parse("   ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pl) != 0 {
			t.Errorf("expected an empty pipeline, got %v", pl)
		}
	})

	t.Run("Simple command with arguments", func(t *testing.T) {
		pl, err := Parse("echo hello world")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pl) != 1 {
			t.Fatalf("expected 1 command, got %d", len(pl))
		}
		if pl[0].Name != "echo" {
			t.Errorf("expected name %q, got %q", "echo", pl[0].Name)
		}
		if len(pl[0].Args) != 2 || pl[0].Args[0] != "hello" || pl[0].Args[1] != "world" {
			t.Errorf("expected args [hello world], got %v", pl[0].Args)
		}
	})

	t.Run("Single quotes suppress all escaping", func(t *testing.T) {
		pl, err := Parse(`echo 'a\nb'`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pl[0].Args[0] != `a\nb` {
			t.Errorf("expected %q, got %q", `a\nb`, pl[0].Args[0])
		}
	})

	t.Run("Double quotes honor backslash before $, \", and backslash only", func(t *testing.T) {
		pl, err := Parse(`echo "a\$b\"c\\d\qe"`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := `a$b"c\d\qe`
		if pl[0].Args[0] != expected {
			t.Errorf("expected %q, got %q", expected, pl[0].Args[0])
		}
	})

	t.Run("Unquoted backslash escapes the next byte", func(t *testing.T) {
		pl, err := Parse(`echo a\ b`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pl[0].Args) != 1 || pl[0].Args[0] != "a b" {
			t.Errorf("expected a single arg %q, got %v", "a b", pl[0].Args)
		}
	})

	t.Run("Adjacent quoted and unquoted text concatenates into one token", func(t *testing.T) {
		pl, err := Parse(`echo foo'bar'"baz"`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pl[0].Args[0] != "foobarbaz" {
			t.Errorf("expected %q, got %q", "foobarbaz", pl[0].Args[0])
		}
	})

	t.Run("Pipeline splits on unquoted pipe", func(t *testing.T) {
		pl, err := Parse("echo hi | grep h | wc -l")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pl) != 3 {
			t.Fatalf("expected 3 stages, got %d", len(pl))
		}
		if pl[1].Name != "grep" || pl[2].Name != "wc" {
			t.Errorf("unexpected stage names: %v", pl)
		}
	})

	t.Run("Trailing pipe with nothing after it is an error", func(t *testing.T) {
		if _, err := Parse("echo hi |"); err == nil {
			t.Errorf("expected an error for a dangling pipe")
		}
	})

	t.Run("Plain redirect defaults to stdout, truncate mode", func(t *testing.T) {
		pl, err := Parse("echo hi > out.txt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		r := pl[0].Redirect
		if r == nil {
			t.Fatalf("expected a redirect")
		}
		if r.From != FdStdout || r.Append || r.To.File != "out.txt" {
			t.Errorf("unexpected redirect: %+v", r)
		}
	})

	t.Run("Append redirect with an explicit descriptor", func(t *testing.T) {
		pl, err := Parse("echo hi 2>> err.log")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		r := pl[0].Redirect
		if r == nil {
			t.Fatalf("expected a redirect")
		}
		if r.From != FdStderr || !r.Append || r.To.File != "err.log" {
			t.Errorf("unexpected redirect: %+v", r)
		}
	})

	t.Run("Redirect to another descriptor", func(t *testing.T) {
		pl, err := Parse("echo hi 2>&1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		r := pl[0].Redirect
		if r == nil || !r.To.IsFd || r.To.Fd != FdStdout {
			t.Errorf("unexpected redirect: %+v", r)
		}
	})

	t.Run("Unclosed single quote is an error", func(t *testing.T) {
		if _, err := Parse("echo 'unterminated"); err == nil {
			t.Errorf("expected an error for an unclosed quote")
		}
	})

	t.Run("Unclosed double quote is an error", func(t *testing.T) {
		if _, err := Parse(`echo "unterminated`); err == nil {
			t.Errorf("expected an error for an unclosed quote")
		}
	})
}
