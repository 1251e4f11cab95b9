// Package exec classifies each command of a parsed pipeline as a builtin
// or external program, wires pipes between adjacent stages, and runs them
// concurrently. Grounded in original_source's command/mod.rs
// (InternalCommandName dispatch, find_in_path, builtin message text) and
// the teacher's structured-concurrency idiom (sync primitives guarding
// shared state in session.go's SessionHistory/RingBuffer).
package exec

import (
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"strings"

	"github.com/kir-gadjello/goshell/internal/history"
)

// Builtin names the closed set of shell-internal commands, per spec.md §3.
type Builtin int

const (
	notBuiltin Builtin = iota
	BuiltinEmpty
	BuiltinEcho
	BuiltinType
	BuiltinCd
	BuiltinPwd
	BuiltinExit
	BuiltinHistory
)

// Names lists every builtin identity, used to build the default
// completion trie and the set of disabled builtins.
var Names = []string{"echo", "type", "cd", "pwd", "exit", "history"}

// Disabled is the set of builtin names a loaded config has turned off;
// a disabled builtin is looked up on $PATH like any other external
// command instead. A nil Disabled disables nothing.
type Disabled map[string]bool

// Has reports whether name (case-insensitively) is in the disabled set.
func (d Disabled) Has(name string) bool {
	return d != nil && d[strings.ToLower(name)]
}

// lookupBuiltin maps a command name to a builtin identity, case-insensitively.
// disabled names are reported as not-a-builtin.
func lookupBuiltin(name string, disabled Disabled) (Builtin, bool) {
	if name == "" {
		return BuiltinEmpty, true
	}
	if disabled.Has(name) {
		return notBuiltin, false
	}
	switch strings.ToLower(name) {
	case "echo":
		return BuiltinEcho, true
	case "type":
		return BuiltinType, true
	case "cd":
		return BuiltinCd, true
	case "pwd":
		return BuiltinPwd, true
	case "exit":
		return BuiltinExit, true
	case "history":
		return BuiltinHistory, true
	}
	return notBuiltin, false
}

// IsBuiltinName reports whether name matches a builtin identity
// (case-insensitively), used by `type`.
func IsBuiltinName(name string) bool {
	_, ok := lookupBuiltin(name, nil)
	return ok && name != ""
}

// internalCommand is a builtin plus its arguments and three polymorphic
// streams, per spec.md §3.
type internalCommand struct {
	name   Builtin
	args   []string
	input  io.Reader
	output io.Writer
	errors io.Writer
}

// run executes one builtin to completion. Errors from writes to output/
// error streams are deliberately ignored (best-effort per spec.md §7):
// the builtin proceeds regardless.
func (c *internalCommand) run(h *history.Store) {
	switch c.name {
	case BuiltinEmpty:
		// no-op
	case BuiltinExit:
		// The executor, not the command body, observes Exit; see Run.
	case BuiltinEcho:
		fmt.Fprintln(c.output, strings.Join(c.args, " "))
	case BuiltinType:
		runType(c)
	case BuiltinPwd:
		runPwd(c)
	case BuiltinCd:
		runCd(c)
	case BuiltinHistory:
		runHistory(c, h)
	}
}

func runType(c *internalCommand) {
	if len(c.args) == 0 {
		fmt.Fprintln(c.errors, "type: expected an argument")
		return
	}
	name := c.args[0]
	if IsBuiltinName(name) {
		fmt.Fprintf(c.output, "%s is a shell builtin\n", name)
		return
	}
	if full, ok := findInPath(name); ok {
		fmt.Fprintf(c.output, "%s is %s\n", name, full)
		return
	}
	fmt.Fprintf(c.errors, "%s: not found\n", name)
}

func runPwd(c *internalCommand) {
	if len(c.args) != 0 {
		fmt.Fprintf(c.errors, "pwd: expected 0 arguments; got %d\n", len(c.args))
		return
	}
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(c.errors, "pwd: current directory cannot be found")
		return
	}
	fmt.Fprintln(c.output, dir)
}

func runCd(c *internalCommand) {
	if len(c.args) > 1 {
		fmt.Fprintln(c.errors, "cd: too many arguments")
		return
	}

	target := "~"
	if len(c.args) == 1 {
		target = c.args[0]
	}

	if strings.HasPrefix(target, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			target = strings.Replace(target, "~", home, 1)
		}
	}

	if err := os.Chdir(target); err != nil {
		fmt.Fprintf(c.errors, "cd: %s: No such file or directory\n", target)
	}
}

func runHistory(c *internalCommand, h *history.Store) {
	if len(c.args) == 0 {
		_ = h.Write(c.output, nil)
		return
	}

	switch c.args[0] {
	case "-r":
		if len(c.args) != 2 {
			fmt.Fprintln(c.errors, "history: -r requires a path")
			return
		}
		loaded, err := history.LoadFromFile(c.args[1])
		if err != nil {
			fmt.Fprintf(c.errors, "history: %v\n", err)
			return
		}
		h.Merge(loaded)
	case "-w":
		if len(c.args) != 2 {
			fmt.Fprintln(c.errors, "history: -w requires a path")
			return
		}
		if err := h.WriteToFile(c.args[1], false); err != nil {
			fmt.Fprintf(c.errors, "history: %v\n", err)
		}
	case "-a":
		if len(c.args) != 2 {
			fmt.Fprintln(c.errors, "history: -a requires a path")
			return
		}
		if err := h.WriteToFile(c.args[1], true); err != nil {
			fmt.Fprintf(c.errors, "history: %v\n", err)
		}
	default:
		n, err := parseNonNegativeInt(c.args[0])
		if err != nil || len(c.args) != 1 {
			fmt.Fprintln(c.errors, "history: usage: history [n] | -r <path> | -w <path> | -a <path>")
			return
		}
		_ = h.Write(c.output, &n)
	}
}

func parseNonNegativeInt(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("not a non-negative integer: %q", s)
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, nil
}

// findInPath searches $PATH for name, mirroring original_source's
// find_in_path.
func findInPath(name string) (string, bool) {
	full, err := osexec.LookPath(name)
	if err != nil {
		return "", false
	}
	return full, true
}
