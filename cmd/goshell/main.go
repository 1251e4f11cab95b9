// Command goshell is a small interactive POSIX-style shell: a raw-mode
// line editor with history and tab completion in front of a pipeline
// executor. Wired through cobra per the teacher's rootCmd setup in
// llm.go's main.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kir-gadjello/goshell/internal/editor"
	goshellexec "github.com/kir-gadjello/goshell/internal/exec"
	"github.com/kir-gadjello/goshell/internal/history"
	"github.com/kir-gadjello/goshell/internal/parser"
	"github.com/kir-gadjello/goshell/internal/shellcfg"
	"github.com/kir-gadjello/goshell/internal/trie"
)

var errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("goshell: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "goshell",
		Short: "A small interactive POSIX-style shell",
		Args:  cobra.NoArgs,
		RunE:  runShell,
	}

	root.Flags().String("histfile", "", "history file path (overrides $HISTFILE and the config file)")
	root.Flags().StringP("command", "c", "", "run a single command line non-interactively and exit")
	root.Flags().Bool("no-rc", false, "skip loading ~/.goshellrc.yaml")

	return root
}

func runShell(cmd *cobra.Command, _ []string) error {
	noRC, _ := cmd.Flags().GetBool("no-rc")

	cfg := &shellcfg.Config{}
	if !noRC {
		loaded, err := shellcfg.Load("")
		if err != nil {
			log.Printf("config: %v; continuing with defaults", err)
		} else {
			cfg = loaded
		}
	}

	histPath, _ := cmd.Flags().GetString("histfile")
	if histPath == "" {
		histPath = os.Getenv("HISTFILE")
	}
	if histPath == "" {
		histPath = cfg.HistFile
	}
	if histPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			histPath = filepath.Join(home, ".goshell_history")
		}
	}

	h := history.New()
	if histPath != "" {
		if loaded, err := history.LoadFromFile(histPath); err == nil {
			h.Merge(loaded)
		}
	}

	disabled := make(goshellexec.Disabled)
	var completableBuiltins []string
	for _, name := range goshellexec.Names {
		if cfg.Disables(name) {
			disabled[strings.ToLower(name)] = true
			continue
		}
		completableBuiltins = append(completableBuiltins, name)
	}
	pathTrie := trie.BuildDefault(os.Getenv("PATH"), completableBuiltins)

	if line, _ := cmd.Flags().GetString("command"); line != "" {
		_, err := runLine(cmd.Context(), line, os.Stdin, os.Stdout, os.Stderr, h, disabled)
		if histPath != "" {
			h.TrimTo(cfg.HistSize)
			_ = h.WriteToFile(histPath, false)
		}
		return err
	}

	var loopErr error
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		loopErr = runInteractive(cmd.Context(), pathTrie, h, disabled, cfg.Prompt)
	} else {
		loopErr = runScripted(cmd.Context(), os.Stdin, h, disabled)
	}

	if histPath != "" {
		h.TrimTo(cfg.HistSize)
		_ = h.WriteToFile(histPath, false)
	}

	return loopErr
}

// runInteractive drives the raw-mode editor loop, per spec.md §4.6.
func runInteractive(ctx context.Context, t *trie.Trie, h *history.Store, disabled goshellexec.Disabled, promptOverride string) error {
	ed, err := editor.New(int(os.Stdin.Fd()), os.Stdin, os.Stdout, t, h, promptOverride)
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer ed.Close()

	for {
		outcome, err := ed.Run()
		if err != nil {
			return err
		}
		if outcome == editor.EOF {
			return nil
		}

		line := ed.Buffer()
		exit, err := runLine(ctx, line, os.Stdin, os.Stdout, os.Stderr, h, disabled)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if exit {
			return nil
		}

		ed.Reset()
	}
}

// runScripted reads lines from a non-terminal stdin (a pipe or file),
// per spec.md §4.6's non-interactive mode.
func runScripted(ctx context.Context, in *os.File, h *history.Store, disabled goshellexec.Disabled) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		exit, err := runLine(ctx, scanner.Text(), os.Stdin, os.Stdout, os.Stderr, h, disabled)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if exit {
			return nil
		}
	}
	return scanner.Err()
}

// runLine parses and executes one input line, pushing it to history
// first regardless of whether it parses, per spec.md §5. exit reports
// whether the line ran the `exit` builtin.
func runLine(ctx context.Context, line string, in *os.File, out, errw *os.File, h *history.Store, disabled goshellexec.Disabled) (exit bool, err error) {
	if line == "" {
		return false, nil
	}
	h.Push(line)

	pl, err := parser.Parse(line)
	if err != nil {
		return false, err
	}

	result, err := goshellexec.Run(ctx, pl, in, out, errw, h, disabled)
	if err != nil {
		return false, err
	}
	return result == goshellexec.Exit, nil
}
