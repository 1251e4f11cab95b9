package exec

import (
	"context"
	"fmt"
	"io"
	"os"
	osexec "os/exec"

	"golang.org/x/sync/errgroup"

	"github.com/kir-gadjello/goshell/internal/history"
	"github.com/kir-gadjello/goshell/internal/parser"
)

// Result is what running a pipeline produced, per spec.md §4.5.
type Result int

const (
	// Continue means the event loop should run another iteration.
	Continue Result = iota
	// Exit means a builtin in the pipeline requested shell termination.
	Exit
)

// stage is one pipeline position, classified as either internal (a
// builtin) or external (a spawned process), holding its streams prior to
// and after the wiring pass.
type stage struct {
	builtin  *internalCommand // nil if external
	cmdName  string
	cmdArgs  []string
	in       io.Reader
	out      io.Writer
	cmdErr   io.Writer
	closers  []io.Closer
	isExit   bool

	// stdoutRedirected is set when this stage's own `>`/`>>` targets its
	// stdout descriptor; the wiring pass must not overwrite out with a
	// pipe writer in that case, per spec.md's redirect-wins precedence.
	stdoutRedirected bool
}

// openRedirectFile opens the file target of a redirection, per spec.md
// §4.1/§4.5. Descriptor targets and non-stdout/stderr sources are
// unsupported, as original_source's command/mod.rs documents.
func openRedirectFile(r *parser.Redirect) (*os.File, error) {
	if r.To.IsFd {
		return nil, fmt.Errorf("unsupported: redirection to an arbitrary descriptor")
	}
	flags := os.O_WRONLY | os.O_CREATE
	if r.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(r.To.File, flags, 0o644)
}

// buildStage classifies one parsed command and applies its redirection,
// per spec.md §4.5's classification pass. isFirst/isLast decide the
// stage's default (pre-wiring) input/output.
func buildStage(pc parser.Command, isFirst, isLast bool, in io.Reader, out, errw io.Writer, disabled Disabled) (*stage, error) {
	st := &stage{cmdErr: errw}

	b, isBuiltin := lookupBuiltin(pc.Name, disabled)
	if isBuiltin {
		st.builtin = &internalCommand{name: b, args: pc.Args}
		st.isExit = b == BuiltinExit
	} else {
		st.cmdName = pc.Name
		st.cmdArgs = pc.Args
	}

	if isFirst {
		st.in = in
	}
	if isLast {
		st.out = out
	} else {
		st.out = nil
	}

	if pc.Redirect != nil {
		f, err := openRedirectFile(pc.Redirect)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pc.Name, err)
		}
		st.closers = append(st.closers, f)
		switch pc.Redirect.From {
		case parser.FdStdout:
			st.out = f
			st.stdoutRedirected = true
		case parser.FdStderr:
			st.cmdErr = f
		default:
			return nil, fmt.Errorf("%s: unsupported redirection from descriptor %d", pc.Name, pc.Redirect.From)
		}
	}

	return st, nil
}

// closeAfterSpawn closes file descriptors handed off to a child process:
// once Start() has dup'd them into the child, the parent's copy must be
// released so the sibling stage observes EOF when the child exits.
func closeAfterSpawn(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}

// Run classifies, wires, and concurrently runs pl, per spec.md §4.5. in,
// out, and errw are the shell's own standard streams (or redirected
// equivalents for the first/last stage); h is the shared history store
// the `history` builtin reads and writes.
func Run(ctx context.Context, pl parser.Pipeline, in io.Reader, out, errw io.Writer, h *history.Store, disabled Disabled) (Result, error) {
	if len(pl) == 0 {
		return Continue, nil
	}

	stages := make([]*stage, len(pl))
	for i, pc := range pl {
		st, err := buildStage(pc, i == 0, i == len(pl)-1, in, out, errw, disabled)
		if err != nil {
			fmt.Fprintln(errw, err)
			return Continue, nil
		}
		stages[i] = st
	}

	for i := 0; i < len(stages)-1; i++ {
		producer, consumer := stages[i], stages[i+1]
		if producer.builtin != nil && consumer.builtin != nil {
			r, w := io.Pipe()
			if producer.stdoutRedirected {
				// producer's own `>`/`>>` already claimed its stdout; the
				// consumer still reads from this pipe but gets immediate
				// EOF since nothing will ever write to it, matching the
				// redirect-wins precedence a real shell gives `cmd > f | cmd2`.
				_ = w.Close()
			} else {
				producer.out = w
				producer.closers = append(producer.closers, w)
			}
			consumer.in = r
			consumer.closers = append(consumer.closers, r)
		} else {
			r, w, err := os.Pipe()
			if err != nil {
				return Continue, fmt.Errorf("pipe: %w", err)
			}
			if producer.stdoutRedirected {
				_ = w.Close()
			} else {
				producer.out = w
				if producer.builtin != nil {
					producer.closers = append(producer.closers, w)
				}
			}
			consumer.in = r
			if consumer.builtin != nil {
				consumer.closers = append(consumer.closers, r)
			}
		}
	}

	result := Continue
	for _, st := range stages {
		if st.isExit {
			result = Exit
		}
	}

	g, _ := errgroup.WithContext(ctx)

	for _, st := range stages {
		st := st
		if st.builtin != nil {
			g.Go(func() error {
				defer st.closeOwned()
				in := st.in
				if in == nil {
					in = os.Stdin
				}
				out := st.out
				if out == nil {
					out = os.Stdout
				}
				st.builtin.input, st.builtin.output, st.builtin.errors = in, out, st.cmdErr
				st.builtin.run(h)
				return nil
			})
			continue
		}

		cmd := osexec.CommandContext(ctx, st.cmdName, st.cmdArgs...)
		if st.in != nil {
			cmd.Stdin = st.in
		}
		if st.out != nil {
			cmd.Stdout = st.out
		}
		cmd.Stderr = st.cmdErr

		g.Go(func() error {
			defer st.closeOwned()
			if err := cmd.Start(); err != nil {
				fmt.Fprintf(st.cmdErr, "%s: command not found\n", st.cmdName)
				return nil
			}
			if inFile, ok := st.in.(*os.File); ok && inFile != os.Stdin {
				closeAfterSpawn(inFile)
			}
			if outFile, ok := st.out.(*os.File); ok && outFile != os.Stdout {
				closeAfterSpawn(outFile)
			}
			_ = cmd.Wait()
			return nil
		})
	}

	_ = g.Wait()
	return result, nil
}

func (st *stage) closeOwned() {
	for _, c := range st.closers {
		_ = c.Close()
	}
}
