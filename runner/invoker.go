package runner

import (
	"bufio"
	"errors"
	"io"
	"os/exec"
	"sync"

	"context"
)

const (
	// LineChannelSize bounds the queue between the output readers and the
	// parser. A full queue blocks the readers, not the child process pipes
	// directly, so short bursts are absorbed without unbounded memory.
	LineChannelSize = 256

	// Rendered rustc diagnostics can span many source lines
	maxLineLength = 1024 * 1024
)

// SpawnError reports that the build tool could not be started at all.
// It is fatal and never retried.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return "failed to start '" + e.Path + "': " + e.Err.Error()
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Invoker launches the build tool and streams its combined output.
type Invoker struct {
	Path string
	Args []string
	Dir  string
	// Env is appended to the inherited environment when set
	Env []string
}

// Run starts the subprocess and feeds every output line into lines as it
// arrives. Stdout and stderr are read by two goroutines merging into the
// single lines channel, the parser is the only consumer. The channel is
// closed once both streams hit EOF, then the exit status is collected.
// Cancelling ctx kills the child first, buffered output is still drained.
func (inv *Invoker) Run(ctx context.Context, lines chan<- string) (int, error) {
	//nolint:gosec // The command is the tool this runner was asked to wrap
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(cmd.Environ(), inv.Env...)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		close(lines)
		return 0, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		close(lines)
		return 0, err
	}
	if err := cmd.Start(); err != nil {
		close(lines)
		return 0, &SpawnError{Path: inv.Path, Err: err}
	}
	var wg sync.WaitGroup
	wg.Add(2)
	scan := func(stream io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(stream)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		// A scanner error means we lost the rest of this stream, the
		// other stream and the exit status are still collected.
	}
	go scan(stdout)
	go scan(stderr)
	wg.Wait()
	close(lines)
	err = cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}
