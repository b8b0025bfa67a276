package engine

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/hpcloud/tail"
	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

const maxLineSize = 4 * 1024 * 1024

// Run feeds every line of r to the engine until EOF.
func (e *Engine) Run(ctx context.Context, r io.Reader) error {
	if err := e.scan(ctx, r); err != nil {
		return err
	}
	return e.Close()
}

func (e *Engine) scan(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.FeedLine(scanner.Bytes()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "failed to read test output")
	}
	return ctx.Err()
}

// Follow reads filename like `tail -f`. It returns once expected tests
// have completed and none is executing, or when ctx is done. With
// expected <= 0 only ctx ends following. poll selects polling instead
// of file system notifications.
func (e *Engine) Follow(ctx context.Context, filename string, expected int, poll bool) error {
	t, err := tail.TailFile(filename, tail.Config{
		Follow:      true,
		MustExist:   true,
		Poll:        poll,
		MaxLineSize: maxLineSize,
		Logger:      tailLogger{e.log},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to follow %s", filename)
	}
	defer t.Cleanup()
	defer func() {
		_ = t.Stop()
	}()

	for {
		select {
		case line, ok := <-t.Lines:
			if !ok {
				return e.Close()
			}
			if line.Err != nil {
				return errors.Wrapf(line.Err, "failed to follow %s", filename)
			}
			if err := e.FeedLine([]byte(line.Text)); err != nil {
				return err
			}
			if expected > 0 && e.Completed() >= expected && e.Idle() {
				e.log.Debugf("all %d tests completed, stop following %s", expected, filename)
				return e.Close()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Exec runs command and feeds its standard output to the engine. The
// command line is split like a shell would. A non-zero exit status is
// not an error as long as no test was interrupted; `go test` exits
// with 1 whenever a test fails.
func (e *Engine) Exec(ctx context.Context, command string, stderr io.Writer) error {
	args, err := shellwords.NewParser().Parse(command)
	if err != nil {
		return errors.Wrapf(err, "error parsing test command %q", command)
	}
	if len(args) == 0 {
		return errors.Errorf("empty test command %q", command)
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "failed to attach to test command output")
	}

	e.log.Debugf("Starting test command: %v", args)
	if err = cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start test command %q", command)
	}

	scanErr := e.scan(ctx, stdout)
	if scanErr != nil {
		// Unblock the command if it is still writing.
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()
	if scanErr != nil {
		return scanErr
	}

	err = e.Close()
	var incomplete *IncompleteError
	if errors.As(err, &incomplete) {
		incomplete.Err = waitErr
		return incomplete
	}
	if err != nil {
		return err
	}
	if waitErr != nil {
		e.log.Infof("Test command finished: %v", waitErr)
	}
	return nil
}

// CountTests returns the number of top level tests started in the
// test2json stream r.
func CountTests(r io.Reader) (int, error) {
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		ev, err := Decode(scanner.Bytes())
		if err != nil || ev.Action != ActionRun || ev.Test == "" {
			continue
		}
		root, sub := rootName(ev.Test)
		if sub {
			continue
		}
		seen[ev.Package+"#"+root] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return 0, errors.Wrap(err, "failed to count tests")
	}
	return len(seen), nil
}

// CountTestsInFile is CountTests for a file.
func CountTestsInFile(filename string) (int, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count tests")
	}
	defer f.Close()
	return CountTests(f)
}
