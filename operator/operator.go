package operator

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/kbukum/liquidkit/logger"
)

// Operator is asked to act before the run continues.
type Operator interface {
	// Pause blocks until the operator resumes the run or ctx is done.
	Pause(ctx context.Context, message string) error
}

// Announcer is an Operator that reports when a pause is ready to be
// resumed. waiting is called once, before Pause blocks.
type Announcer interface {
	Operator
	PauseAnnounced(ctx context.Context, message string, waiting func()) error
}

// PauseAnnounced pauses op and calls waiting once the pause can be resumed.
// Operators that are not Announcers get waiting called up front.
func PauseAnnounced(ctx context.Context, op Operator, message string, waiting func()) error {
	if a, ok := op.(Announcer); ok {
		return a.PauseAnnounced(ctx, message, waiting)
	}
	if waiting != nil {
		waiting()
	}
	return op.Pause(ctx, message)
}

// Func adapts a function to Operator.
type Func func(ctx context.Context, message string) error

// Pause calls f.
func (f Func) Pause(ctx context.Context, message string) error { return f(ctx, message) }

// Auto resumes immediately. It is used for simulated runs.
type Auto struct {
	Log *logger.Logger
}

// Pause logs message and returns.
func (a Auto) Pause(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Log != nil {
		a.Log.Info("pause skipped", logger.Fields("message", message))
	}
	return nil
}

// Prompt prints the message and waits for a line of input.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt reads resumes from in and writes prompts to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Pause prints message and blocks until a line is read. Cancelling ctx
// abandons the wait; the pending read is discarded with the prompt.
func (p *Prompt) Pause(ctx context.Context, message string) error {
	if _, err := fmt.Fprintf(p.out, "\n>> %s\n   Press Enter to resume... ", message); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		_, err := p.in.ReadString('\n')
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("operator input closed while paused: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
