package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// console reads user answers line by line and writes prompts and output.
//
// Input is read by a single goroutine started on the first read, so a
// blocked read never holds up context cancellation. That goroutine lives
// until input ends.
type console struct {
	in    *bufio.Reader
	out   io.Writer
	delay time.Duration

	start   sync.Once
	lines   chan string
	readErr error // set before lines is closed
}

func newConsole(in io.Reader, out io.Writer, delay time.Duration) *console {
	return &console{
		in:    bufio.NewReader(in),
		out:   out,
		delay: delay,
		lines: make(chan string),
	}
}

// Lines have no length limit. A final line without a newline is still
// delivered before the read error.
func (c *console) readLines() {
	for {
		line, err := c.in.ReadString('\n')
		if err == nil || line != "" {
			c.lines <- line
		}
		if err != nil {
			c.readErr = err
			close(c.lines)
			return
		}
	}
}

// readLine returns the next input line without surrounding whitespace.
// io.EOF is returned once input is exhausted and ctx.Err() once ctx is done.
func (c *console) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.start.Do(func() { go c.readLines() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", c.readErr
		}
		return strings.TrimSpace(line), nil
	}
}

// ask prints prompt on its own line and reads the answer.
func (c *console) ask(ctx context.Context, prompt string) (string, error) {
	c.println(prompt)
	return c.readLine(ctx)
}

// askYesNo reads an answer and reports whether it was "y" in any case.
func (c *console) askYesNo(ctx context.Context, prompt string) (bool, error) {
	answer, err := c.ask(ctx, prompt)
	if err != nil {
		return false, err
	}
	return strings.ToLower(answer) == "y", nil
}

func (c *console) print(a ...any) {
	_, _ = fmt.Fprint(c.out, a...)
}

func (c *console) println(a ...any) {
	_, _ = fmt.Fprintln(c.out, a...)
}

// pace prints msg and then waits for the configured message delay.
// The wait ends early when ctx is done.
func (c *console) pace(ctx context.Context, msg string) error {
	c.println(msg)
	if c.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseMenuChoice converts a menu answer into a number.
// The boolean is false for anything that is not an integer.
func parseMenuChoice(line string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, false
	}
	return n, true
}
