package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"gfx.cafe/gfx/pgroute/lib/conninfo"
)

var (
	// ErrConnectFailed is returned when every candidate in the descriptor
	// was exhausted without a successful, attribute-satisfying connection.
	ErrConnectFailed = errors.New("connect: no candidate accepted the session")
	// ErrStatementFailed is returned verbatim-wrapped when the statement
	// errors. It is never retried: a failed write must not be re-sent to a
	// different node.
	ErrStatementFailed = errors.New("statement: execution failed")
)

// Conn is an open database session.
type Conn interface {
	Exec(ctx context.Context, sql string) ([]Result, error)
	Close(ctx context.Context) error
}

// ConnectFunc opens a session from a serialized descriptor. The default
// connects with pgconn, which walks the candidate addresses in order and
// enforces target_session_attrs against whichever it reaches.
type ConnectFunc func(ctx context.Context, connString string) (Conn, error)

// Runner opens a session against a descriptor and either executes one
// statement or hands an interactive session to the user.
type Runner struct {
	// Connect defaults to the pgconn connector.
	Connect ConnectFunc

	In  io.Reader
	Out io.Writer

	Log *zap.Logger
}

// Run opens a session and executes statement, or runs interactively when
// statement is empty. If fallback is non-nil and the connect phase fails,
// it rebuilds against the fallback descriptor and retries exactly once.
// Statement failures are never retried.
func (T *Runner) Run(ctx context.Context, descriptor conninfo.Descriptor, statement string, fallback *conninfo.Descriptor) error {
	err := T.runOnce(ctx, descriptor, statement)
	if err == nil {
		return nil
	}
	if fallback == nil || !errors.Is(err, ErrConnectFailed) {
		return err
	}

	// Single bounded retry. Credentials are reused as-is against the
	// alternate endpoint without re-checking its role.
	T.log().Warn("connect failed, retrying against alternate endpoint",
		zap.String("descriptor", descriptor.Redacted()),
		zap.String("alternate", fallback.Redacted()),
		zap.Error(err),
	)
	return T.runOnce(ctx, *fallback, statement)
}

func (T *Runner) runOnce(ctx context.Context, descriptor conninfo.Descriptor, statement string) error {
	connect := T.Connect
	if connect == nil {
		connect = pgConnect
	}

	conn, err := connect(ctx, descriptor.ConnString())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}
	defer func() {
		_ = conn.Close(ctx)
	}()

	if statement != "" {
		results, err := conn.Exec(ctx, statement)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStatementFailed, err)
		}
		return printResults(T.out(), results)
	}

	return T.interactive(ctx, conn, descriptor.Database)
}

// interactive reads statements terminated by ';' (or \q to quit) and
// executes them until the input ends. Statement errors are reported and the
// session continues.
func (T *Runner) interactive(ctx context.Context, conn Conn, database string) error {
	in := T.In
	if in == nil {
		in = os.Stdin
	}
	out := T.out()

	prompt := database + "=> "
	scanner := bufio.NewScanner(in)
	var pending strings.Builder

	_, _ = fmt.Fprint(out, prompt)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if pending.Len() == 0 && (trimmed == `\q` || trimmed == "quit" || trimmed == "exit") {
			return nil
		}
		pending.WriteString(line)
		pending.WriteByte('\n')

		if !strings.HasSuffix(trimmed, ";") {
			_, _ = fmt.Fprint(out, database+"-> ")
			continue
		}

		statement := pending.String()
		pending.Reset()

		results, err := conn.Exec(ctx, statement)
		if err != nil {
			_, _ = fmt.Fprintf(out, "ERROR: %v\n", err)
		} else if err = printResults(out, results); err != nil {
			return err
		}
		_, _ = fmt.Fprint(out, prompt)
	}
	_, _ = fmt.Fprintln(out)
	return scanner.Err()
}

func (T *Runner) out() io.Writer {
	if T.Out != nil {
		return T.Out
	}
	return os.Stdout
}

func (T *Runner) log() *zap.Logger {
	if T.Log != nil {
		return T.Log
	}
	return zap.NewNop()
}
