package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gfx.cafe/gfx/pgroute/lib/conninfo"
	"gfx.cafe/gfx/pgroute/lib/router"
)

type fakeConn struct {
	results []Result
	execErr error

	executed []string
	closed   bool
}

func (T *fakeConn) Exec(_ context.Context, sql string) ([]Result, error) {
	T.executed = append(T.executed, sql)
	if T.execErr != nil {
		return nil, T.execErr
	}
	return T.results, nil
}

func (T *fakeConn) Close(_ context.Context) error {
	T.closed = true
	return nil
}

func descriptorFor(host string) conninfo.Descriptor {
	return conninfo.Build(
		[]router.Candidate{{Host: host, Port: 5432}},
		router.BestEffort, "app", "alice", "pw",
	)
}

func TestRunStatement(t *testing.T) {
	conn := &fakeConn{results: []Result{{
		Columns: []string{"a"},
		Rows:    [][]string{{"1"}},
		Tag:     "SELECT 1",
	}}}
	var out strings.Builder

	runner := Runner{
		Connect: func(_ context.Context, _ string) (Conn, error) {
			return conn, nil
		},
		Out: &out,
	}

	err := runner.Run(context.Background(), descriptorFor("db0"), "SELECT 1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(conn.executed) != 1 || conn.executed[0] != "SELECT 1" {
		t.Errorf("expected one statement, got %v", conn.executed)
	}
	if !conn.closed {
		t.Error("expected session closed")
	}
	if !strings.Contains(out.String(), "(1 rows)") {
		t.Errorf("expected row count in output, got %q", out.String())
	}
}

func TestRunFallbackRetriesOnce(t *testing.T) {
	var attempts []string

	runner := Runner{
		Connect: func(_ context.Context, connString string) (Conn, error) {
			attempts = append(attempts, connString)
			return nil, errors.New("connection refused")
		},
	}

	primary := descriptorFor("db0")
	alternate := descriptorFor("db1")

	err := runner.Run(context.Background(), primary, "SELECT 1", &alternate)
	if !errors.Is(err, ErrConnectFailed) {
		t.Errorf("expected ErrConnectFailed, got %v", err)
	}
	// exactly one extra attempt, then stop
	if len(attempts) != 2 {
		t.Fatalf("expected 2 connect attempts, got %d", len(attempts))
	}
	if !strings.Contains(attempts[0], "db0") || !strings.Contains(attempts[1], "db1") {
		t.Errorf("expected db0 then db1, got %v", attempts)
	}
}

func TestRunFallbackRecovers(t *testing.T) {
	conn := &fakeConn{}

	runner := Runner{
		Connect: func(_ context.Context, connString string) (Conn, error) {
			if strings.Contains(connString, "db0") {
				return nil, errors.New("connection refused")
			}
			return conn, nil
		},
	}

	primary := descriptorFor("db0")
	alternate := descriptorFor("db1")

	err := runner.Run(context.Background(), primary, "SELECT 1", &alternate)
	if err != nil {
		t.Fatal(err)
	}
	if len(conn.executed) != 1 {
		t.Errorf("expected statement to run on alternate, got %v", conn.executed)
	}
}

func TestRunNoFallbackWithoutDescriptor(t *testing.T) {
	var attempts int

	runner := Runner{
		Connect: func(_ context.Context, _ string) (Conn, error) {
			attempts++
			return nil, errors.New("connection refused")
		},
	}

	err := runner.Run(context.Background(), descriptorFor("db0"), "SELECT 1", nil)
	if !errors.Is(err, ErrConnectFailed) {
		t.Errorf("expected ErrConnectFailed, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected single attempt, got %d", attempts)
	}
}

func TestStatementFailureNotRetried(t *testing.T) {
	conns := 0

	runner := Runner{
		Connect: func(_ context.Context, _ string) (Conn, error) {
			conns++
			return &fakeConn{execErr: errors.New("syntax error")}, nil
		},
	}

	primary := descriptorFor("db0")
	alternate := descriptorFor("db1")

	// a failed write must not be re-sent to a different node
	err := runner.Run(context.Background(), primary, "INSERT INTO t VALUES (1)", &alternate)
	if !errors.Is(err, ErrStatementFailed) {
		t.Errorf("expected ErrStatementFailed, got %v", err)
	}
	if conns != 1 {
		t.Errorf("expected no retry after statement failure, got %d sessions", conns)
	}
}

func TestInteractive(t *testing.T) {
	conn := &fakeConn{results: []Result{{Tag: "CREATE TABLE"}}}
	var out strings.Builder

	runner := Runner{
		Connect: func(_ context.Context, _ string) (Conn, error) {
			return conn, nil
		},
		In: strings.NewReader(
			"CREATE TABLE t\n" +
				"  (id int);\n" +
				`\q` + "\n",
		),
		Out: &out,
	}

	err := runner.Run(context.Background(), descriptorFor("db0"), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(conn.executed) != 1 {
		t.Fatalf("expected one statement, got %v", conn.executed)
	}
	if !strings.Contains(conn.executed[0], "(id int);") {
		t.Errorf("expected multi-line statement accumulated, got %q", conn.executed[0])
	}
	if !strings.Contains(out.String(), "CREATE TABLE") {
		t.Errorf("expected command tag echoed, got %q", out.String())
	}
}

func TestInteractiveStatementErrorContinues(t *testing.T) {
	conn := &fakeConn{execErr: errors.New("syntax error")}
	var out strings.Builder

	runner := Runner{
		Connect: func(_ context.Context, _ string) (Conn, error) {
			return conn, nil
		},
		In:  strings.NewReader("SELEKT 1;\nSELEKT 2;\n"),
		Out: &out,
	}

	err := runner.Run(context.Background(), descriptorFor("db0"), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(conn.executed) != 2 {
		t.Errorf("expected the session to continue after an error, got %v", conn.executed)
	}
	if !strings.Contains(out.String(), "ERROR: syntax error") {
		t.Errorf("expected error surfaced, got %q", out.String())
	}
}
