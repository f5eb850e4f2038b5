package session

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

type pgConn struct {
	conn *pgconn.PgConn
}

func pgConnect(ctx context.Context, connString string) (Conn, error) {
	config, err := pgconn.ParseConfig(connString)
	if err != nil {
		return nil, err
	}
	conn, err := pgconn.ConnectConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	return pgConn{conn: conn}, nil
}

func (T pgConn) Exec(ctx context.Context, sql string) ([]Result, error) {
	raw, err := T.conn.Exec(ctx, sql).ReadAll()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(raw))
	for _, r := range raw {
		result := Result{
			Tag: r.CommandTag.String(),
		}
		for _, field := range r.FieldDescriptions {
			result.Columns = append(result.Columns, field.Name)
		}
		for _, row := range r.Rows {
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				if cell == nil {
					cells = append(cells, "")
				} else {
					cells = append(cells, string(cell))
				}
			}
			result.Rows = append(result.Rows, cells)
		}
		results = append(results, result)
	}
	return results, nil
}

func (T pgConn) Close(ctx context.Context) error {
	return T.conn.Close(ctx)
}
