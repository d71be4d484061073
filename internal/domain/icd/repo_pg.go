package icd

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medrec/visits/internal/platform/db"
	"github.com/medrec/visits/internal/platform/errs"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const codeCols = `id, code, description, created_at`

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Code, error) {
	var c Code
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+codeCols+` FROM icd_code WHERE code = $1`, code).
		Scan(&c.ID, &c.Code, &c.Description, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NotFound("icd code %s", code)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Code, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM icd_code`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+codeCols+` FROM icd_code ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var codes []*Code
	for rows.Next() {
		var c Code
		if err := rows.Scan(&c.ID, &c.Code, &c.Description, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		codes = append(codes, &c)
	}
	return codes, total, rows.Err()
}
