package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/thankyoudoc/thankyoudoc-api/internal/core"
	"github.com/thankyoudoc/thankyoudoc-api/internal/data/pgxutil"
	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	apperrors "github.com/thankyoudoc/thankyoudoc-api/internal/errors"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

// RoleRepo provides database operations for the user_roles table.
type RoleRepo struct {
	DB *sql.DB
}

var _ core.RoleRepository = (*RoleRepo)(nil)

// NewRoleRepo creates a new RoleRepo.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{DB: db}
}

type roleRow struct {
	UserID    string    `db:"user_id"`
	Role      string    `db:"role"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r roleRow) assignment() ports.RoleAssignment {
	return ports.RoleAssignment{UserID: r.UserID, Role: domainauth.Role(r.Role), UpdatedAt: r.UpdatedAt}
}

const (
	roleGetQuery = `SELECT role FROM user_roles WHERE user_id = $1`

	roleUpsertQuery = `
		INSERT INTO user_roles (user_id, role, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role, updated_at = now()
		RETURNING user_id, role, updated_at`

	roleListQuery = `
		SELECT user_id, role, updated_at
		FROM user_roles
		ORDER BY updated_at DESC, user_id
		LIMIT $1 OFFSET $2`
)

// Get returns the role for userID, or ports.ErrRoleNotFound when no row exists.
func (r *RoleRepo) Get(ctx context.Context, userID string) (domainauth.Role, error) {
	var role string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, roleGetQuery, userID).Scan(&role)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.RoleNone, ports.ErrRoleNotFound
		}
		return domainauth.RoleNone, apperrors.MapDBError(err)
	}
	return domainauth.ParseRole(role)
}

// Upsert creates or replaces the role record for userID.
func (r *RoleRepo) Upsert(ctx context.Context, userID string, role domainauth.Role) (ports.RoleAssignment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ports.RoleAssignment{}, ErrIDRequired
	}

	var out roleRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, roleUpsertQuery, userID, string(role))
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[roleRow])
		return err
	})
	if err != nil {
		return ports.RoleAssignment{}, apperrors.MapDBError(err)
	}
	return out.assignment(), nil
}

// Delete removes the role record and reports whether one existed.
func (r *RoleRepo) Delete(ctx context.Context, userID string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return affected > 0, nil
}

// List returns role records, most recently changed first.
func (r *RoleRepo) List(ctx context.Context, limit, offset int) ([]ports.RoleAssignment, error) {
	var rowsOut []roleRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, roleListQuery, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[roleRow])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	res := make([]ports.RoleAssignment, len(rowsOut))
	for i := range rowsOut {
		res[i] = rowsOut[i].assignment()
	}
	return res, nil
}
