package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"filedrive/internal/domain"
)

const uniqueViolation = "23505"

// UserRepository define el contrato de persistencia para el directorio de usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByTokenIdentifier(ctx context.Context, tokenIdentifier string) (domain.User, error)
	UpdateProfile(ctx context.Context, id, name, image string) error
	ModifyOrgIDs(ctx context.Context, tokenIdentifier string, fn OrgIDsMutation) error
}

// OrgIDsMutation recibe el usuario bloqueado y devuelve la nueva lista de membresias.
// Si changed es false no se escribe nada.
type OrgIDsMutation func(user domain.User) (orgIDs []domain.OrgMembership, changed bool, err error)

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, token_identifier, name, image, org_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	orgs, err := encodeOrgIDs(user.OrgIDs)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query,
		user.ID,
		user.TokenIdentifier,
		user.Name,
		user.Image,
		orgs,
		user.CreatedAt,
		user.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("create user %s: %w", user.TokenIdentifier, domain.ErrUserExists)
	}
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, token_identifier, name, image, org_ids, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *PgUserRepository) GetByTokenIdentifier(ctx context.Context, tokenIdentifier string) (domain.User, error) {
	const query = `
		SELECT id, token_identifier, name, image, org_ids, created_at, updated_at
		FROM users
		WHERE token_identifier = $1
	`
	return r.scanOne(ctx, query, tokenIdentifier)
}

func (r *PgUserRepository) UpdateProfile(ctx context.Context, id, name, image string) error {
	const query = `
		UPDATE users
		SET name = $2, image = $3, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, name, image)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ModifyOrgIDs hace el read-modify-write de org_ids dentro de una transaccion con
// SELECT ... FOR UPDATE, asi dos eventos concurrentes del mismo usuario se serializan.
func (r *PgUserRepository) ModifyOrgIDs(ctx context.Context, tokenIdentifier string, fn OrgIDsMutation) error {
	const selectQuery = `
		SELECT id, token_identifier, name, image, org_ids, created_at, updated_at
		FROM users
		WHERE token_identifier = $1
		FOR UPDATE
	`
	const updateQuery = `
		UPDATE users
		SET org_ids = $2, updated_at = NOW()
		WHERE id = $1
	`
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	user, err := scanUser(tx.QueryRow(ctx, selectQuery, tokenIdentifier))
	if err != nil {
		return err
	}

	orgIDs, changed, err := fn(user)
	if err != nil {
		return err
	}
	if !changed {
		return tx.Commit(ctx)
	}

	orgs, err := encodeOrgIDs(orgIDs)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, updateQuery, user.ID, orgs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PgUserRepository) scanOne(ctx context.Context, query string, arg string) (domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, query, arg))
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u    domain.User
		orgs []byte
	)
	err := row.Scan(
		&u.ID,
		&u.TokenIdentifier,
		&u.Name,
		&u.Image,
		&orgs,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	if err := json.Unmarshal(orgs, &u.OrgIDs); err != nil {
		return domain.User{}, fmt.Errorf("decode org_ids: %w", err)
	}
	if u.OrgIDs == nil {
		u.OrgIDs = []domain.OrgMembership{}
	}
	return u, nil
}

// encodeOrgIDs serializa las membresias; una lista nil se guarda como [].
func encodeOrgIDs(orgIDs []domain.OrgMembership) ([]byte, error) {
	if orgIDs == nil {
		orgIDs = []domain.OrgMembership{}
	}
	return json.Marshal(orgIDs)
}
