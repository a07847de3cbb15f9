package auth_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pvcflow/internal/core/apperror"
	"pvcflow/internal/core/id"
	"pvcflow/internal/domain/auth"
	"pvcflow/internal/infrastructure/storage/postgres"
)

const tokensTable = "refresh_tokens"

// Compile-time check.
var _ auth.TokenRepository = (*TokenRepo)(nil)

// TokenRepo implements auth.TokenRepository on PostgreSQL.
type TokenRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewTokenRepo creates a new token repository.
func NewTokenRepo(txManager *postgres.TxManager) *TokenRepo {
	return &TokenRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[auth.RefreshToken](),
	}
}

func (r *TokenRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// SaveRefreshToken stores a refresh token.
func (r *TokenRepo) SaveRefreshToken(ctx context.Context, token *auth.RefreshToken) error {
	data := postgres.StructToMap(token)

	q := r.builder().Insert(tokensTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken retrieves a refresh token by its hash.
func (r *TokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	token := &auth.RefreshToken{}
	q := r.builder().Select(r.selectCols...).From(tokensTable).
		Where(squirrel.Eq{"token_hash": tokenHash})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), token, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("refresh token", "")
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return token, nil
}

// RevokeRefreshToken revokes a single token.
func (r *TokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	q := r.builder().
		Update(tokensTable).
		Set("revoked_at", squirrel.Expr("NOW()")).
		Set("revoked_reason", reason).
		Where(squirrel.Eq{"id": tokenID}).
		Where(squirrel.Expr("revoked_at IS NULL"))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllUserTokens revokes every active token of a user.
func (r *TokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	q := r.builder().
		Update(tokensTable).
		Set("revoked_at", squirrel.Expr("NOW()")).
		Set("revoked_reason", reason).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Expr("revoked_at IS NULL"))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

// CleanupExpiredTokens removes expired tokens and returns how many were
// deleted.
func (r *TokenRepo) CleanupExpiredTokens(ctx context.Context) (int, error) {
	q := r.builder().
		Delete(tokensTable).
		Where(squirrel.Expr("expires_at < NOW()"))

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("cleanup tokens: %w", err)
	}
	return int(result.RowsAffected()), nil
}
