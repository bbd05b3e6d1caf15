package sqlite3

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/nasermirzaei89/murmur/reactions"
)

const tableLikes = "likes"

type LikeRepository struct {
	db *sql.DB
}

var _ reactions.LikeRepository = (*LikeRepository)(nil)

func NewLikeRepository(db *sql.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

const (
	likeFieldID         = "id"
	likeFieldTargetType = "target_type"
	likeFieldTargetID   = "target_id"
	likeFieldLikedBy    = "liked_by"
	likeFieldCreatedAt  = "created_at"
)

func likeColumns() []string {
	return []string{
		likeFieldID,
		likeFieldTargetType,
		likeFieldTargetID,
		likeFieldLikedBy,
		likeFieldCreatedAt,
	}
}

func likesCountExpr(targetType reactions.TargetType, alias string) sq.Sqlizer {
	return sq.Expr(
		"(SELECT COUNT(*) FROM "+tableLikes+" l WHERE l.target_type = ? AND l.target_id = "+alias+".id) AS likes_count",
		string(targetType),
	)
}

// hasLikedExpr is always false for an empty viewerID.
func hasLikedExpr(targetType reactions.TargetType, alias, viewerID string) sq.Sqlizer {
	return sq.Expr(
		"EXISTS(SELECT 1 FROM "+tableLikes+" l WHERE l.target_type = ? AND l.target_id = "+alias+".id AND l.liked_by = ? AND l.liked_by <> '') AS has_liked",
		string(targetType),
		viewerID,
	)
}

func deleteLikesOf(ctx context.Context, runner sq.BaseRunner, targetType reactions.TargetType, targetID string) error {
	_, err := sq.Delete(tableLikes).
		Where(sq.Eq{
			likeFieldTargetType: string(targetType),
			likeFieldTargetID:   targetID,
		}).
		RunWith(runner).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete likes of %s: %w", targetType, err)
	}

	return nil
}

func targetTable(targetType reactions.TargetType) (string, error) {
	switch targetType {
	case reactions.TargetTypeComment:
		return tableComments, nil
	case reactions.TargetTypeTweet:
		return tableTweets, nil
	default:
		return "", fmt.Errorf("unknown like target type %q", targetType)
	}
}

func (repo *LikeRepository) TargetExists(
	ctx context.Context,
	targetType reactions.TargetType,
	targetID string,
) (bool, error) {
	table, err := targetTable(targetType)
	if err != nil {
		return false, err
	}

	return rowExists(ctx, repo.db, table, targetID)
}

func (repo *LikeRepository) Insert(ctx context.Context, like *reactions.Like) error {
	q := sq.Insert(tableLikes).
		Columns(likeColumns()...).
		Values(
			like.ID,
			string(like.TargetType),
			like.TargetID,
			like.UserID,
			like.CreatedAt.UTC(),
		).
		Suffix("ON CONFLICT (" + likeFieldTargetType + ", " + likeFieldTargetID + ", " + likeFieldLikedBy + ") DO NOTHING").
		RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *LikeRepository) DeleteByUserTarget(
	ctx context.Context,
	targetType reactions.TargetType,
	targetID string,
	userID string,
) (bool, error) {
	result, err := sq.Delete(tableLikes).
		Where(sq.Eq{
			likeFieldTargetType: string(targetType),
			likeFieldTargetID:   targetID,
			likeFieldLikedBy:    userID,
		}).
		RunWith(repo.db).
		ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
