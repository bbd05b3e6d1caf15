package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/nasermirzaei89/murmur/discuss"
	"github.com/nasermirzaei89/murmur/reactions"
)

const tableComments = "comments"

type CommentRepository struct {
	db *sql.DB
}

var _ discuss.CommentRepository = (*CommentRepository)(nil)

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const (
	commentFieldID        = "id"
	commentFieldVideoID   = "video_id"
	commentFieldTweetID   = "tweet_id"
	commentFieldOwnerID   = "owner_id"
	commentFieldContent   = "content"
	commentFieldCreatedAt = "created_at"
	commentFieldUpdatedAt = "updated_at"
)

func commentColumns() []string {
	return []string{
		commentFieldID,
		commentFieldVideoID,
		commentFieldTweetID,
		commentFieldOwnerID,
		commentFieldContent,
		commentFieldCreatedAt,
		commentFieldUpdatedAt,
	}
}

func prefixed(alias string, columns []string) []string {
	res := make([]string, len(columns))
	for i := range columns {
		res[i] = alias + "." + columns[i]
	}

	return res
}

func parentRef(videoID, tweetID sql.NullString) discuss.ParentRef {
	if videoID.Valid {
		return discuss.VideoParent(videoID.String)
	}

	return discuss.TweetParent(tweetID.String)
}

func scanComment(row sq.RowScanner) (*discuss.Comment, error) {
	var (
		comment discuss.Comment
		videoID sql.NullString
		tweetID sql.NullString
	)

	err := row.Scan(
		&comment.ID,
		&videoID,
		&tweetID,
		&comment.OwnerID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	comment.Parent = parentRef(videoID, tweetID)

	return &comment, nil
}

func scanCommentView(row sq.RowScanner) (*discuss.CommentView, error) {
	var (
		view    discuss.CommentView
		videoID sql.NullString
		tweetID sql.NullString
	)

	err := row.Scan(
		&view.ID,
		&videoID,
		&tweetID,
		&view.OwnerID,
		&view.Content,
		&view.CreatedAt,
		&view.UpdatedAt,
		&view.Owner.Username,
		&view.Owner.AvatarURL,
		&view.LikesCount,
		&view.HasLiked,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	view.Parent = parentRef(videoID, tweetID)

	return &view, nil
}

func parentEq(alias string, parent discuss.ParentRef) sq.Eq {
	if parent.Kind == discuss.ParentKindVideo {
		return sq.Eq{alias + commentFieldVideoID: parent.ID}
	}

	return sq.Eq{alias + commentFieldTweetID: parent.ID}
}

func (repo *CommentRepository) Insert(ctx context.Context, comment *discuss.Comment) error {
	q := sq.Insert(tableComments).
		Columns(commentColumns()...).
		Values(
			comment.ID,
			comment.Parent.VideoID(),
			comment.Parent.TweetID(),
			comment.OwnerID,
			comment.Content,
			comment.CreatedAt.UTC(),
			comment.UpdatedAt.UTC(),
		)

	q = q.RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *CommentRepository) Find(ctx context.Context, commentID string) (*discuss.Comment, error) {
	q := sq.Select(commentColumns()...).
		From(tableComments).
		Where(sq.Eq{commentFieldID: commentID})

	q = q.RunWith(repo.db)

	comment, err := scanComment(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &discuss.CommentNotFoundError{ID: commentID}
		}

		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}

	return comment, nil
}

func (repo *CommentRepository) List(
	ctx context.Context,
	params *discuss.ListCommentsParams,
) ([]*discuss.CommentView, error) {
	query := sq.Select(prefixed("c", commentColumns())...).
		Columns("u."+userFieldUsername, "u."+userFieldAvatarURL).
		Column(likesCountExpr(reactions.TargetTypeComment, "c")).
		Column(hasLikedExpr(reactions.TargetTypeComment, "c", params.ViewerID)).
		From(tableComments + " c").
		Join(tableUsers + " u ON u." + userFieldID + " = c." + commentFieldOwnerID).
		Where(parentEq("c.", params.Parent)).
		OrderBy("c."+commentFieldCreatedAt+" ASC", "c.rowid ASC").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset))

	query = query.RunWith(repo.db)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	defer closeRows(ctx, rows)

	comments := make([]*discuss.CommentView, 0)

	for rows.Next() {
		comment, err := scanCommentView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment failed: %w", err)
		}

		comments = append(comments, comment)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return comments, nil
}

func (repo *CommentRepository) Count(ctx context.Context, parent discuss.ParentRef) (int, error) {
	q := sq.Select("COUNT(*)").
		From(tableComments + " c").
		Join(tableUsers + " u ON u." + userFieldID + " = c." + commentFieldOwnerID).
		Where(parentEq("c.", parent)).
		RunWith(repo.db)

	var count int

	err := q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return count, nil
}

func (repo *CommentRepository) UpdateContent(
	ctx context.Context,
	params *discuss.UpdateContentParams,
) (*discuss.Comment, error) {
	q := sq.Update(tableComments).
		Set(commentFieldContent, params.Content).
		Set(commentFieldUpdatedAt, params.UpdatedAt.UTC()).
		Where(sq.Eq{
			commentFieldID:      params.CommentID,
			commentFieldOwnerID: params.OwnerID,
		}).
		Suffix("RETURNING " + strings.Join(commentColumns(), ", ")).
		RunWith(repo.db)

	comment, err := scanComment(q.QueryRowContext(ctx))
	if err == nil {
		return comment, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	_, err = repo.Find(ctx, params.CommentID)
	if err != nil {
		return nil, err
	}

	return nil, &discuss.NotCommentOwnerError{CommentID: params.CommentID, UserID: params.OwnerID}
}

func (repo *CommentRepository) Delete(ctx context.Context, commentID, ownerID string) error {
	return withTx(ctx, repo.db, func(tx *sql.Tx) error {
		result, err := sq.Delete(tableComments).
			Where(sq.Eq{
				commentFieldID:      commentID,
				commentFieldOwnerID: ownerID,
			}).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to exec delete: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			exists, err := rowExists(ctx, tx, tableComments, commentID)
			if err != nil {
				return err
			}

			if !exists {
				return &discuss.CommentNotFoundError{ID: commentID}
			}

			return &discuss.NotCommentOwnerError{CommentID: commentID, UserID: ownerID}
		}

		err = deleteLikesOf(ctx, tx, reactions.TargetTypeComment, commentID)
		if err != nil {
			return err
		}

		return nil
	})
}

func rowExists(ctx context.Context, runner sq.BaseRunner, table, id string) (bool, error) {
	var exists bool

	err := sq.Select().
		Column(sq.Expr("EXISTS(SELECT 1 FROM "+table+" WHERE id = ?)", id)).
		RunWith(runner).
		QueryRowContext(ctx).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}

	return exists, nil
}
