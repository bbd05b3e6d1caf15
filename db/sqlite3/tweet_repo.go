package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/nasermirzaei89/murmur/contents"
	"github.com/nasermirzaei89/murmur/reactions"
)

const tableTweets = "tweets"

type TweetRepository struct {
	db *sql.DB
}

var _ contents.TweetRepository = (*TweetRepository)(nil)

func NewTweetRepository(db *sql.DB) *TweetRepository {
	return &TweetRepository{db: db}
}

const (
	tweetFieldID        = "id"
	tweetFieldOwnerID   = "owner_id"
	tweetFieldContent   = "content"
	tweetFieldImageKey  = "image_key"
	tweetFieldImageURL  = "image_url"
	tweetFieldCreatedAt = "created_at"
	tweetFieldUpdatedAt = "updated_at"
)

func tweetColumns() []string {
	return []string{
		tweetFieldID,
		tweetFieldOwnerID,
		tweetFieldContent,
		tweetFieldImageKey,
		tweetFieldImageURL,
		tweetFieldCreatedAt,
		tweetFieldUpdatedAt,
	}
}

func scanTweet(row sq.RowScanner) (*contents.Tweet, error) {
	var tweet contents.Tweet

	err := row.Scan(
		&tweet.ID,
		&tweet.OwnerID,
		&tweet.Content,
		&tweet.ImageKey,
		&tweet.ImageURL,
		&tweet.CreatedAt,
		&tweet.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &tweet, nil
}

func scanTweetView(row sq.RowScanner) (*contents.TweetView, error) {
	var view contents.TweetView

	err := row.Scan(
		&view.ID,
		&view.OwnerID,
		&view.Content,
		&view.ImageKey,
		&view.ImageURL,
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

	return &view, nil
}

func (repo *TweetRepository) Insert(ctx context.Context, tweet *contents.Tweet) error {
	q := sq.Insert(tableTweets).
		Columns(tweetColumns()...).
		Values(
			tweet.ID,
			tweet.OwnerID,
			tweet.Content,
			tweet.ImageKey,
			tweet.ImageURL,
			tweet.CreatedAt.UTC(),
			tweet.UpdatedAt.UTC(),
		)

	q = q.RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *TweetRepository) find(ctx context.Context, runner sq.BaseRunner, tweetID string) (*contents.Tweet, error) {
	q := sq.Select(tweetColumns()...).
		From(tableTweets).
		Where(sq.Eq{tweetFieldID: tweetID}).
		RunWith(runner)

	tweet, err := scanTweet(q.QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &contents.TweetNotFoundError{ID: tweetID}
		}

		return nil, fmt.Errorf("failed to scan tweet: %w", err)
	}

	return tweet, nil
}

func (repo *TweetRepository) Find(ctx context.Context, tweetID string) (*contents.Tweet, error) {
	return repo.find(ctx, repo.db, tweetID)
}

func ownerFilter(ownerID string) sq.Sqlizer {
	if ownerID == "" {
		return sq.And{}
	}

	return sq.Eq{"t." + tweetFieldOwnerID: ownerID}
}

func (repo *TweetRepository) List(
	ctx context.Context,
	params *contents.ListTweetsParams,
) ([]*contents.TweetView, error) {
	query := sq.Select(prefixed("t", tweetColumns())...).
		Columns("u."+userFieldUsername, "u."+userFieldAvatarURL).
		Column(likesCountExpr(reactions.TargetTypeTweet, "t")).
		Column(hasLikedExpr(reactions.TargetTypeTweet, "t", params.ViewerID)).
		From(tableTweets + " t").
		Join(tableUsers + " u ON u." + userFieldID + " = t." + tweetFieldOwnerID).
		Where(ownerFilter(params.OwnerID)).
		OrderBy("t."+tweetFieldCreatedAt+" DESC", "t.rowid DESC").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset))

	query = query.RunWith(repo.db)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	defer closeRows(ctx, rows)

	tweets := make([]*contents.TweetView, 0)

	for rows.Next() {
		tweet, err := scanTweetView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tweet failed: %w", err)
		}

		tweets = append(tweets, tweet)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return tweets, nil
}

func (repo *TweetRepository) Count(ctx context.Context, ownerID string) (int, error) {
	q := sq.Select("COUNT(*)").
		From(tableTweets + " t").
		Join(tableUsers + " u ON u." + userFieldID + " = t." + tweetFieldOwnerID).
		Where(ownerFilter(ownerID)).
		RunWith(repo.db)

	var count int

	err := q.QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tweets: %w", err)
	}

	return count, nil
}

func (repo *TweetRepository) UpdateContent(
	ctx context.Context,
	params *contents.UpdateContentParams,
) (*contents.Tweet, error) {
	q := sq.Update(tableTweets).
		Set(tweetFieldContent, params.Content).
		Set(tweetFieldUpdatedAt, params.UpdatedAt.UTC()).
		Where(sq.Eq{
			tweetFieldID:      params.TweetID,
			tweetFieldOwnerID: params.OwnerID,
		}).
		Suffix("RETURNING " + strings.Join(tweetColumns(), ", ")).
		RunWith(repo.db)

	tweet, err := scanTweet(q.QueryRowContext(ctx))
	if err == nil {
		return tweet, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update tweet: %w", err)
	}

	_, err = repo.Find(ctx, params.TweetID)
	if err != nil {
		return nil, err
	}

	return nil, &contents.NotTweetOwnerError{TweetID: params.TweetID, UserID: params.OwnerID}
}

func (repo *TweetRepository) Delete(ctx context.Context, tweetID, ownerID string) (*contents.Tweet, error) {
	var deleted *contents.Tweet

	err := withTx(ctx, repo.db, func(tx *sql.Tx) error {
		tweet, err := repo.find(ctx, tx, tweetID)
		if err != nil {
			return err
		}

		if tweet.OwnerID != ownerID {
			return &contents.NotTweetOwnerError{TweetID: tweetID, UserID: ownerID}
		}

		_, err = sq.Delete(tableTweets).
			Where(sq.Eq{
				tweetFieldID:      tweetID,
				tweetFieldOwnerID: ownerID,
			}).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to exec delete: %w", err)
		}

		err = deleteLikesOf(ctx, tx, reactions.TargetTypeTweet, tweetID)
		if err != nil {
			return err
		}

		deleted = tweet

		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}
