package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	authcontext "github.com/nasermirzaei89/murmur/authentication/context"
	"github.com/nasermirzaei89/murmur/contents"
)

const (
	tweetImageField = "tweetImage"

	maxMultipartMemory = 1 << 20
	maxTweetBodySize   = contents.MaxImageSize + 1<<20
)

type TweetResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newTweetResponse(tweet *contents.Tweet) *TweetResponse {
	return &TweetResponse{
		ID:        tweet.ID,
		Content:   tweet.Content,
		Image:     tweet.ImageURL,
		Owner:     tweet.OwnerID,
		CreatedAt: tweet.CreatedAt,
		UpdatedAt: tweet.UpdatedAt,
	}
}

type TweetViewResponse struct {
	ID         string        `json:"id"`
	Content    string        `json:"content"`
	Image      string        `json:"image,omitempty"`
	Owner      OwnerResponse `json:"owner"`
	LikesCount int           `json:"likesCount"`
	HasLiked   bool          `json:"hasLiked"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

type TweetPageResponse struct {
	Tweets      []*TweetViewResponse `json:"tweets"`
	TotalTweets int                  `json:"totalTweets"`
	Page        int                  `json:"page"`
	TotalPages  int                  `json:"totalPages"`
}

func newTweetPageResponse(page *contents.TweetPage) *TweetPageResponse {
	res := &TweetPageResponse{
		Tweets:      make([]*TweetViewResponse, 0, len(page.Tweets)),
		TotalTweets: page.TotalTweets,
		Page:        page.Page,
		TotalPages:  page.TotalPages,
	}

	for _, tweet := range page.Tweets {
		res.Tweets = append(res.Tweets, &TweetViewResponse{
			ID:      tweet.ID,
			Content: tweet.Content,
			Image:   tweet.ImageURL,
			Owner: OwnerResponse{
				Username: tweet.Owner.Username,
				Avatar:   tweet.Owner.AvatarURL,
			},
			LikesCount: tweet.LikesCount,
			HasLiked:   tweet.HasLiked,
			CreatedAt:  tweet.CreatedAt,
			UpdatedAt:  tweet.UpdatedAt,
		})
	}

	return res
}

func (h *Handler) HandleListTweets() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, limit, err := pageParams(r)
		if err != nil {
			writeError(w, r, err)

			return
		}

		tweetPage, err := h.contentsSvc.ListTweets(r.Context(), contents.ListTweetsRequest{
			Page:     page,
			Limit:    limit,
			ViewerID: viewerID(r),
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeOK(w, r, "Fetched tweets successfully", newTweetPageResponse(tweetPage))
	})
}

func (h *Handler) HandleListUserTweets() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathUUID(r, "userId")
		if err != nil {
			writeError(w, r, err)

			return
		}

		page, limit, err := pageParams(r)
		if err != nil {
			writeError(w, r, err)

			return
		}

		tweetPage, err := h.contentsSvc.ListUserTweets(r.Context(), contents.ListTweetsRequest{
			OwnerID:  userID,
			Page:     page,
			Limit:    limit,
			ViewerID: viewerID(r),
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeOK(w, r, "Fetched user tweets successfully", newTweetPageResponse(tweetPage))
	})
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))

	return err == nil && mediaType == "multipart/form-data"
}

// readTweetForm reads the content and the optional image of a multipart create request. The returned file, when not
// nil, must be closed by the caller.
func readTweetForm(w http.ResponseWriter, r *http.Request) (string, *contents.ImageUpload, multipart.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTweetBodySize)

	err := r.ParseMultipartForm(maxMultipartMemory)
	if err != nil {
		return "", nil, nil, &BadRequestError{Reason: "invalid multipart form: " + err.Error()}
	}

	content := r.FormValue("content")

	file, header, err := r.FormFile(tweetImageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return content, nil, nil, nil
		}

		return "", nil, nil, &BadRequestError{Reason: fmt.Sprintf("invalid %s: %s", tweetImageField, err)}
	}

	contentType, err := sniffContentType(file)
	if err != nil {
		_ = file.Close()

		return "", nil, nil, fmt.Errorf("failed to read %s: %w", tweetImageField, err)
	}

	image := &contents.ImageUpload{
		Reader:      file,
		Size:        header.Size,
		ContentType: contentType,
	}

	return content, image, file, nil
}

// sniffContentType detects the type from the file content instead of trusting the client supplied header.
func sniffContentType(file multipart.File) (string, error) {
	buf := make([]byte, 512)

	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}

	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return "", err
	}

	return http.DetectContentType(buf[:n]), nil
}

func (h *Handler) HandleCreateTweet() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			content string
			image   *contents.ImageUpload
		)

		if isMultipart(r) {
			var (
				file multipart.File
				err  error
			)

			content, image, file, err = readTweetForm(w, r)
			if err != nil {
				writeError(w, r, err)

				return
			}

			if file != nil {
				defer func() {
					err := file.Close()
					if err != nil {
						slog.ErrorContext(r.Context(), "failed to close uploaded file", "error", err)
					}
				}()
			}
		} else {
			var req ContentRequest

			err := decodeJSON(w, r, &req)
			if err != nil {
				writeError(w, r, err)

				return
			}

			content = req.Content
		}

		tweet, err := h.contentsSvc.CreateTweet(r.Context(), contents.CreateTweetRequest{
			OwnerID: authcontext.GetSubject(r.Context()),
			Content: content,
			Image:   image,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusCreated, "Tweet created successfully", newTweetResponse(tweet))
	})
}

func (h *Handler) HandleUpdateTweet() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tweetID, err := pathUUID(r, "tweetId")
		if err != nil {
			writeError(w, r, err)

			return
		}

		var req ContentRequest

		err = decodeJSON(w, r, &req)
		if err != nil {
			writeError(w, r, err)

			return
		}

		tweet, err := h.contentsSvc.UpdateTweet(r.Context(), contents.UpdateTweetRequest{
			TweetID:     tweetID,
			RequesterID: authcontext.GetSubject(r.Context()),
			Content:     req.Content,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeOK(w, r, "Tweet updated successfully", newTweetResponse(tweet))
	})
}

func (h *Handler) HandleDeleteTweet() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tweetID, err := pathUUID(r, "tweetId")
		if err != nil {
			writeError(w, r, err)

			return
		}

		err = h.contentsSvc.DeleteTweet(r.Context(), contents.DeleteTweetRequest{
			TweetID:     tweetID,
			RequesterID: authcontext.GetSubject(r.Context()),
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeOK(w, r, "Tweet deleted successfully", struct{}{})
	})
}
