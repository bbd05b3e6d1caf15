package web

import (
	"net/http"
	"time"

	authcontext "github.com/nasermirzaei89/murmur/authentication/context"
	"github.com/nasermirzaei89/murmur/discuss"
)

type OwnerResponse struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Video     *string   `json:"video,omitempty"`
	Tweet     *string   `json:"tweet,omitempty"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newCommentResponse(comment *discuss.Comment) *CommentResponse {
	return &CommentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		Video:     comment.Parent.VideoID(),
		Tweet:     comment.Parent.TweetID(),
		Owner:     comment.OwnerID,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

type CommentViewResponse struct {
	ID         string        `json:"id"`
	Content    string        `json:"content"`
	Video      *string       `json:"video,omitempty"`
	Tweet      *string       `json:"tweet,omitempty"`
	Owner      OwnerResponse `json:"owner"`
	LikesCount int           `json:"likesCount"`
	HasLiked   bool          `json:"hasLiked"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

type CommentPageResponse struct {
	Comments      []*CommentViewResponse `json:"comments"`
	TotalComments int                    `json:"totalComments"`
	Page          int                    `json:"page"`
	TotalPages    int                    `json:"totalPages"`
}

func newCommentPageResponse(page *discuss.CommentPage) *CommentPageResponse {
	res := &CommentPageResponse{
		Comments:      make([]*CommentViewResponse, 0, len(page.Comments)),
		TotalComments: page.TotalComments,
		Page:          page.Page,
		TotalPages:    page.TotalPages,
	}

	for _, comment := range page.Comments {
		res.Comments = append(res.Comments, &CommentViewResponse{
			ID:      comment.ID,
			Content: comment.Content,
			Video:   comment.Parent.VideoID(),
			Tweet:   comment.Parent.TweetID(),
			Owner: OwnerResponse{
				Username: comment.Owner.Username,
				Avatar:   comment.Owner.AvatarURL,
			},
			LikesCount: comment.LikesCount,
			HasLiked:   comment.HasLiked,
			CreatedAt:  comment.CreatedAt,
			UpdatedAt:  comment.UpdatedAt,
		})
	}

	return res
}

type ContentRequest struct {
	Content string `json:"content"`
}

func parentPathValue(kind discuss.ParentKind) string {
	return string(kind) + "Id"
}

// viewerID is empty for anonymous requests.
func viewerID(r *http.Request) string {
	if !isAuthenticated(r.Context()) {
		return ""
	}

	return authcontext.GetSubject(r.Context())
}

func (h *Handler) HandleListComments(kind discuss.ParentKind) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parentID, err := pathUUID(r, parentPathValue(kind))
		if err != nil {
			writeError(w, r, err)

			return
		}

		page, limit, err := pageParams(r)
		if err != nil {
			writeError(w, r, err)

			return
		}

		commentPage, err := h.discussSvc.ListComments(r.Context(), discuss.ListCommentsRequest{
			Parent:   discuss.ParentRef{Kind: kind, ID: parentID},
			Page:     page,
			Limit:    limit,
			ViewerID: viewerID(r),
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeOK(w, r, "Fetched comments successfully", newCommentPageResponse(commentPage))
	})
}

func (h *Handler) HandleAddComment(kind discuss.ParentKind) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parentID, err := pathUUID(r, parentPathValue(kind))
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

		comment, err := h.discussSvc.AddComment(r.Context(), discuss.AddCommentRequest{
			Parent:  discuss.ParentRef{Kind: kind, ID: parentID},
			OwnerID: authcontext.GetSubject(r.Context()),
			Content: req.Content,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusCreated, "Added comment successfully", newCommentResponse(comment))
	})
}

func (h *Handler) HandleUpdateComment() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		commentID, err := pathUUID(r, "commentId")
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

		comment, err := h.discussSvc.UpdateComment(r.Context(), discuss.UpdateCommentRequest{
			CommentID:   commentID,
			RequesterID: authcontext.GetSubject(r.Context()),
			Content:     req.Content,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeOK(w, r, "Updated the comment successfully", newCommentResponse(comment))
	})
}

func (h *Handler) HandleDeleteComment() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		commentID, err := pathUUID(r, "commentId")
		if err != nil {
			writeError(w, r, err)

			return
		}

		err = h.discussSvc.DeleteComment(r.Context(), discuss.DeleteCommentRequest{
			CommentID:   commentID,
			RequesterID: authcontext.GetSubject(r.Context()),
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeOK(w, r, "Comment deleted successfully", struct{}{})
	})
}
