package web

import (
	"net/http"

	authcontext "github.com/nasermirzaei89/murmur/authentication/context"
	"github.com/nasermirzaei89/murmur/reactions"
)

type ToggleLikeResponse struct {
	Liked bool `json:"liked"`
}

func (h *Handler) HandleToggleLike(targetType reactions.TargetType) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		targetID, err := pathUUID(r, string(targetType)+"Id")
		if err != nil {
			writeError(w, r, err)

			return
		}

		liked, err := h.reactionsSvc.ToggleLike(r.Context(), reactions.ToggleLikeRequest{
			TargetType: targetType,
			TargetID:   targetID,
			UserID:     authcontext.GetSubject(r.Context()),
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		message := "Like removed successfully"
		if liked {
			message = "Liked successfully"
		}

		writeOK(w, r, message, &ToggleLikeResponse{Liked: liked})
	})
}
