package httpapi

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/egovle/sevasetu/internal/domain/notification"
)

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 50, 200)
	auth := authUserFromContext(r.Context())
	notifications, err := s.notifySvc.ListForUser(r.Context(), auth.UserID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"notifications": notifications})
}

// sseEndpoint streams notifications for the authenticated user over
// server-sent events. The connection stays open until the client drops
// or the server shuts down.
func (s *Server) sseEndpoint(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "streaming not supported")
		return
	}

	auth := authUserFromContext(r.Context())
	userID := auth.UserID.String()
	client := notification.NewSSEClient(uuid.New().String(), &userID)
	s.sseHub.Register(client)
	defer s.sseHub.Unregister(client.ClientID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-client.MessageChan:
			if !open {
				return
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", msg.ID, msg.Event, msg.Data)
			flusher.Flush()
		}
	}
}
