package http

import (
	"log/slog"
	"net/http"

	"github.com/ironabhi05/scatch-backend/internal/service"
	"github.com/ironabhi05/scatch-backend/pkg/httputil"
	"github.com/ironabhi05/scatch-backend/pkg/validator"
)

// ChatHandler handles HTTP requests for the store assistant.
type ChatHandler struct {
	service *service.ChatService
	logger  *slog.Logger
}

// NewChatHandler creates a new chat HTTP handler.
func NewChatHandler(svc *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  logger,
	}
}

// ChatRequest is the JSON request body for a chat message.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=500"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Message handles POST /chat
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ChatRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, chatResponse{
		Reply: h.service.Reply(r.Context(), req.Message),
	})
}
