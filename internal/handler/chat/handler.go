package chat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/zhouzirui/healthchat/internal/service/answer"
	"github.com/zhouzirui/healthchat/pkg/utils"
)

const maxBodyBytes = 64 << 10

// Answerer produces the reply for one question.
type Answerer interface {
	Reply(ctx context.Context, text, lang string) answer.Reply
}

// Handler serves the chat endpoints.
type Handler struct {
	answers Answerer
	ws      *WebSocketHandler
}

// New creates the chat handler.
func New(answers Answerer) *Handler {
	return &Handler{answers: answers, ws: NewWebSocketHandler(answers)}
}

// RegisterRoutes mounts POST /chat and GET /ws.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/ws", h.ws.handleWebSocket)
}

// request tolerates non-string fields; they are treated as absent.
type request struct {
	Message any `json:"message"`
	Lang    any `json:"lang"`
}

type response struct {
	Response string `json:"response"`
}

func (r request) fields() (string, string) {
	text, _ := r.Message.(string)
	lang, _ := r.Lang.(string)
	return text, lang
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload request
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&payload); err != nil && err != io.EOF {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text, lang := payload.fields()
	reply := h.answers.Reply(r.Context(), text, lang)
	hlog.FromRequest(r).Info().
		Str("lang", reply.Language).
		Str("source", string(reply.Source)).
		Str("key", reply.Match.Key).
		Msg("answered chat request")

	utils.RespondJSON(w, http.StatusOK, response{Response: reply.Text})
}
