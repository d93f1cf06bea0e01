package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/healthchat/internal/handler/chat"
	middlewarePkg "github.com/zhouzirui/healthchat/internal/middleware"
	"github.com/zhouzirui/healthchat/internal/service/answer"
	"github.com/zhouzirui/healthchat/pkg/utils"
)

// NewRouter wires HTTP routes to the answer service.
func NewRouter(answers *answer.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(log.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chat.New(answers).RegisterRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"entries": answers.Entries(),
		})
	})

	return r
}
