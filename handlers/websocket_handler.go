package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Dosada05/poker-leaderboard/hub"
	"github.com/Dosada05/poker-leaderboard/leaderboard"
)

type WebSocketHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler разрешает подключения только с allowedOrigins;
// пустой список или "*" пропускает любой Origin.
func NewWebSocketHandler(h *hub.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if len(set) == 0 {
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeWs подписывает клиента на обновления серии: /ws/series/{series}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	series := chi.URLParam(r, "series")
	if unescaped, err := url.PathUnescape(series); err == nil {
		series = unescaped
	}
	room := leaderboard.SeriesKey(series)
	if room == "" {
		errorResponse(w, r, h.logger, http.StatusBadRequest, "missing series")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже отправил HTTP-ошибку клиенту.
		h.logger.Warn("websocket upgrade failed", slog.String("series", series), slog.Any("error", err))
		return
	}

	client := hub.NewClient(h.hub, conn, room)
	if !h.hub.Register(r.Context(), client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
