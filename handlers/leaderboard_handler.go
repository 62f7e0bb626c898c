package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/Dosada05/poker-leaderboard/middleware"
	"github.com/Dosada05/poker-leaderboard/models"
	"github.com/Dosada05/poker-leaderboard/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var boardTemplate = template.Must(template.ParseFS(templateFS, "templates/board.html"))

type boardPage struct {
	Title          string
	Board          *services.BoardView
	PasswordHeader string
}

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
	logger             *slog.Logger
	title              string
}

func NewLeaderboardHandler(ls services.LeaderboardService, title string, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: ls,
		logger:             logger,
		title:              title,
	}
}

// Page отдаёт HTML-страницу таблицы лидеров.
func (h *LeaderboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	board, err := h.leaderboardService.Board(r.Context(), r.URL.Query().Get("series"))
	if err != nil {
		h.logger.Error("failed to load board", slog.Any("error", err))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html><body><h1>Failed to load tournament data.</h1></body></html>"))
		return
	}

	var buf bytes.Buffer
	page := boardPage{Title: h.title, Board: board, PasswordHeader: middleware.PasswordHeader}
	if err := boardTemplate.Execute(&buf, page); err != nil {
		h.logger.Error("failed to render board", slog.Any("error", err))
		http.Error(w, "Failed to render leaderboard.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// GetSeries godoc
// @Summary Список серий
// @Tags leaderboard
// @Description Серии, начиная с последней обновлённой, и серия по умолчанию.
// @Produce json
// @Param series query string false "Предпочтительная серия"
// @Success 200 {object} leaderboard.SeriesIndex
// @Router /api/series [get]
func (h *LeaderboardHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ix, err := h.leaderboardService.SeriesIndex(r.Context(), r.URL.Query().Get("series"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, ix, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// GetStandings godoc
// @Summary Таблица серии
// @Tags leaderboard
// @Produce json
// @Param series query string false "Серия (по умолчанию последняя обновлённая)"
// @Success 200 {object} services.RankingView
// @Failure 404 {object} map[string]interface{} "Серия не найдена"
// @Router /api/standings [get]
func (h *LeaderboardHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	view, err := h.leaderboardService.Ranking(r.Context(), r.URL.Query().Get("series"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// GetChart godoc
// @Summary График очков серии
// @Tags leaderboard
// @Produce png
// @Param series query string false "Серия"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]interface{} "Серия не найдена"
// @Router /api/standings/chart.png [get]
func (h *LeaderboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	png, err := h.leaderboardService.PointsChart(r.Context(), r.URL.Query().Get("series"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// SubmitResults godoc
// @Summary Добавить результаты турнира
// @Tags leaderboard
// @Description Принимает массив строк результата; пакет применяется целиком или отклоняется.
// @Accept json
// @Produce json
// @Param X-Results-Password header string false "Общий пароль, если он задан"
// @Param results body []models.RawResultRow true "Строки результата"
// @Success 200 {object} map[string]interface{} "ok, processed, created, updated"
// @Failure 400 {object} map[string]interface{} "Ошибка валидации"
// @Failure 401 {object} map[string]interface{} "Неверный пароль"
// @Failure 409 {object} map[string]interface{} "Конкурентное изменение"
// @Failure 429 {object} map[string]interface{} "Слишком много запросов"
// @Router /api/results [post]
func (h *LeaderboardHandler) SubmitResults(w http.ResponseWriter, r *http.Request) {
	var rows []models.RawResultRow
	if err := readJSON(w, r, &rows); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	res, err := h.leaderboardService.SubmitResults(r.Context(), rows)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	response := jsonResponse{
		"ok":        true,
		"processed": res.Processed,
		"created":   res.Created,
		"updated":   res.Updated,
		"series":    res.Series,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
