package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/poker-leaderboard/leaderboard"
	"github.com/Dosada05/poker-leaderboard/services"
)

type ExportHandler struct {
	exportService services.ExportService
	logger        *slog.Logger
}

func NewExportHandler(es services.ExportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: es,
		logger:        logger,
	}
}

type publishInput struct {
	Series []string `json:"series"`
	Format string   `json:"format"`
}

func formatParam(value string) (leaderboard.Format, error) {
	if value == "" {
		return leaderboard.FormatCSV, nil
	}
	return leaderboard.ParseFormat(value)
}

// Export godoc
// @Summary Выгрузка таблицы
// @Tags export
// @Produce text/csv,application/json,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param series query []string true "Серии (параметр можно повторять)" collectionFormat(multi)
// @Param format query string false "csv | json | xlsx (по умолчанию csv)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]interface{} "Неизвестный формат или не выбраны серии"
// @Failure 404 {object} map[string]interface{} "Серия не найдена"
// @Router /api/export [get]
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r.URL.Query().Get("format"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	payload, err := h.exportService.Export(r.Context(), seriesParams(r), format)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", payload.MediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payload.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload.Data)
}

// Publish godoc
// @Summary Опубликовать выгрузку в объектное хранилище
// @Tags export
// @Accept json
// @Produce json
// @Param X-Results-Password header string false "Общий пароль, если он задан"
// @Param input body publishInput true "Серии и формат"
// @Success 201 {object} storage.UploadResult
// @Failure 503 {object} map[string]interface{} "Публикация не настроена"
// @Router /api/export/publish [post]
func (h *ExportHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var input publishInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	format, err := formatParam(input.Format)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	res, err := h.exportService.Publish(r.Context(), input.Series, format)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"ok": true, "object": res}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}
