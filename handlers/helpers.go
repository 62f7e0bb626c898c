package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/poker-leaderboard/leaderboard"
	"github.com/Dosada05/poker-leaderboard/services"
)

type jsonResponse map[string]interface{}

const maxBodyBytes = 1_048_576 // 1MB

var errInvalidJSON = errors.New("invalid JSON request body")

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBodyBytes))

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("%w (at character %d)", errInvalidJSON, syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errInvalidJSON
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// errorResponse пишет ошибку в формате {"ok":false,"error":"..."}.
func errorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, message string) {
	env := jsonResponse{"ok": false, "error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		logger.Error("failed to write error response", slog.String("path", r.URL.Path), slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	errorResponse(w, r, logger, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	errorResponse(w, r, logger, http.StatusBadRequest, err.Error())
}

// mapServiceErrorToHTTP преобразует ошибки движка и сервисов в HTTP-ответы.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, leaderboard.ErrEmptyBatch),
		errors.Is(err, leaderboard.ErrMalformedRow),
		errors.Is(err, leaderboard.ErrDuplicateInBatch),
		errors.Is(err, leaderboard.ErrUnknownFormat),
		errors.Is(err, leaderboard.ErrNoSeriesSelected):
		badRequestResponse(w, r, logger, err)

	case errors.Is(err, leaderboard.ErrUnknownSeries):
		errorResponse(w, r, logger, http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrStandingConflict):
		errorResponse(w, r, logger, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrPublishingDisabled):
		errorResponse(w, r, logger, http.StatusServiceUnavailable, err.Error())

	case errors.Is(err, leaderboard.ErrInternalConsistency):
		logger.Error("standings consistency violation", slog.String("path", r.URL.Path), slog.Any("error", err))
		errorResponse(w, r, logger, http.StatusInternalServerError, "Failed to save results.")

	default:
		serverErrorResponse(w, r, logger, err)
	}
}

// seriesParams собирает повторяющиеся параметры ?series=.
func seriesParams(r *http.Request) []string {
	var out []string
	for _, v := range r.URL.Query()["series"] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
