package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MrWong99/humanizer/internal/humanize"
	"github.com/MrWong99/humanizer/internal/observe"
)

type rootResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Note      string            `json:"note"`
	Endpoints map[string]string `json:"endpoints"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	note := "Contraction expansion and transitions"
	if s.Humanizer().Variant() == humanize.VariantFull {
		note = "Contraction expansion, transitions and POS-tagged synonym substitution ranked by embedding similarity"
	}
	writeJSON(w, http.StatusOK, rootResponse{
		Message: "Text Humanizer API",
		Version: Version,
		Note:    note,
		Endpoints: map[string]string{
			"/humanize":    "POST - Humanize text",
			"/humanize/ws": "GET - Humanize over WebSocket",
			"/health":      "GET - Health check",
		},
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Version: string(s.Humanizer().Variant()),
	})
}

func (s *Server) handleHumanize(w http.ResponseWriter, r *http.Request) {
	var req HumanizeRequest
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	audit, _ := strconv.ParseBool(r.URL.Query().Get("debug"))

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	resp, err := Process(ctx, s.Humanizer(), req, audit)
	if err != nil {
		status, detail := errorStatus(err)
		if status == http.StatusInternalServerError {
			observe.Logger(ctx).Error("humanize failed", "err", err)
		}
		writeError(w, status, detail)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// errorStatus maps a pipeline error onto an HTTP status and detail message.
func errorStatus(err error) (int, string) {
	if errors.Is(err, humanize.ErrEmptyText) {
		return http.StatusBadRequest, "Text cannot be empty"
	}
	return http.StatusInternalServerError, "Error processing text: " + err.Error()
}
