package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/MrWong99/humanizer/internal/observe"
)

// StreamRequest is one WebSocket message from the client. ID is echoed in
// the matching [StreamResponse].
type StreamRequest struct {
	ID    string `json:"id,omitempty"`
	Debug bool   `json:"debug,omitempty"`
	HumanizeRequest
}

// StreamResponse is one WebSocket message to the client. On failure
// HumanizeResponse is nil and Status and Detail carry what POST /humanize
// would have answered.
type StreamResponse struct {
	ID string `json:"id,omitempty"`
	*HumanizeResponse
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// handleStream serves /humanize/ws. Messages on one connection are handled
// in order; a bad message gets an error response and the connection stays
// open.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != "" && !s.originAllowed(origin) {
		writeError(w, http.StatusForbidden, "Origin not allowed")
		return
	}

	// The origin was checked above against the configured CORS list.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		observe.Logger(r.Context()).Debug("websocket accept failed", "err", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(s.maxBodyBytes)

	ctx := r.Context()
	log := observe.Logger(ctx)
	s.metrics.ActiveStreams.Add(ctx, 1)
	defer s.metrics.ActiveStreams.Add(context.WithoutCancel(ctx), -1)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				log.Debug("websocket read ended", "err", err)
			}
			return
		}

		resp := s.streamMessage(ctx, typ, data)
		if err := wsjson.Write(ctx, conn, resp); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Debug("websocket write failed", "err", err)
			}
			return
		}
	}
}

func (s *Server) streamMessage(ctx context.Context, typ websocket.MessageType, data []byte) StreamResponse {
	if typ != websocket.MessageText {
		return StreamResponse{Status: http.StatusBadRequest, Detail: "Expected a text message"}
	}

	var req StreamRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return StreamResponse{Status: http.StatusBadRequest, Detail: fmt.Sprintf("Invalid request body: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	resp, err := Process(ctx, s.Humanizer(), req.HumanizeRequest, req.Debug)
	if err != nil {
		status, detail := errorStatus(err)
		return StreamResponse{ID: req.ID, Status: status, Detail: detail}
	}
	return StreamResponse{ID: req.ID, HumanizeResponse: &resp, Status: http.StatusOK}
}
