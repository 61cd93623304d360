package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rhel-assessment-service/internal/app"
	"rhel-assessment-service/internal/ticker"
)

type WSHandler struct {
	service        *app.AssessmentService
	logger         *zap.Logger
	statusInterval time.Duration
	upgrader       websocket.Upgrader
}

func NewWSHandler(service *app.AssessmentService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service:        service,
		logger:         logger,
		statusInterval: ticker.DefaultInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type registerPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type answerPayload struct {
	Index int `json:"index"`
}

type statusPayload struct {
	Message string `json:"message"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades the request and drives one assessment session over the
// connection. The session lives as long as the socket.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	opened := h.service.Open(ctx)
	sessionID := opened.SessionID
	log := h.logger.With(zap.String("session", sessionID))

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: toErrorPayload(err)})
		return
	}
	defer h.service.Close(ctx, sessionID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})
	var pending sync.WaitGroup

	push := func(typ string, payload any) {
		select {
		case send <- outboundMessage[any]{Type: typ, Payload: payload}:
		case <-closeSignals:
		}
	}
	fail := func(err error) {
		push("error", toErrorPayload(err))
	}

	// Single writer; every other goroutine goes through send.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				push("state", update)
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			if _, err := h.service.StartRegistration(ctx, sessionID); err != nil {
				fail(err)
			}
		case "register":
			var payload registerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push("error", errorPayload{Code: "bad_request", Message: "invalid register payload"})
				continue
			}
			// Generation runs off the read loop so input arriving meanwhile is
			// answered (and rejected) by the session.
			pending.Add(1)
			go func() {
				defer pending.Done()
				stop := ticker.Rotate(ctx, h.statusInterval, ticker.StatusMessages, func(msg string) {
					push("status", statusPayload{Message: msg})
				})
				_, err := h.service.Register(ctx, sessionID, payload.Name, payload.Email)
				stop()
				if err != nil {
					fail(err)
				}
			}()
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push("error", errorPayload{Code: "bad_request", Message: "invalid answer payload"})
				continue
			}
			if _, err := h.service.SelectAnswer(ctx, sessionID, payload.Index); err != nil {
				fail(err)
			}
		case "next":
			if _, err := h.service.Advance(ctx, sessionID); err != nil {
				fail(err)
			}
		case "previous":
			if _, err := h.service.Retreat(ctx, sessionID); err != nil {
				fail(err)
			}
		case "restart":
			if _, err := h.service.Restart(ctx, sessionID); err != nil {
				fail(err)
			}
		case "admin":
			if _, err := h.service.OpenArchive(ctx, sessionID); err != nil {
				fail(err)
				continue
			}
			h.pushResults(ctx, push, fail)
		case "exit_admin":
			if _, err := h.service.CloseArchive(ctx, sessionID); err != nil {
				fail(err)
			}
		case "results":
			h.pushResults(ctx, push, fail)
		case "clear_results":
			if err := h.service.ClearResults(ctx); err != nil {
				fail(err)
				continue
			}
			h.pushResults(ctx, push, fail)
		case "notification":
			n, err := h.service.Notification(ctx, sessionID)
			if err != nil {
				fail(err)
				continue
			}
			push("notification", n)
		default:
			push("error", errorPayload{Code: "bad_request", Message: "unsupported message type"})
		}
	}

	close(closeSignals)
	pending.Wait()
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) pushResults(ctx context.Context, push func(string, any), fail func(error)) {
	records, err := h.service.Results(ctx)
	if err != nil {
		fail(err)
		return
	}
	push("results", records)
}
