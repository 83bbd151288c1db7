package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/domain"
)

// WSHandler streams one session to its owner: a countdown while it is active
// and the result once it finalizes, whichever way that happens.
type WSHandler struct {
	service  *app.QuizService
	logger   *zap.Logger
	tick     time.Duration
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
		tick:    time.Second,
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

type answerPayload struct {
	QuestionID    string `json:"questionId"`
	SelectedIndex *int   `json:"selectedIndex"`
}

type answerAccepted struct {
	QuestionID    string `json:"questionId"`
	SelectedIndex int    `json:"selectedIndex"`
}

type joinedPayload struct {
	Session   domain.SessionView      `json:"session"`
	Questions []domain.PublicQuestion `json:"questions"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades an authenticated request for ?token= into a live session channel.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := r.URL.Query().Get("token")
	userID, ok := UserIDFrom(ctx)
	if token == "" || !ok {
		http.Error(w, "missing token", http.StatusBadRequest)
		return
	}

	view, err := h.service.Session(ctx, userID, token)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	questions, err := h.service.Questions(ctx, userID, token)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	done, err := h.service.Done(ctx, userID, token)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	clockDone := make(chan struct{})

	push := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}

	// single writer; gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write failed", zap.Error(err))
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{Session: view, Questions: questions}}

	go func() {
		defer close(clockDone)
		ticker := time.NewTicker(h.tick)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				final, err := h.service.Session(ctx, userID, token)
				if err == nil && final.Result != nil {
					push(outboundMessage[any]{Type: "result", Payload: final.Result})
				}
				return
			case <-ticker.C:
				remaining, err := h.service.Remaining(ctx, userID, token)
				if err != nil {
					// finalized; done is about to close
					continue
				}
				push(outboundMessage[any]{Type: "remaining", Payload: remainingResponse{RemainingSeconds: remaining}})
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
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.SelectedIndex == nil {
				push(errorMessage("invalid answer payload"))
				continue
			}
			if err := h.service.SubmitAnswer(ctx, userID, token, payload.QuestionID, *payload.SelectedIndex); err != nil {
				push(errorMessage(err.Error()))
				continue
			}
			push(outboundMessage[any]{Type: "answerAccepted", Payload: answerAccepted{
				QuestionID:    payload.QuestionID,
				SelectedIndex: *payload.SelectedIndex,
			}})
		case "submit":
			// the result is pushed by the done watcher
			if _, err := h.service.Submit(ctx, userID, token); err != nil {
				push(errorMessage(err.Error()))
			}
		default:
			push(errorMessage("unsupported message type"))
		}
	}

	close(closeSignals)
	<-clockDone
	close(send)
	<-writerDone
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
