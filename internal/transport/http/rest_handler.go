package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/domain"
)

type RESTHandler struct {
	service *app.QuizService
	logger  *zap.Logger
}

func NewRESTHandler(service *app.QuizService, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{service: service, logger: logger}
}

type startResponse struct {
	SessionToken string            `json:"session_token"`
	TimeLimit    int               `json:"time_limit"`
	ExpiresAt    time.Time         `json:"expires_at"`
	Quiz         domain.PublicQuiz `json:"quiz"`
}

type answerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     *int   `json:"answer" binding:"required"`
}

type remainingResponse struct {
	RemainingSeconds int `json:"remaining_seconds"`
}

type resultResponse struct {
	domain.Result
	Score          int                `json:"score"`
	CorrectAnswers int                `json:"correct_answers"`
	TotalQuestions int                `json:"total_questions"`
	Performance    domain.Performance `json:"performance"`
}

func newResultResponse(r domain.Result) resultResponse {
	return resultResponse{
		Result:         r,
		Score:          r.Report.Percentage,
		CorrectAnswers: r.Report.Correct,
		TotalQuestions: r.Report.Total,
		Performance:    r.Report.Performance,
	}
}

func (h *RESTHandler) StartQuiz(c *gin.Context) {
	userID, _ := UserIDFrom(c.Request.Context())
	ticket, quiz, err := h.service.StartQuiz(c.Request.Context(), c.Param("quizId"), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, startResponse{
		SessionToken: ticket.Token,
		TimeLimit:    ticket.TimeLimitSeconds,
		ExpiresAt:    ticket.ExpiresAt,
		Quiz:         quiz,
	})
}

func (h *RESTHandler) Session(c *gin.Context) {
	userID, _ := UserIDFrom(c.Request.Context())
	view, err := h.service.Session(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RESTHandler) SubmitAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid answer payload"})
		return
	}
	userID, _ := UserIDFrom(c.Request.Context())
	if err := h.service.SubmitAnswer(c.Request.Context(), userID, c.Param("token"), req.QuestionID, *req.Answer); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RESTHandler) Remaining(c *gin.Context) {
	userID, _ := UserIDFrom(c.Request.Context())
	remaining, err := h.service.Remaining(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, remainingResponse{RemainingSeconds: remaining})
}

func (h *RESTHandler) Submit(c *gin.Context) {
	userID, _ := UserIDFrom(c.Request.Context())
	result, err := h.service.Submit(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newResultResponse(result))
}

func (h *RESTHandler) ListResults(c *gin.Context) {
	userID, _ := UserIDFrom(c.Request.Context())
	results, err := h.service.ListResults(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]resultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, newResultResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

func (h *RESTHandler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuizDefinition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionAlreadyFinalized):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownQuestion), errors.Is(err, domain.ErrInvalidOptionIndex):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
