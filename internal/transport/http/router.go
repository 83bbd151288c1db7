package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz-session-engine/internal/app"
)

// NewRouter wires the REST API, the live session websocket and operational endpoints.
// metrics may be nil.
func NewRouter(service *app.QuizService, jwtSecret string, logger *zap.Logger, metrics http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	rest := NewRESTHandler(service, logger)
	api := r.Group("/api", Authenticate(jwtSecret))
	api.POST("/quiz/:quizId/start", rest.StartQuiz)
	api.GET("/quiz/session/:token", rest.Session)
	api.POST("/quiz/session/:token/answer", rest.SubmitAnswer)
	api.GET("/quiz/session/:token/remaining", rest.Remaining)
	api.POST("/quiz/session/:token/submit", rest.Submit)
	api.GET("/my-results", rest.ListResults)

	ws := NewWSHandler(service, logger)
	r.GET("/ws", Authenticate(jwtSecret), gin.WrapF(ws.ServeWS))
	return r
}
