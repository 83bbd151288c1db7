package app

import (
	"context"
	"fmt"
	"time"

	"quiz-session-engine/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ResultStore keeps finalized results (grade history).
type ResultStore interface {
	// SaveResult must be idempotent per session token.
	SaveResult(ctx context.Context, result domain.Result) error
	ListResults(ctx context.Context, userID string) ([]domain.Result, error)
}

// QuizService contains the caller-facing quiz use cases. It resolves quiz content,
// enforces session ownership and delegates state transitions to the SessionManager.
type QuizService struct {
	sessions         *SessionManager
	quizzes          QuizRepository
	results          ResultStore
	defaultTimeLimit time.Duration
}

func NewQuizService(sessions *SessionManager, quizzes QuizRepository, results ResultStore, defaultTimeLimit time.Duration) *QuizService {
	return &QuizService{
		sessions:         sessions,
		quizzes:          quizzes,
		results:          results,
		defaultTimeLimit: defaultTimeLimit,
	}
}

// StartQuiz opens a session for userID over the current version of quizID.
func (s *QuizService) StartQuiz(ctx context.Context, quizID, userID string) (domain.SessionTicket, domain.PublicQuiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SessionTicket{}, domain.PublicQuiz{}, err
	}

	limit := quiz.TimeLimitSeconds
	if limit <= 0 {
		limit = int(s.defaultTimeLimit / time.Second)
	}

	ticket, err := s.sessions.CreateSession(ctx, SessionRequest{
		UserID:           userID,
		QuizID:           quiz.ID,
		Questions:        quiz.Questions,
		TimeLimitSeconds: limit,
	})
	if err != nil {
		return domain.SessionTicket{}, domain.PublicQuiz{}, err
	}

	questions, err := s.sessions.Questions(ctx, ticket.Token)
	if err != nil {
		return domain.SessionTicket{}, domain.PublicQuiz{}, err
	}
	return ticket, domain.PublicQuiz{
		ID:         quiz.ID,
		Title:      quiz.Title,
		Subject:    quiz.Subject,
		Topic:      quiz.Topic,
		Difficulty: quiz.Difficulty,
		Questions:  questions,
	}, nil
}

// SubmitAnswer records the caller's selection for a question.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID, token, questionID string, selectedIndex int) error {
	if err := s.authorize(token, userID); err != nil {
		return err
	}
	return s.sessions.SubmitAnswer(ctx, token, questionID, selectedIndex)
}

// Remaining returns the seconds left on the caller's active session.
func (s *QuizService) Remaining(ctx context.Context, userID, token string) (int, error) {
	if err := s.authorize(token, userID); err != nil {
		return 0, err
	}
	return s.sessions.GetRemainingSeconds(ctx, token)
}

// Submit finalizes the caller's session. Submitting an already finalized
// session returns the original result.
func (s *QuizService) Submit(ctx context.Context, userID, token string) (domain.Result, error) {
	if err := s.authorize(token, userID); err != nil {
		return domain.Result{}, err
	}
	return s.sessions.Finalize(ctx, token, domain.CauseManual)
}

// Session returns the caller's session view.
func (s *QuizService) Session(ctx context.Context, userID, token string) (domain.SessionView, error) {
	if err := s.authorize(token, userID); err != nil {
		return domain.SessionView{}, err
	}
	return s.sessions.Lookup(ctx, token)
}

// Questions returns the answer-free questions of the caller's session.
func (s *QuizService) Questions(ctx context.Context, userID, token string) ([]domain.PublicQuestion, error) {
	if err := s.authorize(token, userID); err != nil {
		return nil, err
	}
	return s.sessions.Questions(ctx, token)
}

// Done returns a channel closed once the caller's session finalizes.
func (s *QuizService) Done(_ context.Context, userID, token string) (<-chan struct{}, error) {
	if err := s.authorize(token, userID); err != nil {
		return nil, err
	}
	return s.sessions.Done(token)
}

// ListResults returns the caller's grade history, newest first.
func (s *QuizService) ListResults(ctx context.Context, userID string) ([]domain.Result, error) {
	results, err := s.results.ListResults(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

func (s *QuizService) authorize(token, userID string) error {
	owner, err := s.sessions.Owner(token)
	if err != nil {
		return err
	}
	if owner != userID {
		return domain.ErrForbidden
	}
	return nil
}
