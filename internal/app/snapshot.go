package app

import (
	"fmt"

	"quiz-session-engine/internal/domain"
)

// QuestionSet is the frozen copy of the questions assigned to a session.
// It shares no memory with the quiz it was built from.
type QuestionSet struct {
	questions []domain.Question
	index     map[string]int
}

// NewQuestionSet validates questions and deep-copies them into a QuestionSet.
func NewQuestionSet(questions []domain.Question) (QuestionSet, error) {
	if len(questions) == 0 {
		return QuestionSet{}, fmt.Errorf("%w: no questions", domain.ErrInvalidQuizDefinition)
	}

	set := QuestionSet{
		questions: make([]domain.Question, len(questions)),
		index:     make(map[string]int, len(questions)),
	}
	for i, q := range questions {
		if q.ID == "" {
			return QuestionSet{}, fmt.Errorf("%w: question %d has no id", domain.ErrInvalidQuizDefinition, i)
		}
		if _, dup := set.index[q.ID]; dup {
			return QuestionSet{}, fmt.Errorf("%w: duplicate question id %q", domain.ErrInvalidQuizDefinition, q.ID)
		}
		if len(q.Options) < 2 {
			return QuestionSet{}, fmt.Errorf("%w: question %q needs at least 2 options", domain.ErrInvalidQuizDefinition, q.ID)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return QuestionSet{}, fmt.Errorf("%w: question %q correct index %d out of range", domain.ErrInvalidQuizDefinition, q.ID, q.CorrectIndex)
		}
		set.questions[i] = cloneQuestion(q)
		set.index[q.ID] = i
	}
	return set, nil
}

// Len returns the number of questions.
func (s QuestionSet) Len() int {
	return len(s.questions)
}

// OptionCount returns the number of options of a question and whether it exists.
func (s QuestionSet) OptionCount(questionID string) (int, bool) {
	i, ok := s.index[questionID]
	if !ok {
		return 0, false
	}
	return len(s.questions[i].Options), true
}

// Questions returns a copy of the questions in original order.
func (s QuestionSet) Questions() []domain.Question {
	out := make([]domain.Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = cloneQuestion(q)
	}
	return out
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}
