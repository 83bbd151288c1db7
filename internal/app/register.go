package app

// AnswerRegister maps question IDs to the selected option index for one session.
// It does no locking of its own; the owning Session serializes access.
type AnswerRegister struct {
	answers map[string]int
}

func NewAnswerRegister() *AnswerRegister {
	return &AnswerRegister{answers: make(map[string]int)}
}

// Upsert records a selection, replacing any earlier one for the same question.
func (r *AnswerRegister) Upsert(questionID string, selectedIndex int) {
	r.answers[questionID] = selectedIndex
}

// Snapshot returns a copy of the current selections.
func (r *AnswerRegister) Snapshot() map[string]int {
	out := make(map[string]int, len(r.answers))
	for k, v := range r.answers {
		out[k] = v
	}
	return out
}

func (r *AnswerRegister) Len() int {
	return len(r.answers)
}
