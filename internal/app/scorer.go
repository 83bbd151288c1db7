package app

import "quiz-session-engine/internal/domain"

// Score grades answers against questions. It is pure: the same inputs always
// produce the same report. Answers must only reference IDs present in questions.
func Score(questions []domain.Question, answers map[string]int) domain.ScoreReport {
	report := domain.ScoreReport{
		Total:   len(questions),
		Results: make([]domain.QuestionResult, 0, len(questions)),
	}

	for _, q := range questions {
		result := domain.QuestionResult{
			QuestionID:    q.ID,
			Prompt:        q.Prompt,
			Options:       append([]string(nil), q.Options...),
			SelectedIndex: domain.Unanswered,
			CorrectIndex:  q.CorrectIndex,
			Explanation:   q.Explanation,
			Source:        q.Source,
		}
		if selected, ok := answers[q.ID]; ok {
			result.SelectedIndex = selected
			result.Correct = selected == q.CorrectIndex
		}
		if result.Correct {
			report.Correct++
		}
		report.Results = append(report.Results, result)
	}

	report.Percentage = Percentage(report.Correct, report.Total)
	report.Performance = PerformanceFor(report.Percentage)
	return report
}

// PerformanceFor buckets a percentage into a feedback band.
func PerformanceFor(percentage int) domain.Performance {
	switch {
	case percentage >= 90:
		return domain.PerformanceExcellent
	case percentage >= 70:
		return domain.PerformanceGood
	case percentage >= 50:
		return domain.PerformanceFair
	default:
		return domain.PerformanceNeedsPractice
	}
}

// Percentage returns correct/total*100 rounded half up, or 0 when total is 0.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	// floor(100c/t + 1/2) in integer arithmetic
	return (200*correct + total) / (2 * total)
}

func cloneResult(r domain.Result) domain.Result {
	results := make([]domain.QuestionResult, len(r.Report.Results))
	for i, qr := range r.Report.Results {
		qr.Options = append([]string(nil), qr.Options...)
		results[i] = qr
	}
	r.Report.Results = results
	return r
}
