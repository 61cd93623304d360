package app

import (
	"strings"

	"rhel-assessment-service/internal/domain"
)

// GroupKeyFunc derives the aggregation bucket from a question's module label.
type GroupKeyFunc func(label string) string

// ModulePrefix keys a label by the text before its first ':'
// ("Module 7: Control access..." -> "Module 7"). Labels without ':' are used whole.
func ModulePrefix(label string) string {
	if i := strings.Index(label, ":"); i >= 0 {
		return strings.TrimSpace(label[:i])
	}
	return label
}

// ExactLabel keys a label by itself.
func ExactLabel(label string) string { return label }

// Score grades answers against questions. Unanswered questions count as
// incorrect; answers for unknown ids are ignored. Groups come out in order of
// first appearance and keep the first label seen for their key.
func Score(questions []domain.Question, answers map[string]int, groupKey GroupKeyFunc) domain.Report {
	if groupKey == nil {
		groupKey = ModulePrefix
	}

	report := domain.Report{Total: len(questions)}
	index := make(map[string]int)
	for _, q := range questions {
		key := groupKey(q.Module)
		gi, ok := index[key]
		if !ok {
			gi = len(report.Groups)
			index[key] = gi
			report.Groups = append(report.Groups, domain.GroupScore{Key: key, Label: q.Module})
		}
		report.Groups[gi].Total++

		if selected, answered := answers[q.ID]; answered && selected == q.CorrectAnswer {
			report.Correct++
			report.Groups[gi].Correct++
		}
	}

	report.Percentage = percent(report.Correct, report.Total)
	for i := range report.Groups {
		report.Groups[i].Percentage = percent(report.Groups[i].Correct, report.Groups[i].Total)
	}
	return report
}

// percent is round-half-up of 100*part/whole on the exact rational.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}

// Review pairs every question with the candidate's selection.
func Review(questions []domain.Question, answers map[string]int) []domain.ReviewItem {
	items := make([]domain.ReviewItem, 0, len(questions))
	for _, q := range questions {
		item := domain.ReviewItem{Question: q}
		if selected, ok := answers[q.ID]; ok {
			selected := selected
			item.Selected = &selected
			item.Correct = selected == q.CorrectAnswer
		}
		items = append(items, item)
	}
	return items
}
