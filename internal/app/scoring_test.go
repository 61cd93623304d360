package app

import (
	"reflect"
	"testing"

	"rhel-assessment-service/internal/domain"
)

func scored(id, module string, correct int) domain.Question {
	return domain.Question{
		ID:                id,
		Module:            module,
		Options:           []string{"a", "b", "c", "d"},
		OptionSimulations: []string{"a", "b", "c", "d"},
		CorrectAnswer:     correct,
		Difficulty:        domain.DifficultySenior,
	}
}

func TestScoreOverallPercentage(t *testing.T) {
	questions := []domain.Question{
		scored("q1", "A", 1),
		scored("q2", "A", 0),
		scored("q3", "B", 2),
		scored("q4", "B", 1),
	}
	answers := map[string]int{"q1": 1, "q2": 2, "q3": 2}

	report := Score(questions, answers, ExactLabel)
	if report.Correct != 2 || report.Total != 4 || report.Percentage != 50 {
		t.Fatalf("expected 2/4 = 50%%, got %+v", report)
	}
}

func TestScoreGroupsPreserveFirstAppearance(t *testing.T) {
	questions := []domain.Question{
		scored("q1", "A", 0),
		scored("q2", "B", 0),
		scored("q3", "A", 0),
		scored("q4", "B", 0),
	}
	answers := map[string]int{"q1": 0, "q2": 0, "q3": 1, "q4": 0}

	report := Score(questions, answers, ExactLabel)
	want := []domain.GroupScore{
		{Key: "A", Label: "A", Correct: 1, Total: 2, Percentage: 50},
		{Key: "B", Label: "B", Correct: 2, Total: 2, Percentage: 100},
	}
	if !reflect.DeepEqual(report.Groups, want) {
		t.Fatalf("unexpected groups %+v", report.Groups)
	}
}

func TestScoreModulePrefixGrouping(t *testing.T) {
	questions := []domain.Question{
		scored("q1", "Troubleshooting: Performance (top, Load Average, atop)", 0),
		scored("q2", "Module 7: Control access to files (Permissions, ACLs, Sticky Bits, Immutability)", 0),
		scored("q3", "Troubleshooting: Bandwidth (iftop, iperf)", 0),
	}
	answers := map[string]int{"q1": 0, "q2": 0}

	report := Score(questions, answers, ModulePrefix)
	if len(report.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %+v", report.Groups)
	}
	first := report.Groups[0]
	if first.Key != "Troubleshooting" || first.Label != questions[0].Module || first.Percentage != 50 {
		t.Fatalf("unexpected first group %+v", first)
	}
	if report.Groups[1].Key != "Module 7" || report.Groups[1].Percentage != 100 {
		t.Fatalf("unexpected second group %+v", report.Groups[1])
	}
}

func TestScoreRoundsHalfUp(t *testing.T) {
	cases := []struct{ part, whole, want int }{
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5
		{5, 8, 63}, // 62.5
		{0, 5, 0},
		{7, 7, 100},
	}
	for _, c := range cases {
		if got := percent(c.part, c.whole); got != c.want {
			t.Fatalf("percent(%d, %d) = %d, want %d", c.part, c.whole, got, c.want)
		}
	}
}

func TestScoreIsPure(t *testing.T) {
	questions := []domain.Question{scored("q1", "A: x", 1), scored("q2", "B: y", 0)}
	answers := map[string]int{"q1": 1, "ghost": 2}

	first := Score(questions, answers, nil)
	second := Score(questions, answers, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("score not deterministic: %+v vs %+v", first, second)
	}
	if len(answers) != 2 || first.Correct != 1 {
		t.Fatalf("unexpected outcome %+v answers=%v", first, answers)
	}
}

func TestReviewMarksSelections(t *testing.T) {
	questions := []domain.Question{scored("q1", "A", 1), scored("q2", "A", 0)}
	items := Review(questions, map[string]int{"q1": 1})

	if len(items) != 2 {
		t.Fatalf("expected 2 review items, got %d", len(items))
	}
	if items[0].Selected == nil || *items[0].Selected != 1 || !items[0].Correct {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[1].Selected != nil || items[1].Correct {
		t.Fatalf("unanswered question should be unselected and incorrect: %+v", items[1])
	}
}
