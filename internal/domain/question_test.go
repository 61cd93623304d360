package domain

import (
	"errors"
	"testing"
)

func validQuestion(id string) Question {
	return Question{
		ID:                id,
		Module:            "Module 9: Control services and daemons (systemd)",
		Prompt:            "Which command restarts sshd?",
		Options:           []string{"a", "b", "c", "d"},
		OptionSimulations: []string{"$ a", "$ b", "$ c", "$ d"},
		CorrectAnswer:     2,
		Difficulty:        DifficultyIntermediate,
	}
}

func TestValidateQuestionSet(t *testing.T) {
	if err := ValidateQuestionSet([]Question{validQuestion("q1"), validQuestion("q2")}); err != nil {
		t.Fatalf("expected valid set, got %v", err)
	}

	mismatched := validQuestion("q1")
	mismatched.OptionSimulations = mismatched.OptionSimulations[:3]
	outOfRange := validQuestion("q1")
	outOfRange.CorrectAnswer = 4
	negative := validQuestion("q1")
	negative.CorrectAnswer = -1
	badDifficulty := validQuestion("q1")
	badDifficulty.Difficulty = "Guru"

	cases := map[string][]Question{
		"empty":          nil,
		"mismatched":     {mismatched},
		"out of range":   {outOfRange},
		"negative":       {negative},
		"bad difficulty": {badDifficulty},
		"duplicate ids":  {validQuestion("q1"), validQuestion("q1")},
		"missing id":     {validQuestion("")},
	}
	for name, set := range cases {
		if err := ValidateQuestionSet(set); !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("%s: expected malformed response, got %v", name, err)
		}
	}
}

func TestTierFor(t *testing.T) {
	cases := map[int]string{
		100: "Architect Mastery",
		90:  "Architect Mastery",
		89:  "Lead Professional",
		70:  "Lead Professional",
		50:  "Competent Administrator",
		49:  "Developing Associate",
		0:   "Developing Associate",
	}
	for pct, want := range cases {
		if got := TierFor(pct).Title; got != want {
			t.Fatalf("tier for %d: expected %q, got %q", pct, want, got)
		}
	}
}

func TestViewHidesAnswerKey(t *testing.T) {
	q := validQuestion("q1")
	q.Explanation = "systemctl restart sshd"
	view := q.View()
	if view.ID != q.ID || len(view.Options) != 4 {
		t.Fatalf("unexpected view %+v", view)
	}
}
