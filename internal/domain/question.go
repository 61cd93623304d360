package domain

import "fmt"

// Validate checks the per-question invariants: options and simulations line
// up, the correct answer is in bounds and the difficulty is known.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: question without id", ErrMalformedResponse)
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("%w: question %s has no options", ErrMalformedResponse, q.ID)
	}
	if len(q.Options) != len(q.OptionSimulations) {
		return fmt.Errorf("%w: question %s has %d options but %d simulations",
			ErrMalformedResponse, q.ID, len(q.Options), len(q.OptionSimulations))
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("%w: question %s correct answer %d out of range",
			ErrMalformedResponse, q.ID, q.CorrectAnswer)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("%w: question %s has unknown difficulty %q", ErrMalformedResponse, q.ID, q.Difficulty)
	}
	return nil
}

// ValidateQuestionSet rejects empty sets, duplicate ids and any question that
// fails Validate. All failures wrap ErrMalformedResponse.
func ValidateQuestionSet(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: empty question set", ErrMalformedResponse)
	}
	seen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %s", ErrMalformedResponse, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

// View strips the answer key from q.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:                q.ID,
		Module:            q.Module,
		Topic:             q.Topic,
		Scenario:          q.Scenario,
		Prompt:            q.Prompt,
		Options:           q.Options,
		OptionSimulations: q.OptionSimulations,
		Difficulty:        q.Difficulty,
	}
}
