package domain

import "time"

// Difficulty tags a question with the seniority level it targets.
type Difficulty string

const (
	DifficultyJunior       Difficulty = "Junior"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultySenior       Difficulty = "Senior"
)

// Difficulties lists the accepted difficulty tags in ascending order.
var Difficulties = []Difficulty{DifficultyJunior, DifficultyIntermediate, DifficultySenior}

// Valid reports whether d is one of the known difficulty tags.
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// Status is the lifecycle position of a candidate session.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusRegistering Status = "registering"
	StatusGenerating  Status = "generating"
	StatusActive      Status = "active"
	StatusCompleted   Status = "completed"
	StatusAdminReview Status = "admin_review"
)

// Question models a scenario-based MCQ question. CorrectAnswer is a 0-based
// index into Options, and OptionSimulations has one entry per option.
type Question struct {
	ID                string     `json:"id" yaml:"id"`
	Module            string     `json:"module" yaml:"module"`
	Topic             string     `json:"topic" yaml:"topic"`
	Scenario          string     `json:"scenario" yaml:"scenario"`
	Prompt            string     `json:"question" yaml:"question"`
	Options           []string   `json:"options" yaml:"options"`
	OptionSimulations []string   `json:"optionSimulations" yaml:"optionSimulations"`
	CorrectAnswer     int        `json:"correctAnswer" yaml:"correctAnswer"`
	Explanation       string     `json:"explanation" yaml:"explanation"`
	Difficulty        Difficulty `json:"difficulty" yaml:"difficulty"`
}

// GenerationRequest is what a question source receives for one session.
type GenerationRequest struct {
	Count  int
	Topics []string
}

// GroupScore is the per-topic-group slice of a report.
type GroupScore struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Correct    int    `json:"correct"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

// Report is the scored outcome of one attempt.
type Report struct {
	Correct    int          `json:"correct"`
	Total      int          `json:"total"`
	Percentage int          `json:"percentage"`
	Groups     []GroupScore `json:"groups"`
}

// ReviewItem pairs a question with the candidate's choice for the results view.
type ReviewItem struct {
	Question Question `json:"question"`
	Selected *int     `json:"selected,omitempty"`
	Correct  bool     `json:"correct"`
}

// ResultRecord is the archived summary of one completed session. Records
// are never mutated once appended.
type ResultRecord struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Email             string         `json:"email"`
	Score             int            `json:"score"`
	Date              time.Time      `json:"date"`
	ModulePerformance map[string]int `json:"modulePerformance"`
}

// ResultSummary is the stable shape handed to the notification composer.
type ResultSummary struct {
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Percentage  int          `json:"percentage"`
	Correct     int          `json:"correct"`
	Total       int          `json:"total"`
	Groups      []GroupScore `json:"groups"`
	CompletedAt time.Time    `json:"completedAt"`
}

// Notification is a pre-filled message the candidate dispatches manually.
type Notification struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	MailtoURL string `json:"mailto"`
}

// QuestionView is a question as shown while the attempt is running: the
// correct answer and explanation stay hidden until completion.
type QuestionView struct {
	ID                string     `json:"id"`
	Module            string     `json:"module"`
	Topic             string     `json:"topic"`
	Scenario          string     `json:"scenario"`
	Prompt            string     `json:"question"`
	Options           []string   `json:"options"`
	OptionSimulations []string   `json:"optionSimulations"`
	Difficulty        Difficulty `json:"difficulty"`
}

// SessionView is the snapshot pushed to clients after every transition.
type SessionView struct {
	SessionID      string        `json:"sessionId"`
	Status         Status        `json:"status"`
	CandidateName  string        `json:"candidateName,omitempty"`
	CandidateEmail string        `json:"candidateEmail,omitempty"`
	CurrentIndex   int           `json:"currentIndex"`
	Total          int           `json:"total"`
	Question       *QuestionView `json:"question,omitempty"`
	Selected       *int          `json:"selected,omitempty"`
	Answered       int           `json:"answered"`
	StartedAt      *time.Time    `json:"startedAt,omitempty"`
	EndedAt        *time.Time    `json:"endedAt,omitempty"`
	Report         *Report       `json:"report,omitempty"`
	Tier           *Tier         `json:"tier,omitempty"`
	Review         []ReviewItem  `json:"review,omitempty"`
}

// Tier is the headline verdict shown next to an overall percentage.
type Tier struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
