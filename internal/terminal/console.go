// Package terminal is a line-oriented client for taking an assessment from a
// shell. It drives the same AssessmentService the websocket handler uses.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"rhel-assessment-service/internal/app"
	"rhel-assessment-service/internal/domain"
	"rhel-assessment-service/internal/ticker"
)

const banner = "VEPSUN TECHNOLOGIES :: RHEL 10 Enterprise Assessment"

// Console reads commands from in and renders session snapshots to out.
type Console struct {
	service        *app.AssessmentService
	in             *bufio.Scanner
	out            io.Writer
	logger         *zap.Logger
	TypeDelay      time.Duration
	StatusInterval time.Duration
}

func NewConsole(service *app.AssessmentService, in io.Reader, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		service:        service,
		in:             bufio.NewScanner(in),
		out:            out,
		logger:         logger,
		TypeDelay:      15 * time.Millisecond,
		StatusInterval: ticker.DefaultInterval,
	}
}

// errQuit ends the loop without reporting a failure.
var errQuit = errors.New("quit")

// Run opens a session and serves it until the user quits, input ends or ctx
// is canceled.
func (c *Console) Run(ctx context.Context) error {
	view := c.service.Open(ctx)
	defer c.service.Close(context.WithoutCancel(ctx), view.SessionID)

	if err := ticker.Typewrite(ctx, c.out, banner+"\n", c.TypeDelay); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch view.Status {
		case domain.StatusIdle:
			view, err = c.idle(ctx, view)
		case domain.StatusRegistering:
			view, err = c.register(ctx, view)
		case domain.StatusActive:
			view, err = c.active(ctx, view)
		case domain.StatusCompleted:
			view, err = c.completed(ctx, view)
		case domain.StatusAdminReview:
			view, err = c.archive(ctx, view)
		default:
			return fmt.Errorf("unexpected status %s", view.Status)
		}
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) idle(ctx context.Context, view domain.SessionView) (domain.SessionView, error) {
	c.printf("\n[1] Begin assessment  [2] Result archive  [q] Quit\n")
	switch line, err := c.prompt("> "); {
	case err != nil:
		return view, err
	case line == "1":
		return c.step(ctx, view, c.service.StartRegistration)
	case line == "2":
		return c.step(ctx, view, c.service.OpenArchive)
	case line == "q":
		return view, errQuit
	default:
		return view, nil
	}
}

func (c *Console) register(ctx context.Context, view domain.SessionView) (domain.SessionView, error) {
	name, err := c.prompt("Full name: ")
	if err != nil {
		return view, err
	}
	email, err := c.prompt("Email: ")
	if err != nil {
		return view, err
	}
	if _, err := mail.ParseAddress(email); err != nil || strings.TrimSpace(name) == "" {
		c.printf("A name and a valid email address are required.\n")
		return view, nil
	}

	stop := ticker.Rotate(ctx, c.StatusInterval, ticker.StatusMessages, func(msg string) {
		c.printf("  .. %s\n", msg)
	})
	next, err := c.service.Register(ctx, view.SessionID, name, email)
	stop()
	if err != nil {
		c.logger.Warn("registration failed", zap.Error(err))
		c.printf("Could not prepare the assessment: %v\n", err)
	}
	return next, nil
}

func (c *Console) active(ctx context.Context, view domain.SessionView) (domain.SessionView, error) {
	q := view.Question
	c.printf("\n[%d/%d] %s (%s)\n", view.CurrentIndex+1, view.Total, q.Module, q.Difficulty)
	c.printf("%s\n\n%s\n", q.Scenario, q.Prompt)
	for i, opt := range q.Options {
		mark := " "
		if view.Selected != nil && *view.Selected == i {
			mark = "*"
		}
		c.printf(" %s %d) %s\n", mark, i+1, opt)
	}
	if view.Selected != nil && *view.Selected < len(q.OptionSimulations) {
		c.printf("\n$ %s\n", q.OptionSimulations[*view.Selected])
	}
	c.printf("\n[1-%d] select  [n] next  [p] previous  [q] quit\n", len(q.Options))

	line, err := c.prompt("> ")
	if err != nil {
		return view, err
	}
	switch line {
	case "n":
		return c.step(ctx, view, c.service.Advance)
	case "p":
		return c.step(ctx, view, c.service.Retreat)
	case "q":
		return view, errQuit
	}
	choice, convErr := strconv.Atoi(line)
	if convErr != nil {
		return view, nil
	}
	next, err := c.service.SelectAnswer(ctx, view.SessionID, choice-1)
	if err != nil {
		c.printf("%v\n", err)
	}
	return next, nil
}

func (c *Console) completed(ctx context.Context, view domain.SessionView) (domain.SessionView, error) {
	report := view.Report
	c.printf("\n%s :: %d%% (%d/%d)\n", view.CandidateName, report.Percentage, report.Correct, report.Total)
	if view.Tier != nil {
		c.printf("%s. %s\n", view.Tier.Title, view.Tier.Description)
	}
	for _, g := range report.Groups {
		c.printf("  %-60s %3d%%\n", g.Label, g.Percentage)
	}
	c.printf("\n[v] review answers  [m] mail transcript  [r] restart  [q] quit\n")

	line, err := c.prompt("> ")
	if err != nil {
		return view, err
	}
	switch line {
	case "v":
		c.review(view.Review)
	case "m":
		n, err := c.service.Notification(ctx, view.SessionID)
		if err != nil {
			c.printf("%v\n", err)
			break
		}
		c.printf("\nTo: %s\nSubject: %s\n\n%s\n\n%s\n", n.Recipient, n.Subject, n.Body, n.MailtoURL)
	case "r":
		return c.step(ctx, view, c.service.Restart)
	case "q":
		return view, errQuit
	}
	return view, nil
}

func (c *Console) review(items []domain.ReviewItem) {
	for i, item := range items {
		verdict := "skipped"
		if item.Selected != nil {
			verdict = "wrong"
			if item.Correct {
				verdict = "correct"
			}
		}
		q := item.Question
		c.printf("\n%d. %s [%s]\n", i+1, q.Prompt, verdict)
		c.printf("   answer: %s\n   %s\n", q.Options[q.CorrectAnswer], q.Explanation)
	}
}

func (c *Console) archive(ctx context.Context, view domain.SessionView) (domain.SessionView, error) {
	records, err := c.service.Results(ctx)
	if err != nil {
		return view, err
	}
	if len(records) == 0 {
		c.printf("\nNo archived results.\n")
	}
	for _, r := range records {
		c.printf("%s  %-24s %-32s %3d%%\n", r.Date.Format("2006-01-02 15:04"), r.Name, r.Email, r.Score)
	}
	c.printf("\n[c] clear archive  [b] back\n")

	line, err := c.prompt("> ")
	if err != nil {
		return view, err
	}
	switch line {
	case "c":
		if err := c.service.ClearResults(ctx); err != nil {
			c.printf("%v\n", err)
		}
	case "b":
		return c.step(ctx, view, c.service.CloseArchive)
	}
	return view, nil
}

func (c *Console) step(ctx context.Context, view domain.SessionView, fn func(context.Context, string) (domain.SessionView, error)) (domain.SessionView, error) {
	next, err := fn(ctx, view.SessionID)
	if err != nil {
		c.printf("%v\n", err)
	}
	return next, nil
}

func (c *Console) prompt(label string) (string, error) {
	c.printf("%s", label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
