package app

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"rhel-assessment-service/internal/domain"
)

// ComposeNotification renders the transcript a candidate mails to recipient.
func ComposeNotification(recipient string, summary domain.ResultSummary) domain.Notification {
	subject := fmt.Sprintf("[VEPSUN-RHEL10] %s Performance Score: %d%%", summary.Name, summary.Percentage)

	var b strings.Builder
	b.WriteString("VEPSUN TECHNOLOGIES ASSESSMENT RECORD\n")
	b.WriteString("--------------------------------------\n")
	fmt.Fprintf(&b, "Candidate Identity: %s\n", summary.Name)
	fmt.Fprintf(&b, "Email Endpoint: %s\n", summary.Email)
	fmt.Fprintf(&b, "Aggregate Score: %d%%\n", summary.Percentage)
	fmt.Fprintf(&b, "Technical Accuracy: %d/%d\n", summary.Correct, summary.Total)
	fmt.Fprintf(&b, "Verified Date: %s\n", summary.CompletedAt.UTC().Format(time.RFC1123))
	b.WriteString("\nModule Deep Dive Analysis:\n")
	for _, g := range summary.Groups {
		fmt.Fprintf(&b, "- %s: %d%%\n", g.Label, g.Percentage)
	}
	body := strings.TrimSpace(b.String())

	query := url.Values{}
	query.Set("subject", subject)
	query.Set("body", body)
	mailto := "mailto:" + recipient + "?" + strings.ReplaceAll(query.Encode(), "+", "%20")

	return domain.Notification{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		MailtoURL: mailto,
	}
}
