package notification

import (
	"fmt"
	"strings"
)

const deadlineLayout = "02 Jan 2006 15:04 MST"

// Letter - тема и текст письма.
type Letter struct {
	Subject string
	Text    string
	HTML    string
}

func greeting(firstName string) string {
	if firstName == "" {
		return "Hello,"
	}
	return fmt.Sprintf("Dear %s,", firstName)
}

func toHTML(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(escaper.Replace(line))
		b.WriteString("</p>")
	}
	return b.String()
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// RenderApprovalRequest формирует письмо с просьбой об утверждении.
func RenderApprovalRequest(msg ApprovalRequest) Letter {
	subject := fmt.Sprintf("Approval required: %s (%s) - level %d", msg.TenderTitle, msg.TenderReference, msg.LevelNumber)
	var b strings.Builder
	b.WriteString(greeting(msg.ApproverFirstName) + "\n")
	fmt.Fprintf(&b, "%s has requested your approval of the award recommendation for tender %s (%s).\n",
		msg.InitiatorName, msg.TenderTitle, msg.TenderReference)
	fmt.Fprintf(&b, "You are the approver at level %d.\n", msg.LevelNumber)
	if msg.Deadline != nil {
		fmt.Fprintf(&b, "Please submit your decision before %s.\n", msg.Deadline.UTC().Format(deadlineLayout))
	}
	text := b.String()
	return Letter{Subject: subject, Text: text, HTML: toHTML(text)}
}

// RenderApprovalDecision формирует письмо о решении на уровне.
func RenderApprovalDecision(msg ApprovalDecision) Letter {
	subject := fmt.Sprintf("Approval %s: %s (%s)", strings.ToLower(msg.DecisionLabel), msg.TenderTitle, msg.TenderReference)
	var b strings.Builder
	b.WriteString(greeting(msg.RecipientFirstName) + "\n")
	fmt.Fprintf(&b, "The award approval for tender %s (%s) was %s at level %d.\n",
		msg.TenderTitle, msg.TenderReference, strings.ToLower(msg.DecisionLabel), msg.LevelNumber)
	if msg.Comment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", msg.Comment)
	}
	text := b.String()
	return Letter{Subject: subject, Text: text, HTML: toHTML(text)}
}

// RenderAward формирует письмо о присуждении тендера.
func RenderAward(msg Award) Letter {
	subject := fmt.Sprintf("Tender awarded: %s (%s)", msg.TenderTitle, msg.TenderReference)
	var b strings.Builder
	b.WriteString(greeting(msg.RecipientFirstName) + "\n")
	fmt.Fprintf(&b, "All approval levels have approved the award for tender %s (%s). The tender is now awarded.\n",
		msg.TenderTitle, msg.TenderReference)
	text := b.String()
	return Letter{Subject: subject, Text: text, HTML: toHTML(text)}
}
