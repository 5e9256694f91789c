// Package mapper renders reports into chat message payloads. Everything here
// is a pure mapping from a report and its lifecycle state to a card; no I/O.
package mapper

import (
	"fmt"
	"strings"
	"time"

	"reportdesk.app/reportdesk/internal/chat"
	"reportdesk.app/reportdesk/internal/model"
)

const (
	colorPending = 0xE67E22 // orange
	colorReplied = 0x2ECC71 // green
)

// ReplyButtonPrefix is the custom_id namespace for the reply control. The
// report ID is the only state bound to the button; the handler re-fetches the
// record when it fires.
const ReplyButtonPrefix = "report_reply:"

// ReplyModalPrefix namespaces modal submissions the same way.
const ReplyModalPrefix = "report_reply_modal:"

// ReplyInputID identifies the single text field on the reply form.
const ReplyInputID = "reply_content"

// ReportCard renders the card posted to the moderation channel for a report.
// A pending card carries an enabled reply button; a replied card is green
// with the control disabled so the same stale artifact cannot collect a
// second reply.
func ReportCard(r *model.Report) chat.Message {
	color := colorPending
	if r.Replied {
		color = colorReplied
	}

	embed := &chat.Embed{
		Title: fmt.Sprintf("New User Report Received (ID: %d)", r.ID),
		Color: color,
		Fields: []chat.EmbedField{
			{Name: "Report Type", Value: r.Category.Label()},
			{Name: "Content", Value: r.Content},
			{Name: "Report ID", Value: fmt.Sprintf("%d", r.ID)},
			{Name: "Status", Value: string(r.Status())},
		},
		FooterText: fmt.Sprintf("From %s (%d)", r.ReporterName, r.ReporterID),
		Timestamp:  time.Now(),
	}

	if len(r.Attachments) > 0 {
		names := make([]string, 0, len(r.Attachments))
		for _, a := range r.Attachments {
			names = append(names, a.Filename)
		}
		embed.Fields = append(embed.Fields, chat.EmbedField{Name: "Files", Value: strings.Join(names, "\n")})

		if first := r.Attachments[0]; first.IsImage() && first.URL != "" {
			embed.ImageURL = first.URL
		}
	}

	return chat.Message{
		Embed: embed,
		Buttons: []chat.Button{{
			Label:    "Reply",
			CustomID: fmt.Sprintf("%s%d", ReplyButtonPrefix, r.ID),
			Disabled: r.Replied,
		}},
	}
}

// ReplySummaryCard renders the standalone card posted after an administrator
// replies: original content plus the reply, attachments as links, no control.
func ReplySummaryCard(r *model.Report) chat.Message {
	embed := &chat.Embed{
		Title: fmt.Sprintf("Administrator Reply (Report ID: %d)", r.ID),
		Color: colorReplied,
		Fields: []chat.EmbedField{
			{Name: "Report Type", Value: r.Category.Label()},
			{Name: "Original Content", Value: r.Content},
		},
		Timestamp: time.Now(),
	}

	if links := attachmentLinks(r.Attachments); links != "" {
		embed.Fields = append(embed.Fields, chat.EmbedField{Name: "Report Files", Value: links})
	}

	reply := ""
	if r.ReplyContent != nil {
		reply = *r.ReplyContent
	}
	embed.Fields = append(embed.Fields, chat.EmbedField{Name: "Administrator Reply", Value: reply})

	if r.RepliedBy != nil {
		embed.FooterText = fmt.Sprintf("Replied by: %s", *r.RepliedBy)
	}

	return chat.Message{Embed: embed}
}

// AckDM is the direct message sent to the reporter after submission.
func AckDM(r *model.Report) string {
	return fmt.Sprintf(
		"Hello, we have received your report (ID: %d, Type: %s). Our administrators will process it.\n"+
			"You will be notified of any updates via DM. Thank you for your assistance!",
		r.ID, r.Category.Label(),
	)
}

// ReplyDM is the direct message relaying an administrator reply back to the
// reporter.
func ReplyDM(r *model.Report) string {
	reply := ""
	if r.ReplyContent != nil {
		reply = *r.ReplyContent
	}
	return fmt.Sprintf(
		"Hello, your report (ID: %d, Type: %s) has received an administrator reply:\n%s",
		r.ID, r.Category.Label(), reply,
	)
}

func attachmentLinks(attachments []model.Attachment) string {
	var lines []string
	for _, a := range attachments {
		if a.URL == "" {
			continue
		}
		name := a.Filename
		if name == "" {
			name = "file"
		}
		lines = append(lines, fmt.Sprintf("[%s](%s)", name, a.URL))
	}
	return strings.Join(lines, "\n")
}
