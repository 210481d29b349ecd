// Package slack adapts github.com/slack-go/slack to what the roll bot needs:
// decoding slash command requests, checking their verification token and
// posting messages with chat.postMessage.
package slack

import (
	slackapi "github.com/slack-go/slack"
)

// Response types for slash command replies.
const (
	ResponseEphemeral = "ephemeral"
	ResponseInChannel = "in_channel"
)

// Attachment is a legacy message attachment.
type Attachment = slackapi.Attachment

// MarkdownAttachment returns an attachment whose text is rendered as mrkdwn.
func MarkdownAttachment(color, text string) Attachment {
	return Attachment{Color: color, Text: text, MarkdownIn: []string{"text"}}
}

// Message is a chat.postMessage call. ReplyBroadcast maps to
// slack.MsgOptionBroadcast.
type Message struct {
	Channel        string
	Text           string
	Attachments    []Attachment
	ReplyBroadcast bool
}

// Response is the body of a synchronous slash command reply.
type Response struct {
	ResponseType string       `json:"response_type,omitempty"`
	Text         string       `json:"text"`
	Attachments  []Attachment `json:"attachments,omitempty"`
}
