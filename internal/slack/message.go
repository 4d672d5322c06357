// Package slack models Slack Block Kit messages and delivers them to incoming
// webhook URLs.
package slack

import (
	"fmt"
	"strings"
)

// CharacterLimit is the maximum length Slack accepts for a section field or
// text block. Longer values are cut to this prefix.
// Ref: https://api.slack.com/reference/block-kit/blocks#section_fields
const CharacterLimit = 2000

const (
	blockTypeHeader  = "header"
	blockTypeDivider = "divider"
	blockTypeSection = "section"

	blockIDHeader        = "header"
	blockIDFieldsSection = "fieldsSection"
	blockIDTextSection   = "textSection"
)

// Text is a Block Kit text object, either plain_text or mrkdwn.
type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Block is a single Block Kit block. Only the members used by the block's
// type are populated.
type Block struct {
	Type    string `json:"type"`
	BlockID string `json:"block_id,omitempty"`
	Text    *Text  `json:"text,omitempty"`
	Fields  []Text `json:"fields,omitempty"`
}

// Message is the webhook payload: an ordered sequence of blocks.
type Message struct {
	Blocks []Block `json:"blocks"`
}

// Field is one label/value pair destined for the fields section.
type Field struct {
	Label string
	Value string
}

// Truncate cuts s to the Slack character limit, keeping the prefix.
func Truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= CharacterLimit {
		return s
	}
	return string(runes[:CharacterLimit])
}

// NewMessage builds a message with a plain-text header, a divider, and one
// fields section containing the given label/value pairs in order. Values are
// rendered as "*label:*\nvalue"; callers are expected to have truncated
// free-text values already.
func NewMessage(title string, fields []Field) Message {
	section := Block{
		Type:    blockTypeSection,
		BlockID: blockIDFieldsSection,
		Fields:  make([]Text, 0, len(fields)),
	}
	for _, f := range fields {
		section.Fields = append(section.Fields, Text{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*%s:*\n%s", f.Label, f.Value),
		})
	}

	return Message{
		Blocks: []Block{
			{
				Type:    blockTypeHeader,
				BlockID: blockIDHeader,
				Text:    &Text{Type: "plain_text", Text: title},
			},
			{Type: blockTypeDivider},
			section,
		},
	}
}

// WithBody appends a freeform mrkdwn text section rendered as a code block.
// The body is truncated to the Slack character limit.
func (m Message) WithBody(body string) Message {
	m.Blocks = append(m.Blocks, Block{
		Type:    blockTypeSection,
		BlockID: blockIDTextSection,
		Text:    &Text{Type: "mrkdwn", Text: fmt.Sprintf("```%s```", Truncate(body))},
	})
	return m
}

// Title returns the header text, or "" when the message has no header block.
func (m Message) Title() string {
	for _, b := range m.Blocks {
		if b.BlockID == blockIDHeader && b.Text != nil {
			return b.Text.Text
		}
	}
	return ""
}

// Fields re-extracts the label/value pairs from the fields section, in order.
func (m Message) Fields() []Field {
	for _, b := range m.Blocks {
		if b.BlockID != blockIDFieldsSection {
			continue
		}
		fields := make([]Field, 0, len(b.Fields))
		for _, f := range b.Fields {
			label, value := splitField(f.Text)
			fields = append(fields, Field{Label: label, Value: value})
		}
		return fields
	}
	return nil
}

func splitField(text string) (label, value string) {
	head, tail, found := strings.Cut(text, "\n")
	if !found {
		return "", text
	}
	label = strings.TrimSuffix(strings.TrimPrefix(head, "*"), ":*")
	return label, tail
}
