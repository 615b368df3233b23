package tools

import (
	"context"

	"github.com/glancehq/assistant-platform/internal/apiclient"
	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/internal/tool"
)

// RegisterEmailTools adds the mail tool set to the registry.
func RegisterEmailTools(reg *tool.Registry, mail *apiclient.MailClient) {
	reg.Register(tool.Descriptor{
		Name:        "fetch_messages",
		Description: "Fetch messages from the user's inbox, optionally limited to unread mail or a single day.",
		Domain:      tool.DomainEmail,
		Kind:        tool.KindAPI,
		Parameters: map[string]tool.ParamSpec{
			"unreadOnly": {Type: "boolean", Description: "Only return unread messages."},
			"filterDate": {Type: "string", Description: "Limit to one day, formatted YYYY-MM-DD."},
			"limit":      {Type: "integer", Description: "Maximum messages to return.", Default: 20},
		},
		Hints: tool.UsageHints{
			WhenToUse:    "The user asks about new, unread, or recent mail.",
			WhenNotToUse: "The user is looking for something specific; use search_messages.",
			Output:       "both",
		},
	}, func(ctx context.Context, args map[string]any) (model.ToolResult, error) {
		messages, err := mail.FetchMessages(ctx, apiclient.FetchMessagesParams{
			UnreadOnly: boolArg(args, "unreadOnly"),
			FilterDate: stringArg(args, "filterDate"),
			Limit:      intArg(args, "limit", 20),
		})
		if err != nil {
			return model.ToolResult{}, err
		}
		return model.ToolSuccess(messageData(messages), messageWidgets(messages)...), nil
	})

	reg.Register(tool.Descriptor{
		Name:        "search_messages",
		Description: "Full-text search over the user's mailbox.",
		Domain:      tool.DomainEmail,
		Kind:        tool.KindAPI,
		Parameters: map[string]tool.ParamSpec{
			"query": {Type: "string", Description: "Search terms, preferably the user's own words."},
			"limit": {Type: "integer", Description: "Maximum results to return.", Default: 10},
		},
		Required: []string{"query"},
		Hints: tool.UsageHints{
			WhenToUse: "The user is looking for a specific message, sender, or topic.",
			Output:    "both",
		},
	}, func(ctx context.Context, args map[string]any) (model.ToolResult, error) {
		query := stringArg(args, "query")
		messages, err := mail.SearchMessages(ctx, query, intArg(args, "limit", 10))
		if err != nil {
			return model.ToolResult{}, err
		}

		widget := model.WidgetBlock{
			Type: model.WidgetSearchResults,
			Data: map[string]any{
				"query":   query,
				"results": messageData(messages),
			},
		}
		return model.ToolSuccess(messageData(messages), widget), nil
	})

	reg.Register(tool.Descriptor{
		Name:        "get_message",
		Description: "Fetch one message in full, including its body.",
		Domain:      tool.DomainEmail,
		Kind:        tool.KindAPI,
		Parameters: map[string]tool.ParamSpec{
			"messageId": {Type: "string", Description: "The message id from an earlier fetch or search."},
		},
		Required: []string{"messageId"},
		Hints: tool.UsageHints{
			Prerequisites: "A message id from fetch_messages or search_messages.",
			Output:        "both",
		},
	}, func(ctx context.Context, args map[string]any) (model.ToolResult, error) {
		msg, err := mail.GetMessage(ctx, stringArg(args, "messageId"))
		if err != nil {
			return model.ToolResult{}, err
		}
		return model.ToolSuccess(singleMessageData(*msg), messageWidgets([]apiclient.Message{*msg})...), nil
	})

	reg.Register(tool.Descriptor{
		Name:        "send_message",
		Description: "Send an email. Only call this when the user explicitly asked to send, with a real recipient address.",
		Domain:      tool.DomainEmail,
		Kind:        tool.KindAPI,
		Parameters: map[string]tool.ParamSpec{
			"to":      {Type: "array", Description: "Recipient email addresses.", Items: &tool.ParamSpec{Type: "string"}},
			"subject": {Type: "string", Description: "Subject line."},
			"body":    {Type: "string", Description: "Message body."},
			"replyTo": {Type: "string", Description: "Message id being replied to, when this is a reply."},
		},
		Required: []string{"to", "subject", "body"},
		Hints: tool.UsageHints{
			WhenNotToUse: "The user has not named a recipient, or you only have a bare name without an address.",
			Output:       "text",
		},
	}, func(ctx context.Context, args map[string]any) (model.ToolResult, error) {
		to := stringSliceArg(args, "to")
		if len(to) == 0 {
			return model.ToolFailure("send_message requires at least one recipient address"), nil
		}

		id, err := mail.SendMessage(ctx, apiclient.SendMessageParams{
			To:      to,
			Subject: stringArg(args, "subject"),
			Body:    stringArg(args, "body"),
			ReplyTo: stringArg(args, "replyTo"),
		})
		if err != nil {
			return model.ToolResult{}, err
		}
		return model.ToolSuccess(map[string]any{"id": id, "sent": true}), nil
	})
}

func singleMessageData(m apiclient.Message) map[string]any {
	return map[string]any{
		"id":      m.ID,
		"from":    m.From,
		"to":      m.To,
		"subject": m.Subject,
		"snippet": m.Snippet,
		"body":    m.Body,
		"date":    m.Date,
		"flags":   m.Flags(),
	}
}

func messageData(messages []apiclient.Message) []map[string]any {
	out := make([]map[string]any, len(messages))
	for i, m := range messages {
		out[i] = map[string]any{
			"id":      m.ID,
			"from":    m.From,
			"subject": m.Subject,
			"snippet": m.Snippet,
			"date":    m.Date,
			"flags":   m.Flags(),
		}
	}
	return out
}

func messageWidgets(messages []apiclient.Message) []model.WidgetBlock {
	widgets := make([]model.WidgetBlock, len(messages))
	for i, m := range messages {
		widgets[i] = model.WidgetBlock{
			Type: model.WidgetEmailPreview,
			Data: map[string]any{
				"messageId": m.ID,
				"from":      m.From,
				"subject":   m.Subject,
				"snippet":   m.Snippet,
				"date":      m.Date,
				"unread":    m.State.Unread(),
				"starred":   m.State.Starred(),
				"tracked":   m.State.Tracked(),
				"attachment": m.State.HasAttachment(),
			},
		}
	}
	return widgets
}
