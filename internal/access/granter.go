// Package access mints invite links into the private course group.
package access

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v4"
)

// InviteAPI is the slice of the bot API needed to create invite links.
type InviteAPI interface {
	CreateInviteLink(chat tele.Recipient, link *tele.ChatInviteLink) (*tele.ChatInviteLink, error)
}

// Granter creates one-member invite links for the configured group chat.
type Granter struct {
	api         InviteAPI
	groupChatID int64
}

// NewGranter binds the bot API to the course group.
func NewGranter(api InviteAPI, groupChatID int64) *Granter {
	return &Granter{api: api, groupChatID: groupChatID}
}

// Grant creates a fresh invite link limited to a single member. The
// Telegram API call itself is not cancelable; ctx is checked before
// issuing it.
func (g *Granter) Grant(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	link, err := g.api.CreateInviteLink(tele.ChatID(g.groupChatID), &tele.ChatInviteLink{
		MemberLimit: 1,
	})
	if err != nil {
		return "", fmt.Errorf("create invite link: %w", err)
	}
	if link == nil || link.InviteLink == "" {
		return "", fmt.Errorf("create invite link: empty link in response")
	}
	return link.InviteLink, nil
}
