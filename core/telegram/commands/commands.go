package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command describes a slash command exposed by the bot.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// Matches reports whether name refers to this command through one of its
// aliases. The leading slash is optional on both sides.
func (c Command) Matches(name string) bool {
	name = strings.TrimPrefix(name, "/")
	for _, alias := range c.Aliases {
		if strings.TrimPrefix(alias, "/") == name {
			return true
		}
	}
	return false
}

// Visible reports whether the command belongs in the public command menu.
func (c Command) Visible() bool {
	return !c.Hidden && !c.AdminOnly
}
