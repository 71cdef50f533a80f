package state

import (
	tele "gopkg.in/telebot.v4"
)

// fsmHandlers maps states to the handler invoked for incoming text in that state.
var fsmHandlers = map[State]tele.HandlerFunc{}

// RegisterHandler binds a handler for messages received while in the given state.
func RegisterHandler(st State, fn tele.HandlerFunc) {
	fsmHandlers[st] = fn
}
