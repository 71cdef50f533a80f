package bot

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

// editRecorder records which edit variants were attempted and in what
// order. Unimplemented tele.Context methods panic, which keeps the
// render path honest about what it touches.
type editRecorder struct {
	tele.Context
	msg   *tele.Message
	store map[string]interface{}

	failures map[string]error
	calls    []string
	sent     []string
}

func modeOf(opts []interface{}) string {
	if len(opts) > 0 {
		if so, ok := opts[0].(*tele.SendOptions); ok && so.ParseMode != "" {
			return string(so.ParseMode)
		}
	}
	return "plain"
}

func (f *editRecorder) Message() *tele.Message { return f.msg }
func (f *editRecorder) Update() tele.Update    { return tele.Update{ID: 1} }
func (f *editRecorder) Sender() *tele.User     { return &tele.User{ID: 42} }
func (f *editRecorder) Chat() *tele.Chat       { return &tele.Chat{ID: 42} }

func (f *editRecorder) Get(key string) interface{} { return f.store[key] }
func (f *editRecorder) Set(key string, v interface{}) {
	if f.store == nil {
		f.store = make(map[string]interface{})
	}
	f.store[key] = v
}

func (f *editRecorder) EditCaption(caption string, opts ...interface{}) error {
	step := "caption." + modeOf(opts)
	f.calls = append(f.calls, step)
	return f.failures[step]
}

func (f *editRecorder) Edit(what interface{}, opts ...interface{}) error {
	step := "text." + modeOf(opts)
	f.calls = append(f.calls, step)
	return f.failures[step]
}

func (f *editRecorder) Send(what interface{}, opts ...interface{}) error {
	f.sent = append(f.sent, fmt.Sprint(what))
	return nil
}

func TestEditInPlaceSendsWhenNoMessage(t *testing.T) {
	f := &editRecorder{}

	err := editInPlace(f, "<b>привет</b>", backMenu())

	require.NoError(t, err)
	assert.Empty(t, f.calls)
	assert.Equal(t, []string{"<b>привет</b>"}, f.sent)
}

func TestEditInPlaceCaptionFirstTry(t *testing.T) {
	f := &editRecorder{msg: &tele.Message{ID: 5, Caption: "старый текст"}}

	err := editInPlace(f, "новый текст", backMenu())

	require.NoError(t, err)
	assert.Equal(t, []string{"caption.HTML"}, f.calls)
	assert.Empty(t, f.sent)
}

func TestEditInPlaceCaptionFallsBackToPlain(t *testing.T) {
	f := &editRecorder{
		msg:      &tele.Message{ID: 5, Caption: "старый текст"},
		failures: map[string]error{"caption.HTML": errors.New("bad request")},
	}

	err := editInPlace(f, "новый текст", backMenu())

	require.NoError(t, err)
	assert.Equal(t, []string{"caption.HTML", "caption.plain"}, f.calls)
}

func TestEditInPlaceTextFallsBackToPlain(t *testing.T) {
	f := &editRecorder{
		msg:      &tele.Message{ID: 5, Text: "старый текст"},
		failures: map[string]error{"text.HTML": errors.New("bad request")},
	}

	err := editInPlace(f, "новый текст", backMenu())

	require.NoError(t, err)
	assert.Equal(t, []string{"text.HTML", "text.plain"}, f.calls)
}
