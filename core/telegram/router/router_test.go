package router

import (
	"errors"
	"fmt"
	"testing"
	"time"

	tg "github.com/m3rciful/cinebot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

type codedErr struct{ code string }

func (e *codedErr) Error() string { return e.code }
func (e *codedErr) Code() string  { return e.code }

func TestDeriveErrorCode(t *testing.T) {
	if got := deriveErrorCode(fmt.Errorf("wrap: %w", &codedErr{code: "not found"})); got != "NOT_FOUND" {
		t.Fatalf("coded = %q", got)
	}
	if got := deriveErrorCode(errors.New("x")); got != "ERRORSTRING" {
		t.Fatalf("plain = %q", got)
	}
	if deriveErrorCode(nil) != "" {
		t.Fatalf("nil should give empty code")
	}
}

func TestDeriveOutcome(t *testing.T) {
	cases := map[string]error{
		"ok":        nil,
		"denied":    &codedErr{code: "AUTHORIZATION"},
		"not_found": fmt.Errorf("lookup: %w", &codedErr{code: "NOT_FOUND"}),
		"fail":      errors.New("db down"),
	}
	for want, err := range cases {
		if got := deriveOutcome(err); got != want {
			t.Fatalf("deriveOutcome(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestNormalizeHandlerName(t *testing.T) {
	if got := normalizeHandlerName(" /Top Page "); got != "top_page" {
		t.Fatalf("name = %q", got)
	}
	if normalizeHandlerName("") != "unknown" {
		t.Fatalf("empty name should be unknown")
	}
}

func TestRunFSMNil(t *testing.T) {
	consumed, err := runFSM(nil, nil)
	if consumed || err != nil {
		t.Fatalf("nil fsm must not consume")
	}
}

type fsmFunc func(c tele.Context) (bool, error)

func (f fsmFunc) Handle(c tele.Context) (bool, error) { return f(c) }

func TestTextRoutesCoverEveryMessageKind(t *testing.T) {
	routes := TextRoutes(nil, nil, TextOptions{})
	have := make(map[any]bool, len(routes))
	for _, r := range routes {
		have[r.Endpoint] = true
	}
	for _, ep := range []string{
		tele.OnText, tele.OnPhoto, tele.OnVideo, tele.OnVoice, tele.OnVideoNote,
		tele.OnSticker, tele.OnPoll, tele.OnLocation, tele.OnContact,
	} {
		if !have[ep] {
			t.Fatalf("no route for %q", ep)
		}
	}
}

func TestRunFSMPassesSender(t *testing.T) {
	var got int64
	fsm := fsmFunc(func(c tele.Context) (bool, error) {
		got = c.Sender().ID
		return true, nil
	})
	c := tele.NewContext(nil, tele.Update{Message: &tele.Message{
		Sender: &tele.User{ID: 9},
		Chat:   &tele.Chat{ID: 9},
		Voice:  &tele.Voice{File: tele.File{FileID: "v"}},
	}})
	consumed, err := runFSM(fsm, c)
	if !consumed || err != nil || got != 9 {
		t.Fatalf("consumed=%v err=%v sender=%d", consumed, err, got)
	}
}

func pressed(unique, data string) tele.Context {
	return tele.NewContext(nil, tele.Update{Callback: &tele.Callback{
		Unique: unique,
		Data:   data,
		Sender: &tele.User{ID: 5},
	}})
}

func TestDispatchCallbackOrder(t *testing.T) {
	reg := tg.NewRegistry()
	var hits []string
	if err := reg.RegisterCallback("panel", func(tele.Context) error {
		hits = append(hits, "panel")
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	reg.SetCallbackNotFound(func(tele.Context) error {
		hits = append(hits, "not_found")
		return nil
	})
	opts := CallbackOptions{Dialog: func(c tele.Context) (bool, error) {
		if c.Callback().Unique != "confirm" {
			return false, nil
		}
		hits = append(hits, "dialog:"+c.Callback().Data)
		return true, nil
	}}

	for _, c := range []tele.Context{pressed("panel", ""), pressed("confirm", "delete"), pressed("gone", "")} {
		if err := dispatchCallback(c, reg, opts, time.Now()); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
	}
	want := []string{"panel", "dialog:delete", "not_found"}
	if fmt.Sprint(hits) != fmt.Sprint(want) {
		t.Fatalf("hits = %v, want %v", hits, want)
	}
}

func TestDispatchCallbackDialogError(t *testing.T) {
	reg := tg.NewRegistry()
	boom := errors.New("db down")
	opts := CallbackOptions{Dialog: func(tele.Context) (bool, error) { return true, boom }}
	if err := dispatchCallback(pressed("confirm", "upload"), reg, opts, time.Now()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
