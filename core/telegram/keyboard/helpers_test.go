package keyboard

import "testing"

func TestInlineButtonsRows(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "Join", URL: "https://t.me/chan"}},
		nil,
		[]InlineBtn{{Text: "Yes", Unique: "confirm", Data: "ABC1"}, {Text: "No", Unique: "cancel"}},
	)
	if m == nil || len(m.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %+v", m)
	}
	if got := m.InlineKeyboard[0][0].URL; got != "https://t.me/chan" {
		t.Fatalf("url = %q", got)
	}
	yes := m.InlineKeyboard[1][0]
	if yes.Unique != "confirm" || yes.Data != "ABC1" {
		t.Fatalf("data button = %+v", yes)
	}
}

func TestInlineButtonsRowsEmpty(t *testing.T) {
	if m := InlineButtonsRows(); m != nil {
		t.Fatalf("no rows should give nil markup")
	}
}
