package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		cb            *tele.Callback
		unique, extra string
	}{
		{nil, "", ""},
		{&tele.Callback{Data: "\fdel_pick|ABC1"}, "del_pick", "ABC1"},
		{&tele.Callback{Data: `\ftop_page|2`}, "top_page", "2"},
		{&tele.Callback{Data: "\fcheck_sub"}, "check_sub", ""},
		{&tele.Callback{Unique: "confirm", Data: "x|y"}, "confirm", "x|y"},
	}
	for _, tc := range cases {
		u, p := ParseCallbackData(tc.cb)
		if u != tc.unique || p != tc.extra {
			t.Fatalf("parse(%+v) = %q,%q want %q,%q", tc.cb, u, p, tc.unique, tc.extra)
		}
	}
}
