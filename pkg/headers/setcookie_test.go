package headers

import (
	"net/http"
	"reflect"
	"testing"
)

func TestMergeSetCookiesLaterSourceWins(t *testing.T) {
	a := http.Header{"Set-Cookie": {"session=old; Path=/; HttpOnly", "theme=dark"}}
	b := http.Header{"Set-Cookie": {"session=new; Path=/"}}

	got := MergeSetCookies(a, b)
	want := []string{"session=new; Path=/", "theme=dark"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeSetCookies = %v, want %v", got, want)
	}
}

func TestMergeSetCookiesKeepsDeletionEntries(t *testing.T) {
	a := http.Header{"Set-Cookie": {"session=; Max-Age=0"}}

	got := MergeSetCookies(a)
	if len(got) != 1 || got[0] != "session=; Max-Age=0" {
		t.Errorf("MergeSetCookies = %v, deletion entry must survive", got)
	}
}

func TestMergeSetCookiesNilAndEmptySources(t *testing.T) {
	if got := MergeSetCookies(nil, http.Header{}); len(got) != 0 {
		t.Errorf("MergeSetCookies = %v, want none", got)
	}
}
