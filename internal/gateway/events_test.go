package gateway

import (
	"encoding/json"
	"testing"
)

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame([]byte(`{"event":"typing","data":{"recipientId":5,"isTyping":true}}`))
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if f.Event != EventTyping {
		t.Errorf("event = %q, want typing", f.Event)
	}

	var p TypingPayload
	if err := json.Unmarshal(f.Data, &p); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if p.RecipientID != 5 || !p.IsTyping {
		t.Errorf("payload = %+v, want recipient 5 typing", p)
	}
}

func TestParseFrameRejectsGarbage(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "{nope"},
		{"no event name", `{"data":{}}`},
		{"empty event name", `{"event":"","data":{}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseFrame([]byte(tc.raw)); err == nil {
				t.Errorf("ParseFrame(%q) accepted a bad frame", tc.raw)
			}
		})
	}
}

func TestEncodeFrameRoundTrip(t *testing.T) {
	raw, err := EncodeFrame(EventOnlineUsers, []int64{1, 2})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	f, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if f.Event != EventOnlineUsers {
		t.Errorf("event = %q, want online_users", f.Event)
	}
	var ids []int64
	if err := json.Unmarshal(f.Data, &ids); err != nil || len(ids) != 2 {
		t.Errorf("data = %s, want [1,2]", f.Data)
	}
}
