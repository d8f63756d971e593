package gateway

import "testing"

func TestRoomForUser(t *testing.T) {
	if got := RoomForUser(42); got != "user_42" {
		t.Errorf("RoomForUser(42) = %q, want %q", got, "user_42")
	}

	if RoomForUser(7) != RoomForUser(7) {
		t.Error("same user id must map to the same room")
	}

	if RoomForUser(1) == RoomForUser(2) {
		t.Error("distinct user ids must map to distinct rooms")
	}

	if got := RoomForUser(-3); got != "user_-3" {
		t.Errorf("RoomForUser(-3) = %q, want %q", got, "user_-3")
	}
}
