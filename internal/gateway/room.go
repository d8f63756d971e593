package gateway

import "strconv"

const roomPrefix = "user_"

// RoomForUser maps a user id to its logical delivery channel. The mapping
// is pure and collision-free: distinct users never share a room and the
// same user always resolves to the same room. Emitting to a room with no
// members is a safe no-op, so senders never need to know whether the
// target user currently holds a connection.
func RoomForUser(userID int64) string {
	return roomPrefix + strconv.FormatInt(userID, 10)
}
