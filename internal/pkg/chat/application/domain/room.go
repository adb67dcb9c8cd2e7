package chat

// RoomID derives the canonical identifier for the conversation between two
// users: both usernames sorted lexicographically and joined with "-".
// Sorting makes the id independent of who opened the chat, so A messaging B
// and B messaging A resolve to the same room and the same history.
func RoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "-" + b
}
