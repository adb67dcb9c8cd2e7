package usecase

// historyCacheKey names the cached raw history rows for a room. Read-cursor
// state is deliberately never cached: the is_read annotation must always be
// computed against a fresh cursor.
func historyCacheKey(room string) string {
	return "chat:history:" + room
}
