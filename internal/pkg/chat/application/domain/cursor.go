package chat

// ReadCursor is the per-room watermark of the highest message id confirmed
// read. Updates are conditional: a cursor never moves backwards. LastReadBy
// records who acknowledged last and carries no behavioral meaning.
type ReadCursor struct {
	Room       string `json:"room"`
	LastReadID int64  `json:"lastMessageId"`
	LastReadBy string `json:"lastReadBy"`
}
