package note

import "time"

// Note はカレンダーに手動で書き込むメモです。
type Note struct {
	ID          string
	Title       string
	Date        time.Time
	Description *string
	CreatedAt   time.Time
}
