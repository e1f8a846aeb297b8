package model

import "time"

// Comment is a remark left on an item, e.g. a reply under a blog post.
type Comment struct {
	ID        int64     `json:"id"`
	ItemID    string    `json:"item_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
