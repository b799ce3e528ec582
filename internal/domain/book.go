// Package domain contains the core business entities and domain logic for the HomeShelf catalog.
package domain

import "strings"

// PlaceholderTitle is stored when neither the resolver nor the user supplied a title.
const PlaceholderTitle = "Unknown title"

// Book represents one catalogued book.
//
// IDs are positive integers allocated monotonically on creation and never
// reused. Records are never deleted; a book leaves the shelf by flipping
// IsLive off.
type Book struct {
	ID           int            `json:"id"`
	ISBN         string         `json:"isbn"`
	Title        string         `json:"title"`
	Authors      string         `json:"authors"`
	Tags         []string       `json:"tags"`
	IsLive       bool           `json:"is_live"`
	IsGift       bool           `json:"is_gift"`
	GiftFrom     string         `json:"gift_from"`
	LastReadDate string         `json:"last_read_date"`
	ReadCount    int            `json:"read_count"`
	ReadLog      map[string]int `json:"read_log"`
}

// Patch is a sparse update to a book. A nil field means "unchanged"; a
// present field is applied verbatim, so an explicit empty string clears the
// field rather than being ignored. Boolean fields apply the literal "true";
// any other present value means false.
type Patch struct {
	IsLive       *string `json:"is_live,omitempty"`
	IsGift       *string `json:"is_gift,omitempty"`
	GiftFrom     *string `json:"gift_from,omitempty"`
	LastReadDate *string `json:"last_read_date,omitempty"`
	Tags         *string `json:"tags,omitempty"`
	Title        *string `json:"title,omitempty"`
	Authors      *string `json:"authors,omitempty"`
}

// Apply mutates the book with every field present in the patch.
// Dates are stored as-is without validation.
func (b *Book) Apply(p Patch) {
	if p.IsLive != nil {
		b.IsLive = *p.IsLive == "true"
	}
	if p.IsGift != nil {
		b.IsGift = *p.IsGift == "true"
	}
	// GiftFrom is not auto-cleared when IsGift flips false; the giver's
	// name stays on record.
	if p.GiftFrom != nil {
		b.GiftFrom = strings.TrimSpace(*p.GiftFrom)
	}
	if p.LastReadDate != nil {
		b.LastReadDate = *p.LastReadDate
	}
	if p.Tags != nil {
		b.Tags = SplitTags(*p.Tags)
	}
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Authors != nil {
		b.Authors = strings.TrimSpace(*p.Authors)
	}
}

// RecordRead marks a read event on the given ISO date: it becomes the last
// read date, and both the lifetime counter and the per-day tally increment.
func (b *Book) RecordRead(date string) {
	b.LastReadDate = date
	b.ReadCount++
	if b.ReadLog == nil {
		b.ReadLog = make(map[string]int)
	}
	b.ReadLog[date]++
}

// ReadsOn returns the number of read events recorded on the given ISO date.
func (b *Book) ReadsOn(date string) int {
	return b.ReadLog[date]
}

// SplitTags splits a comma-delimited tag string, trimming whitespace and
// dropping empty entries. Duplicates are kept; de-duplication is not enforced.
func SplitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// NextID allocates the id for a new book: one past the highest existing id,
// or 1 for an empty collection.
func NextID(books []Book) int {
	maxID := 0
	for i := range books {
		if books[i].ID > maxID {
			maxID = books[i].ID
		}
	}
	return maxID + 1
}
