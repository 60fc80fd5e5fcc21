package repository

import "context"

// ContentSource produces the latest scraped website text. An empty string means
// nothing could be fetched; implementations never return partial markup.
type ContentSource interface {
	Scrape(ctx context.Context) string
}
