package storage

// VisitedStore tracks which normalized URLs a crawl has already claimed.
// MarkVisited is the only mutation and doubles as the dedup check: a
// true return means the caller is the first to claim the URL.
type VisitedStore interface {
	// MarkVisited records the URL as claimed. Returns true if the URL
	// was newly added, false if it was already present.
	MarkVisited(normalizedURL string) (bool, error)

	// Seen reports whether the URL is already claimed.
	Seen(normalizedURL string) (bool, error)

	// Count returns the number of claimed URLs.
	Count() (int, error)

	// Close releases any resources held by the store.
	Close() error
}
