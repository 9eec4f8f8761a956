package notice

// KeySeparator joins title and URL into a notice key. Neither field can
// contain a pipe naturally: titles are plain table-cell text and URLs
// percent-encode the character.
const KeySeparator = "|"

// Notice is one published announcement scraped from the board. Date is the
// display string exactly as rendered on the page; it is never parsed and
// never participates in identity.
type Notice struct {
	Date  string
	Title string
	URL   string
}

// Key returns the dedup identity of the notice. Two notices with the same
// title and URL are the same notice even if their date text differs.
func (n Notice) Key() string {
	return n.Title + KeySeparator + n.URL
}

// FetchedList is an ordered batch of notices as returned by one scrape,
// index 0 newest. The board renders newest first and the scraper preserves
// document order, so ordering is part of the container's contract rather
// than an assumption callers have to remember.
type FetchedList struct {
	items []Notice
}

// NewFetchedList wraps notices already in newest-first order.
func NewFetchedList(items []Notice) FetchedList {
	copied := make([]Notice, len(items))
	copy(copied, items)
	return FetchedList{items: copied}
}

func (l FetchedList) Len() int {
	return len(l.items)
}

// At returns the notice at position i, 0 being the newest.
func (l FetchedList) At(i int) Notice {
	return l.items[i]
}

// Keys returns the derived keys in the same newest-first order, ready to be
// persisted as the next run's comparison baseline.
func (l FetchedList) Keys() []string {
	keys := make([]string, len(l.items))
	for i, n := range l.items {
		keys[i] = n.Key()
	}
	return keys
}
