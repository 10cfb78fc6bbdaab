package pagination

// Navigator tracks the left page of the visible spread. Moves that would
// leave the book are ignored rather than reported as errors.
type Navigator struct {
	page int
}

// Page is the index of the left page of the current spread.
func (n *Navigator) Page() int {
	return n.page
}

// Next advances one spread. It reports false at the last spread.
func (n *Navigator) Next(pageCount int) bool {
	if n.page >= pageCount-SpreadSize {
		return false
	}
	n.page = min(pageCount-1, n.page+SpreadSize)
	return true
}

// Prev goes back one spread. It reports false at the first spread.
func (n *Navigator) Prev() bool {
	if n.page == 0 {
		return false
	}
	n.page = max(0, n.page-SpreadSize)
	return true
}

// Clamp pulls the page index back into [0, pageCount-1] after a reflow.
func (n *Navigator) Clamp(pageCount int) {
	if n.page > pageCount-1 {
		n.page = pageCount - 1
	}
	if n.page < 0 {
		n.page = 0
	}
}

// Spread returns the indexes of the pages currently visible.
func (n *Navigator) Spread(pageCount int) []int {
	var out []int
	for i := n.page; i < n.page+SpreadSize && i < pageCount; i++ {
		out = append(out, i)
	}
	return out
}

// SheetNumber is the one-based number of the current spread.
func (n *Navigator) SheetNumber() int {
	return n.page/SpreadSize + 1
}
