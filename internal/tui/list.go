package tui

import (
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"zipsweep/internal/scanner"
)

type item struct {
	fi  scanner.FileItem
	sel bool
}

// itemList is one of the two result panes (duplicates or orphans).
type itemList struct {
	title        string
	items        []item
	cursor       int
	scrollOffset int
}

func newItemList(title string, fis []scanner.FileItem) itemList {
	l := itemList{title: title, items: make([]item, 0, len(fis))}
	for _, fi := range fis {
		// selected by default
		l.items = append(l.items, item{fi: fi, sel: true})
	}
	return l
}

func (l *itemList) move(delta int) {
	l.cursor += delta
	if l.cursor < 0 {
		l.cursor = 0
	}
	if l.cursor > len(l.items)-1 {
		l.cursor = len(l.items) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *itemList) toggle() {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return
	}
	l.items[l.cursor].sel = !l.items[l.cursor].sel
}

// toggleAll selects everything unless everything is already selected.
func (l *itemList) toggleAll() {
	all := l.selectedCount() == len(l.items)
	for i := range l.items {
		l.items[i].sel = !all
	}
}

func (l *itemList) selectedCount() int {
	c := 0
	for _, it := range l.items {
		if it.sel {
			c++
		}
	}
	return c
}

func (l *itemList) selectedSize() int64 {
	var n int64
	for _, it := range l.items {
		if it.sel {
			n += it.fi.Size
		}
	}
	return n
}

func (l *itemList) selected() []scanner.FileItem {
	var out []scanner.FileItem
	for _, it := range l.items {
		if it.sel {
			out = append(out, it.fi)
		}
	}
	return out
}

func (l *itemList) sortBy(field string, reverse bool) {
	sort.SliceStable(l.items, func(i, j int) bool {
		a, b := l.items[i].fi, l.items[j].fi
		if field == "path" {
			if reverse {
				return a.Path > b.Path
			}
			return a.Path < b.Path
		}
		if reverse {
			return a.Size > b.Size
		}
		return a.Size < b.Size
	})
}

// removeConsumed drops items whose files no longer exist.
func (l *itemList) removeConsumed(gone map[string]struct{}) {
	kept := l.items[:0]
	for _, it := range l.items {
		if _, ok := gone[it.fi.Path]; ok {
			continue
		}
		kept = append(kept, it)
	}
	l.items = kept
	if l.cursor >= len(l.items) {
		l.cursor = len(l.items) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.scrollOffset = 0
}

func (l *itemList) render(height int, active bool) string {
	var b strings.Builder
	title := headerStyle.Render(l.title)
	if active {
		title = activeHeaderStyle.Render(l.title)
	}
	b.WriteString(title + "\n")
	if len(l.items) == 0 {
		b.WriteString("  (none)\n")
		return b.String()
	}
	if height < 1 {
		height = 1
	}
	if l.cursor >= l.scrollOffset+height {
		l.scrollOffset = l.cursor - height + 1
	}
	if l.cursor < l.scrollOffset {
		l.scrollOffset = l.cursor
	}
	end := l.scrollOffset + height
	if end > len(l.items) {
		end = len(l.items)
	}
	for i := l.scrollOffset; i < end; i++ {
		it := l.items[i]
		prefix := "  "
		if active && i == l.cursor {
			prefix = cursorStyle.Render(">") + " "
		}
		mark := markStyle.Render("[ ]")
		name := it.fi.DisplayName
		if it.sel {
			mark = markSelectedStyle.Render("[x]")
			name = pathStyleSelected.Render(name)
		}
		size := sizeStyle.Render(humanize.IBytes(uint64(it.fi.Size)))
		b.WriteString(prefix + mark + " " + size + " " + name + "\n")
	}
	return b.String()
}
