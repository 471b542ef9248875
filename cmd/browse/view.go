package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matst80/slask-catalog/pkg/display"
	"github.com/matst80/slask-catalog/pkg/types"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	priceStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	chipStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62")).Padding(0, 1)
	chipFocus     = chipStyle.Bold(true).Background(lipgloss.Color("57"))
	badgeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Padding(0, 1)
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
	headingStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	switch m.mode {
	case modeFilter:
		b.WriteString(m.filterView())
	case modeSort:
		b.WriteString(m.sortView())
	case modeDetail:
		b.WriteString(m.detailView())
	default:
		b.WriteString(m.listView())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m model) headerView() string {
	snap := m.screen.Snapshot()
	parts := []string{titleStyle.Render("Catalog")}
	if snap.Loading {
		parts = append(parts, mutedStyle.Render("loading"))
	} else {
		parts = append(parts, snap.CountLabel)
	}
	parts = append(parts, mutedStyle.Render("Sort: "+snap.Sort.Label()))
	if snap.ActiveCount > 0 {
		parts = append(parts, badgeStyle.Render(fmt.Sprintf("Filters %d", snap.ActiveCount)))
	}
	header := strings.Join(parts, "  ")
	if len(snap.Chips) == 0 {
		return header + "\n"
	}
	chips := make([]string, 0, len(snap.Chips))
	for i, c := range snap.Chips {
		style := chipStyle
		if m.mode == modeList && i == m.chipCursor {
			style = chipFocus
		}
		chips = append(chips, style.Render(c.Label+" ×"))
	}
	return header + "\n" + strings.Join(chips, " ") + "\n"
}

func (m model) visibleRows() int {
	// header, chips, help and spacing
	rows := (m.height - 6) / 2
	if rows < 1 {
		return 1
	}
	return rows
}

func (m model) listView() string {
	if m.loadErr != nil {
		return errorStyle.Render("Could not load products: "+m.loadErr.Error()) + "\n" +
			mutedStyle.Render("press r to try again") + "\n"
	}
	if !m.screen.Loaded() {
		return m.spinner.View() + " Loading products...\n"
	}
	view := m.screen.View()
	if len(view) == 0 {
		return "No products match your filters\n" +
			mutedStyle.Render("press c to clear all filters") + "\n"
	}

	visible := m.visibleRows()
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(view))

	width := max(m.width-4, 20)
	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.cardView(view[i], i == m.cursor, width))
	}
	if end < len(view) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("… %d more", len(view)-end)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) cardView(p types.Product, selected bool, width int) string {
	title := fmt.Sprintf("%-5s %s", display.ProductNumber(p.Id), truncate(p.Title, width-6))
	meta := fmt.Sprintf("      %s  %s %s  %s",
		priceStyle.Render(display.Price(p.Price)),
		display.Stars(p.Rating.Rate),
		display.Rate(p.Rating.Rate),
		mutedStyle.Render(p.Category),
	)
	if selected {
		title = selectedStyle.Render(title)
	}
	return title + "\n" + meta + "\n"
}

func (m model) filterView() string {
	draft, ok := m.screen.Draft()
	if !ok {
		draft = m.screen.Applied()
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Filters"))
	b.WriteString("\n")
	var section types.Field
	for i, row := range m.filterRows() {
		if row.kind == rowOption && row.field != section {
			section = row.field
			b.WriteString("\n")
			b.WriteString(headingStyle.Render(sectionTitle(section)))
			b.WriteString("\n")
		}
		if row.kind == rowApply {
			b.WriteString("\n")
		}
		line := row.label
		if row.kind == rowOption {
			mark := "○"
			if row.selected(draft) {
				mark = "●"
			}
			line = mark + " " + row.label
		} else {
			line = "[ " + line + " ]"
		}
		if i == m.filterCursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("a apply • c clear all • esc cancel"))
	return modalStyle.Render(b.String()) + "\n"
}

func sectionTitle(f types.Field) string {
	switch f {
	case types.CategoryField:
		return "Category"
	case types.PriceField:
		return "Price Range"
	case types.RatingField:
		return "Customer Rating"
	}
	return string(f)
}

func (m model) sortView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sort By"))
	b.WriteString("\n\n")
	current := m.screen.Sort()
	for i, o := range types.SortOptions {
		mark := "○"
		if o.Value == current {
			mark = "●"
		}
		line := mark + " " + o.Label
		if i == m.sortCursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return modalStyle.Render(b.String()) + "\n"
}

func (m model) detailView() string {
	if m.detailLoading {
		return m.spinner.View() + " Loading product...\n"
	}
	if m.detailErr != nil {
		return errorStyle.Render("Could not load product: "+m.detailErr.Error()) + "\n" +
			mutedStyle.Render("press r to try again, esc to go back") + "\n"
	}
	if m.detail == nil {
		return ""
	}
	p := m.detail
	width := max(m.width-4, 20)
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(p.Category + "  " + display.ProductNumber(p.Id)))
	b.WriteString("\n\n")
	b.WriteString(priceStyle.Render(display.Price(p.Price)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s  %s\n\n",
		display.Stars(p.Rating.Rate),
		display.Rate(p.Rating.Rate),
		mutedStyle.Render(display.ReviewCount(p.Rating.Count)),
	))
	b.WriteString(lipgloss.NewStyle().Width(width).Render(p.Description))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(p.Image))
	b.WriteString("\n")
	return b.String()
}
