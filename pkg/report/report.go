// Package report prints stage summaries.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harrisonrobin/backlog/pkg/model"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	changeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	removeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	changeStyle = lipgloss.NewStyle()
	removeStyle = lipgloss.NewStyle()
	warningStyle = lipgloss.NewStyle()
}

type column struct {
	title string
	value func(model.Summary) int
	style *lipgloss.Style
}

var columns = []column{
	{"CREATED", func(s model.Summary) int { return s.Created }, &changeStyle},
	{"UPDATED", func(s model.Summary) int { return s.Updated }, &changeStyle},
	{"REMOVED", func(s model.Summary) int { return s.Removed }, &removeStyle},
	{"SKIPPED", func(s model.Summary) int { return s.Skipped }, &dimStyle},
	{"UNDECIDED", func(s model.Summary) int { return s.Undecided }, &warningStyle},
	{"ALLOWED", func(s model.Summary) int { return s.Allowed }, &changeStyle},
	{"DENIED", func(s model.Summary) int { return s.Denied }, &warningStyle},
	{"SANITIZED", func(s model.Summary) int { return s.Sanitized }, &warningStyle},
}

// Table renders one line per stage summary.
func Table(w io.Writer, sums []model.Summary) {
	if len(sums) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No stages ran."))
		return
	}

	const pad = 2
	stageW := len("STAGE") + pad
	for _, s := range sums {
		stageW = max(stageW, len(s.Stage)+pad)
	}

	header := padRight("STAGE", stageW)
	for _, c := range columns {
		header += " " + padRight(c.title, len(c.title)+pad)
	}
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, s := range sums {
		line := padRight(s.Stage, stageW)
		for _, c := range columns {
			v := c.value(s)
			cell := strconv.Itoa(v)
			if v == 0 {
				cell = dimStyle.Render(cell)
			} else {
				cell = c.style.Render(cell)
			}
			line += " " + padRight(cell, len(c.title)+pad)
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// JSON writes the summaries as indented JSON.
func JSON(w io.Writer, sums []model.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sums); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
