package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"codefossils/models"
	"codefossils/pipeline"
	"codefossils/scoring"
)

var (
	tierStyles = map[scoring.Tier]lipgloss.Style{
		scoring.TierHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#059669")),
		scoring.TierMedium: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d97706")),
		scoring.TierLow:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6366f1")),
	}
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B6B6B"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
)

const maxDescription = 80

func renderBrowse(w io.Writer, state pipeline.State, now time.Time) {
	if state.Err != "" {
		fmt.Fprintln(w, errorStyle.Render(state.Err))
		return
	}

	q := state.Query
	header := fmt.Sprintf("%s, sorted by %s", q.Category.Label(), q.Sort)
	if q.Search != "" {
		header += fmt.Sprintf(", matching %q", q.Search)
	}
	fmt.Fprintln(w, headerStyle.Render(header))
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("showing %d of %d", len(state.Repos), state.Total)))
	fmt.Fprintln(w)

	if len(state.Repos) == 0 {
		fmt.Fprintln(w, "No fossils found.")
		return
	}

	for _, repo := range state.Repos {
		renderRepo(w, repo, now)
	}

	if state.HasMore {
		fmt.Fprintln(w, dimStyle.Render("more results available, use --pages to load them"))
	}
}

func renderRepo(w io.Writer, repo models.Repository, now time.Time) {
	score := scoring.EffectiveScore(repo)
	badge := tierStyles[scoring.TierOf(score)].Render(fmt.Sprintf("%3d", score))

	fmt.Fprintf(w, "%s  %s  %s\n", badge, headerStyle.Render(repo.FullName), dimStyle.Render(scoring.EffectiveCategory(repo).Label()))
	if repo.Description != "" {
		fmt.Fprintf(w, "     %s\n", shorten(repo.Description, maxDescription))
	}

	meta := []string{
		fmt.Sprintf("★ %d", repo.Stargazers),
		fmt.Sprintf("forks %d", repo.Forks),
		"last push " + scoring.TimeAgoAt(repo.PushedAt, now),
	}
	if repo.Language != "" {
		meta = append([]string{repo.Language}, meta...)
	}
	fmt.Fprintf(w, "     %s\n", dimStyle.Render(strings.Join(meta, " · ")))
	if repo.HTMLURL != "" {
		fmt.Fprintf(w, "     %s\n", repo.HTMLURL)
	}
	fmt.Fprintln(w)
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
