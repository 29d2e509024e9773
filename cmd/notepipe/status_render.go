package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"notepipe/internal/splitcache"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 14
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func renderValueLine(label, value string) string {
	return fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", value)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// cacheStatusLines renders a split cache status block.
func cacheStatusLines(st splitcache.Status, enabled, colorize bool) []string {
	lines := []string{renderValueLine("Path", st.Path)}
	switch {
	case !enabled:
		lines = append(lines, renderStatusLine("Cache", statusInfo, "disabled in configuration", colorize))
	case !st.Exists:
		lines = append(lines, renderStatusLine("Cache", statusInfo, st.Reason, colorize))
	case !st.Readable:
		lines = append(lines, renderStatusLine("Cache", statusError, "unreadable: "+st.Reason, colorize))
	case !st.Current:
		lines = append(lines, renderStatusLine("Cache", statusWarn, "stale: "+st.Reason, colorize))
	default:
		lines = append(lines, renderStatusLine("Cache", statusOK, "current", colorize))
	}
	if !st.Exists {
		return lines
	}
	lines = append(lines, renderValueLine("Size", humanize.IBytes(uint64(st.Size))))
	if st.Readable {
		lines = append(lines,
			renderValueLine("Created", fmt.Sprintf("%s (%s)", st.CreatedAt.Local().Format(time.DateTime), humanize.Time(st.CreatedAt))),
			renderValueLine("Split", fmt.Sprintf("%d train / %d test", st.Train, st.Test)),
			renderValueLine("Labels", fmt.Sprintf("%d", st.Labels)),
		)
	}
	return lines
}
