package classifier

import (
	"regexp"
	"strconv"
	"strings"
)

// StreamOrigin identifies which child-process stream a line was read from.
type StreamOrigin int

const (
	OriginStdout StreamOrigin = iota
	OriginStderr
)

// ProgressSignal is the final "mirrored / total" report extracted from
// oc-mirror output. The tool may print it more than once; the last one wins.
type ProgressSignal struct {
	Completed int
	Total     int
}

// ClassifiedLine is the result of classifying one raw output line.
// Created per line, never mutated, consumed once by the sink.
type ClassifiedLine struct {
	// DisplayText is the line with any duplicate timestamp/level prefix
	// removed, ready for re-logging through our own logger.
	DisplayText string
	// IsNoise marks known startup banners and warnings that are suppressed
	// from the transcript. Noise lines are still scanned for signals.
	IsNoise bool
	// Progress is non-nil when the line carried a progress-total report.
	Progress *ProgressSignal
	// ItemDone is true when the line reports one image copied successfully.
	ItemDone bool
	Origin   StreamOrigin
}

// noisePatterns are matched case-insensitively anywhere in the raw line.
// They cover oc-mirror's startup banner and a warning that tends to
// confuse users without being actionable.
var noisePatterns = []string{
	"hello, welcome to oc-mirror",
	"setting up the environment for you...",
	"using digest to pull, but tag only for mirroring",
}

var (
	// "48 / 48 additional images mirrored successfully", with or without
	// whitespace around the slash.
	progressTotalRegexp = regexp.MustCompile(`(\d+)\s*/\s*(\d+)\s+additional images mirrored successfully`)
	// One image copied. oc-mirror renders the destination after an arrow
	// glyph; the variation selector after the arrow is optional.
	itemDoneRegexp = regexp.MustCompile(`Success copying .+\x{27A1}`)
	// oc-mirror re-logs through its own logger with a stdlib log timestamp,
	// possibly wrapped in ANSI color escapes.
	logPrefixRegexp = regexp.MustCompile(`^.*?\d{4}/\d{2}/\d{2}\s+\d{2}:\d{2}:\d{2}`)
)

// Classify maps one raw line (trailing newline already removed) from the
// given stream to a ClassifiedLine. It is invoked once per line on a hot
// path and performs no I/O.
func Classify(line string, origin StreamOrigin) ClassifiedLine {
	c := ClassifiedLine{Origin: origin}

	// Signals are extracted from the raw line, before prefix stripping,
	// so that stripping can never consume the numbers.
	if m := progressTotalRegexp.FindStringSubmatch(line); m != nil {
		completed, _ := strconv.Atoi(m[1])
		total, _ := strconv.Atoi(m[2])
		c.Progress = &ProgressSignal{Completed: completed, Total: total}
	}
	c.ItemDone = itemDoneRegexp.MatchString(line)
	c.IsNoise = isNoise(line)
	c.DisplayText = StripLogPrefix(line)
	return c
}

func isNoise(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range noisePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// StripLogPrefix removes oc-mirror's own "2026/02/02 18:12:25  [INFO]   : "
// prefix so the transcript is not double-prefixed when re-logged. Lines
// without a qualifying prefix are returned unchanged.
func StripLogPrefix(line string) string {
	if !logPrefixRegexp.MatchString(line) {
		return line
	}
	idx := strings.Index(line, ": ")
	if idx < 0 {
		return line
	}
	// The separator must follow the bracketed level marker, not a colon
	// inside the message itself.
	if !strings.Contains(line[:idx], "[") {
		return line
	}
	return line[idx+2:]
}
