// Package output encodes analysis findings as colored text, JSON or msgpack.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"exflow/internal/diag"

	"github.com/fatih/color"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnknownFormat is returned for an output format name that is not supported.
var ErrUnknownFormat = errors.New("unknown output format")

type Format string

const (
	Text    Format = "text"
	JSON    Format = "json"
	Msgpack Format = "msgpack"
)

// ParseFormat accepts text, json and msgpack (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Text, JSON, Msgpack:
		return f, nil
	case "":
		return Text, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
}

// Report is the serialized outcome of a run.
type Report struct {
	RunID    string            `json:"run_id" msgpack:"run_id"`
	Root     string            `json:"root" msgpack:"root"`
	Files    int               `json:"files" msgpack:"files"`
	Units    int               `json:"units" msgpack:"units"`
	Findings []diag.Diagnostic `json:"findings" msgpack:"findings"`
}

// Write encodes r to w in format f.
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case Text:
		return writeText(w, r)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case Msgpack:
		return msgpack.NewEncoder(w).Encode(r)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}

// Read decodes a report written as JSON or msgpack.
func Read(rd io.Reader, f Format) (*Report, error) {
	var r Report
	var err error
	switch f {
	case JSON:
		err = json.NewDecoder(rd).Decode(&r)
	case Msgpack:
		err = msgpack.NewDecoder(rd).Decode(&r)
	default:
		return nil, fmt.Errorf("%w: %s cannot be read back", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s report: %w", f, err)
	}
	return &r, nil
}

var severityColors = map[diag.Severity]*color.Color{
	diag.SevHidden:     color.New(color.FgHiBlack),
	diag.SevSuggestion: color.New(color.FgCyan),
	diag.SevWarning:    color.New(color.FgYellow),
	diag.SevError:      color.New(color.FgRed, color.Bold),
}

func writeText(w io.Writer, r Report) error {
	gray := color.New(color.FgHiBlack).SprintFunc()
	counts := make(map[diag.Severity]int)
	for _, d := range r.Findings {
		counts[d.Severity]++
		sev := severityColors[d.Severity].Sprint(d.Severity.String())
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", d.Location, sev, gray(d.RuleID), d.Message); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d file(s), %d code unit(s): %d error(s), %d warning(s), %d suggestion(s)\n",
		r.Files, r.Units, counts[diag.SevError], counts[diag.SevWarning], counts[diag.SevSuggestion])
	return err
}
