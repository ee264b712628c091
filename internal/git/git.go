package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

type ChangedFile struct {
	Path         string
	ChangedLines []int
}

// GetChangedFiles runs git diff in dir and returns the files changed since
// baseRef with their added or modified line numbers.
func GetChangedFiles(ctx context.Context, dir, baseRef string) ([]ChangedFile, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "-U0", "--no-color", baseRef, "--", "*.cs")
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}

	return parseDiff(output)
}

// Regex for chunk header: @@ -oldStart,oldLen +newStart,newLen @@
var chunkHeader = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

func parseDiff(output []byte) ([]ChangedFile, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var changes []ChangedFile
	var currentFile *ChangedFile

	flush := func() {
		if currentFile != nil && currentFile.Path != "" {
			changes = append(changes, *currentFile)
		}
		currentFile = nil
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "diff --git") {
			flush()
			currentFile = &ChangedFile{ChangedLines: []int{}}
			// a/path b/path; the new path is confirmed by the +++ line.
			if parts := strings.Fields(line); len(parts) >= 4 {
				currentFile.Path = strings.TrimPrefix(parts[3], "b/")
			}
			continue
		}

		if currentFile == nil {
			continue
		}

		if strings.HasPrefix(line, "+++ ") {
			target := strings.TrimPrefix(line, "+++ ")
			if target == "/dev/null" {
				// deleted file: nothing left to report on
				currentFile.Path = ""
			} else {
				currentFile.Path = strings.TrimPrefix(target, "b/")
			}
			continue
		}

		if strings.HasPrefix(line, "@@") {
			matches := chunkHeader.FindStringSubmatch(line)
			if len(matches) < 2 {
				continue
			}
			startLine, err := strconv.Atoi(matches[1])
			if err != nil {
				return nil, fmt.Errorf("bad hunk header %q: %w", line, err)
			}
			count := 1 // Default length is 1 if omitted
			if len(matches) > 2 && matches[2] != "" {
				if count, err = strconv.Atoi(matches[2]); err != nil {
					return nil, fmt.Errorf("bad hunk header %q: %w", line, err)
				}
			}
			// count 0 is a pure deletion: no line of the new file changed.
			for i := 0; i < count; i++ {
				currentFile.ChangedLines = append(currentFile.ChangedLines, startLine+i)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return changes, nil
}

// TopLevel returns the root of the repository containing dir; diff paths are
// relative to it. It falls back to dir outside a repository.
func TopLevel(ctx context.Context, dir string) string {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return dir
	}
	return strings.TrimSpace(string(out))
}
