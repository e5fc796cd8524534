package diffcompress

import (
	"regexp"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

var criticalPathRE = regexp.MustCompile(`(?i)(secret|password|credential|\.pem$|\.key$|auth|security)`)

// Parse reads a unified diff (as produced by `git diff` / `diff -u`) into
// the engine's own types, per spec §4.7.
func Parse(raw string) (ParseResult, error) {
	fileDiffs, err := godiff.NewMultiFileDiffReader(strings.NewReader(raw)).ReadAllFiles()
	if err != nil {
		return ParseResult{}, err
	}

	result := ParseResult{Raw: raw}
	for _, fd := range fileDiffs {
		change := convertFileDiff(fd)
		result.Files = append(result.Files, change)
		result.Stats.Additions += change.Additions
		result.Stats.Deletions += change.Deletions
	}
	return result, nil
}

func convertFileDiff(fd *godiff.FileDiff) DiffFileChange {
	oldPath := strings.TrimPrefix(fd.OrigName, "a/")
	newPath := strings.TrimPrefix(fd.NewName, "b/")

	change := DiffFileChange{
		OldPath:  oldPath,
		NewPath:  newPath,
		IsNew:    fd.OrigName == "/dev/null",
		IsDelete: fd.NewName == "/dev/null",
	}
	switch {
	case change.IsNew:
		change.Status = StatusAdded
	case change.IsDelete:
		change.Status = StatusDeleted
	case oldPath != newPath:
		change.Status = StatusRenamed
	default:
		change.Status = StatusModified
	}

	for _, h := range fd.Hunks {
		hunk := convertHunk(h)
		hunk.Risk = classifyRisk(hunk, newPath)
		change.Hunks = append(change.Hunks, hunk)
		change.Additions += hunk.additions()
		change.Deletions += hunk.deletions()
	}
	return change
}

func convertHunk(h *godiff.Hunk) Hunk {
	hunk := Hunk{
		OldStart: int(h.OrigStartLine),
		OldCount: int(h.OrigLines),
		NewStart: int(h.NewStartLine),
		NewCount: int(h.NewLines),
	}
	for _, raw := range strings.Split(string(h.Body), "\n") {
		if raw == "" {
			continue
		}
		switch raw[0] {
		case '+':
			hunk.Lines = append(hunk.Lines, DiffLine{Type: LineAdded, Content: raw[1:]})
		case '-':
			hunk.Lines = append(hunk.Lines, DiffLine{Type: LineRemoved, Content: raw[1:]})
		default:
			content := raw
			if len(raw) > 0 && raw[0] == ' ' {
				content = raw[1:]
			}
			hunk.Lines = append(hunk.Lines, DiffLine{Type: LineContext, Content: content})
		}
	}
	return hunk
}

// classifyRisk is a coarse heuristic: deletions of non-trivial size or
// touches to security/credential-adjacent paths rank above pure additions.
func classifyRisk(h Hunk, path string) ChangeRisk {
	if criticalPathRE.MatchString(path) {
		return RiskCritical
	}
	del := h.deletions()
	add := h.additions()
	switch {
	case del == 0:
		return RiskLow
	case del > add*2:
		return RiskHigh
	default:
		return RiskMedium
	}
}
