package domain

import "strings"

const (
	compositeSep = "---"
	legacySep    = "_"
)

// DeleteTarget identifies what a delete request refers to: a whole
// participant when Part is empty, or one part's attempt history otherwise.
type DeleteTarget struct {
	ParticipantID string
	Part          string
}

// IsWholeParticipant reports whether the target addresses the entire record.
func (t DeleteTarget) IsWholeParticipant() bool { return t.Part == "" }

// RowID builds the composite identifier exposed on list rows. Slashes in
// part labels are sanitized to dashes so the id stays path-safe; "---"
// cannot collide with a single sanitized dash or the legacy separator.
func RowID(participantID, part string) string {
	return participantID + compositeSep + strings.ReplaceAll(part, "/", "-")
}

// ParseDeleteTarget decodes an incoming identifier. Identifiers containing
// "---" (or the legacy "_" separator) are split on the first occurrence and
// address a single part; dashes in the part are mapped back to slashes,
// which is lossy for labels that legitimately contain dashes. Anything else
// addresses the whole participant.
func ParseDeleteTarget(id string) DeleteTarget {
	for _, sep := range []string{compositeSep, legacySep} {
		if i := strings.Index(id, sep); i >= 0 {
			return DeleteTarget{
				ParticipantID: id[:i],
				Part:          strings.ReplaceAll(id[i+len(sep):], "-", "/"),
			}
		}
	}
	return DeleteTarget{ParticipantID: id}
}
