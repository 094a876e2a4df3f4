package analysis

import (
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to return the meeting result schema.
const SystemPrompt = `You are an assistant that turns business meetings into structured minutes.

You receive either a meeting recording or an existing transcript, plus the meeting title,
date and the known participants.

Produce:
- segments: the transcript split into consecutive segments with start and end times in
  seconds, the spoken text, and the speaker name when you can attribute it to a participant.
  When the input is already a transcript without timing, use 0 for start and end.
- summary: a concise paragraph describing what was discussed.
- decisions: each decision the group agreed on, as a short sentence, in the order made.
- tasks: each action item delegated during the meeting, with a short title and the
  assignee's name exactly as it appears in the participant list, or an empty string if
  nobody was named.

You must respond ONLY with JSON:
{"segments":[{"start":0.0,"end":0.0,"text":"","speaker":""}],"summary":"","decisions":[""],"tasks":[{"title":"","assignee":""}]}`

const heldAtLayout = "Monday, 2 January 2006 15:04 MST"

func buildUserPrompt(req Request) string {
	var b strings.Builder
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Untitled meeting"
	}
	fmt.Fprintf(&b, "Meeting: %s\n", title)
	if !req.HeldAt.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", req.HeldAt.Format(heldAtLayout))
	}
	if len(req.Participants) > 0 {
		b.WriteString("Participants:\n")
		for _, p := range req.Participants {
			name := strings.TrimSpace(p.Name)
			if name == "" {
				continue
			}
			if role := strings.TrimSpace(p.Role); role != "" {
				fmt.Fprintf(&b, "- %s (%s)\n", name, role)
			} else {
				fmt.Fprintf(&b, "- %s\n", name)
			}
		}
	}
	if transcript := strings.TrimSpace(req.Transcript); transcript != "" {
		b.WriteString("\nTranscript:\n")
		b.WriteString(transcript)
		b.WriteString("\n")
	} else {
		b.WriteString("\nThe meeting recording is attached.\n")
	}
	return b.String()
}
