package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"minutes/internal/api"
	"minutes/internal/config"
	"minutes/internal/ipc"
)

func newMeetingCommand(ctx *commandContext) *cobra.Command {
	meetingCmd := &cobra.Command{
		Use:   "meeting",
		Short: "Record and inspect meetings",
	}
	meetingCmd.AddCommand(newMeetingAddCommand(ctx))
	meetingCmd.AddCommand(newMeetingListCommand(ctx))
	meetingCmd.AddCommand(newMeetingShowCommand(ctx))
	return meetingCmd
}

func newMeetingAddCommand(ctx *commandContext) *cobra.Command {
	var (
		heldAt         string
		audioPath      string
		transcriptFile string
		participants   []string
		analyze        bool
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Record a meeting from an audio file or transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.AddMeetingRequest{
				Title:   args[0],
				HeldAt:  heldAt,
				Analyze: analyze,
			}
			if audioPath != "" {
				expanded, err := config.ExpandPath(audioPath)
				if err != nil {
					return fmt.Errorf("resolve audio path: %w", err)
				}
				if _, err := os.Stat(expanded); err != nil {
					return fmt.Errorf("audio file: %w", err)
				}
				req.AudioPath = expanded
			}
			if transcriptFile != "" {
				data, err := os.ReadFile(transcriptFile)
				if err != nil {
					return fmt.Errorf("read transcript: %w", err)
				}
				req.Transcript = string(data)
			}
			for _, raw := range participants {
				req.Participants = append(req.Participants, parseParticipant(raw))
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.AddMeeting(req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Recorded meeting %s\n", resp.Meeting.ID)
				if resp.JobID != "" {
					fmt.Fprintf(out, "Queued job %s\n", resp.JobID)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&heldAt, "held-at", "", "Meeting date (YYYY-MM-DD or RFC3339); defaults to now")
	cmd.Flags().StringVarP(&audioPath, "audio", "a", "", "Path to the meeting recording")
	cmd.Flags().StringVarP(&transcriptFile, "transcript", "t", "", "Path to a plain-text transcript")
	cmd.Flags().StringArrayVarP(&participants, "participant", "p", nil, "Participant as \"Name\" or \"Name:Role\" (repeatable)")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "Queue analysis immediately")
	return cmd
}

func parseParticipant(raw string) api.Participant {
	name, role, _ := strings.Cut(raw, ":")
	return api.Participant{Name: strings.TrimSpace(name), Role: strings.TrimSpace(role)}
}

func newMeetingListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meetings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ListMeetings()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Meetings)
				}
				if len(resp.Meetings) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No meetings recorded")
					return nil
				}
				rows := make([][]string, 0, len(resp.Meetings))
				for _, m := range resp.Meetings {
					rows = append(rows, []string{
						m.ID,
						m.Title,
						formatTimestamp(m.HeldAt),
						yesNo(m.Processed),
						firstLine(m.Summary),
					})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Held", "Processed", "Summary"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	addJSONFlag(cmd, &asJSON)
	return cmd
}

func newMeetingShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var withTranscript bool
	cmd := &cobra.Command{
		Use:   "show <meeting-id>",
		Short: "Show a meeting with its summary, decisions, tasks, and jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ShowMeeting(args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Meeting)
				}
				renderMeeting(cmd, resp.Meeting, withTranscript)
				return nil
			})
		},
	}
	addJSONFlag(cmd, &asJSON)
	cmd.Flags().BoolVar(&withTranscript, "transcript", false, "Include transcript segments")
	return cmd
}

func renderMeeting(cmd *cobra.Command, m api.Meeting, withTranscript bool) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader(m.Title, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("ID", statusInfo, m.ID, colorize))
	fmt.Fprintln(out, renderStatusLine("Held", statusInfo, formatTimestamp(m.HeldAt), colorize))
	fmt.Fprintln(out, renderStatusLine("Processed", okKind(m.Processed), yesNo(m.Processed), colorize))
	if m.AudioPath != "" {
		fmt.Fprintln(out, renderStatusLine("Audio", statusInfo, m.AudioPath, colorize))
	}
	if len(m.Participants) > 0 {
		names := make([]string, 0, len(m.Participants))
		for _, p := range m.Participants {
			if p.Role != "" {
				names = append(names, p.Name+" ("+p.Role+")")
			} else {
				names = append(names, p.Name)
			}
		}
		fmt.Fprintln(out, renderStatusLine("Participants", statusInfo, strings.Join(names, ", "), colorize))
	}

	if m.Summary != "" {
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader("Summary", colorize) {
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out, m.Summary)
	}
	if len(m.Decisions) > 0 {
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader("Decisions", colorize) {
			fmt.Fprintln(out, line)
		}
		for _, d := range m.Decisions {
			fmt.Fprintf(out, "- %s\n", d)
		}
	}
	if len(m.Tasks) > 0 {
		fmt.Fprintln(out)
		rows := make([][]string, 0, len(m.Tasks))
		for _, task := range m.Tasks {
			assignee := task.AssigneeName
			if assignee == "" {
				assignee = "-"
			}
			rows = append(rows, []string{task.Title, assignee})
		}
		fmt.Fprint(out, renderTable([]string{"Task", "Assignee"}, rows, nil))
	}
	if len(m.Jobs) > 0 {
		fmt.Fprintln(out)
		rows := make([][]string, 0, len(m.Jobs))
		for _, job := range m.Jobs {
			rows = append(rows, []string{job.ID, job.Kind, job.Status, strconv.Itoa(job.Progress) + "%", formatTimestamp(job.CreatedAt)})
		}
		fmt.Fprint(out, renderTable(
			[]string{"Job", "Kind", "Status", "Progress", "Created"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		))
	}
	if withTranscript && len(m.Segments) > 0 {
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader("Transcript", colorize) {
			fmt.Fprintln(out, line)
		}
		for _, s := range m.Segments {
			speaker := s.Speaker
			if speaker == "" {
				speaker = "?"
			}
			fmt.Fprintf(out, "[%s] %s: %s\n", formatOffset(s.Start), speaker, s.Text)
		}
	}
}

// formatOffset renders seconds as m:ss.
func formatOffset(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
