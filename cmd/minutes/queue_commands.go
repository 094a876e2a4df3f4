package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"minutes/internal/api"
	"minutes/internal/ipc"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage analysis jobs",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueEnqueueCommand(ctx))
	queueCmd.AddCommand(newQueueCancelCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs in queue order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ListJobs(statuses)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Jobs)
				}
				if len(resp.Jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Meeting", "Kind", "Status", "Progress", "Created", "Message"},
					buildJobRows(resp.Jobs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by status (pending, processing, completed, errored)")
	addJSONFlag(cmd, &asJSON)
	return cmd
}

func buildJobRows(jobs []api.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		message := job.Message
		if job.Error != "" {
			message = job.Error
		}
		rows = append(rows, []string{
			job.ID,
			job.SubjectID,
			job.Kind,
			job.Status,
			strconv.Itoa(job.Progress) + "%",
			formatTimestamp(job.CreatedAt),
			message,
		})
	}
	return rows
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ShowJob(args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Job)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				job := resp.Job
				fmt.Fprintln(out, renderStatusLine("Job", statusInfo, job.ID, colorize))
				fmt.Fprintln(out, renderStatusLine("Meeting", statusInfo, job.SubjectID, colorize))
				fmt.Fprintln(out, renderStatusLine("Kind", statusInfo, job.Kind, colorize))
				fmt.Fprintln(out, renderStatusLine("Status", jobStatusKind(job.Status), job.Status, colorize))
				fmt.Fprintln(out, renderStatusLine("Progress", statusInfo, fmt.Sprintf("%d%% %s", job.Progress, job.Message), colorize))
				if job.Error != "" {
					fmt.Fprintln(out, renderStatusLine("Error", statusError, job.Error, colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Created", statusInfo, formatTimestamp(job.CreatedAt), colorize))
				if job.StartedAt != "" {
					fmt.Fprintln(out, renderStatusLine("Started", statusInfo, formatTimestamp(job.StartedAt), colorize))
				}
				if job.CompletedAt != "" {
					fmt.Fprintln(out, renderStatusLine("Finished", statusInfo, formatTimestamp(job.CompletedAt), colorize))
				}
				return nil
			})
		},
	}
	addJSONFlag(cmd, &asJSON)
	return cmd
}

func newQueueEnqueueCommand(ctx *commandContext) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "enqueue <meeting-id>",
		Short: "Queue analysis for a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Enqueue(args[0], kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %s\n", resp.JobID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "audio", "Job kind: audio (full analysis) or text (re-analyze transcript)")
	return cmd
}

func newQueueCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a pending or processing job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Cancel(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled job %s\n", args[0])
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Queue a new job for an errored one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Retry(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %s (retry of %s)\n", resp.JobID, args[0])
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove completed and errored jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ClearFinished()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d finished job(s)\n", resp.Removed)
				return nil
			})
		},
	}
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the job database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				health, err := client.DatabaseHealth()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderStatusLine("Database", statusInfo, health.DBPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Schema version", statusInfo, strconv.Itoa(health.SchemaVersion), colorize))
				fmt.Fprintln(out, renderStatusLine("Jobs table", okKind(health.TableExists), yesNo(health.TableExists), colorize))
				fmt.Fprintln(out, renderStatusLine("Integrity", okKind(health.IntegrityCheck), yesNo(health.IntegrityCheck), colorize))
				fmt.Fprintln(out, renderStatusLine("Total jobs", statusInfo, strconv.Itoa(health.TotalJobs), colorize))
				if len(health.MissingColumns) > 0 {
					fmt.Fprintln(out, renderStatusLine("Missing columns", statusError, fmt.Sprint(health.MissingColumns), colorize))
				}
				if health.Error != "" {
					fmt.Fprintln(out, renderStatusLine("Error", statusError, health.Error, colorize))
				}
				return nil
			})
		},
	}
}
