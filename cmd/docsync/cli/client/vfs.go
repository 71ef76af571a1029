package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mwantia/docsync/pkg/mover"
	"github.com/mwantia/docsync/pkg/paths"
	"github.com/mwantia/docsync/pkg/search"
	"github.com/mwantia/docsync/pkg/vault"
)

func NewVfsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vfs",
		Short: "Manage the document vault",
		Long:  "Manage the document vault directly on the configured stores: list, upload, move, flag or remove documents and folders.",
	}

	cmd.PersistentFlags().String("role", "admin", "role to act as (admin, user)")
	cmd.PersistentFlags().String("as", defaultDisplayName(), "display name to act as")

	cmd.AddCommand(NewVfsListCommand())
	cmd.AddCommand(NewVfsStatCommand())
	cmd.AddCommand(NewVfsSearchCommand())
	cmd.AddCommand(NewVfsPutCommand())
	cmd.AddCommand(NewVfsGetCommand())
	cmd.AddCommand(NewVfsRemoveCommand())
	cmd.AddCommand(NewVfsMoveCommand())
	cmd.AddCommand(NewVfsRenameCommand())
	cmd.AddCommand(NewVfsCreateDirectoryCommand())
	cmd.AddCommand(NewVfsFlagCommand())

	return cmd
}

type entryPrinter struct {
	human bool
	long  bool
}

func (p entryPrinter) size(n int64) string {
	if p.human {
		return humanize.Bytes(uint64(n))
	}
	return fmt.Sprintf("%d", n)
}

func flagMarks(e vault.Entry) string {
	marks := []byte("---")
	if e.Completed {
		marks[0] = 'c'
	}
	if e.Reviewed {
		marks[1] = 'r'
	}
	if e.Starred {
		marks[2] = '*'
	}
	return string(marks)
}

func (p entryPrinter) print(out io.Writer, folders []vault.FolderNode, files []vault.Entry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, f := range folders {
		if p.long {
			fmt.Fprintf(w, "d\t-\t-\t-\t%s/\n", f.Name)
		} else {
			fmt.Fprintf(w, "%s/\n", f.Name)
		}
	}
	for _, e := range files {
		if !p.long {
			fmt.Fprintf(w, "%s\n", e.DisplayName)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s (%dd)\t%s\n",
			flagMarks(e),
			p.size(e.Size),
			e.UploadedBy,
			e.Deadline.Level,
			e.Deadline.DaysLeft,
			e.Path)
	}
	return w.Flush()
}

func orderFlags(cmd *cobra.Command) {
	cmd.Flags().String("sort", "", "sort by name, created or updated")
	cmd.Flags().Bool("desc", false, "sort descending")
}

func parseOrderFlags(cmd *cobra.Command) (search.Order, error) {
	field, _ := cmd.Flags().GetString("sort")
	desc, _ := cmd.Flags().GetBool("desc")
	direction := "asc"
	if desc {
		direction = "desc"
	}
	return search.ParseOrder(field, direction)
}

func kindFlag(cmd *cobra.Command) mover.Kind {
	if folder, _ := cmd.Flags().GetBool("folder"); folder {
		return mover.KindFolder
	}
	return mover.KindFile
}

func NewVfsListCommand() *cobra.Command {
	var printer entryPrinter

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List folder entries",
		Long:  "List the folders and documents directly within the given path, reconciling their metadata on the way.",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			folder := paths.Root
			if len(args) > 0 {
				folder = paths.Clean(args[0])
			}

			rawFilter, _ := cmd.Flags().GetString("filter")
			filter, err := vault.ParseFilter(rawFilter)
			if err != nil {
				return err
			}
			order, err := parseOrderFlags(cmd)
			if err != nil {
				return err
			}
			query, _ := cmd.Flags().GetString("query")

			listing, err := s.vault.List(ctx, folder, s.vis, vault.ListOptions{
				Filter: filter,
				Query:  query,
				Sort:   order,
			})
			if err != nil {
				return err
			}
			return printer.print(cmd.OutOrStdout(), listing.Folders, listing.Files)
		}),
	}

	cmd.Flags().BoolVarP(&printer.human, "human", "H", false, "Enable human-readable format")
	cmd.Flags().BoolVarP(&printer.long, "long", "l", false, "Display long format")
	cmd.Flags().StringP("filter", "f", "all", "status filter (all, pending, completed, reviewed, starred, recent)")
	cmd.Flags().StringP("query", "q", "", "only show entries matching every term")
	orderFlags(cmd)

	return cmd
}

func NewVfsStatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Show document metadata",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			e, err := s.vault.Stat(ctx, paths.Clean(args[0]))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Path:\t%s\n", e.Path)
			fmt.Fprintf(w, "Name:\t%s\n", e.DisplayName)
			fmt.Fprintf(w, "Folder:\t%s\n", e.ParentLabel)
			fmt.Fprintf(w, "Size:\t%s\n", humanize.Bytes(uint64(e.Size)))
			fmt.Fprintf(w, "Type:\t%s\n", e.ContentType)
			fmt.Fprintf(w, "Uploaded:\t%s by %s\n", humanize.Time(e.CreatedAt), e.UploadedBy)
			fmt.Fprintf(w, "Deadline:\t%s (%s, %d business days left)\n", e.Deadline.Deadline.Format("2006-01-02"), e.Deadline.Level, e.Deadline.DaysLeft)
			fmt.Fprintf(w, "Completed:\t%t %s\n", e.Completed, e.CompletedBy)
			fmt.Fprintf(w, "Reviewed:\t%t %s\n", e.Reviewed, e.ReviewedBy)
			fmt.Fprintf(w, "Starred:\t%t\n", e.Starred)
			return w.Flush()
		}),
	}
}

func NewVfsSearchCommand() *cobra.Command {
	printer := entryPrinter{long: true, human: true}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search all visible documents",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			order, err := parseOrderFlags(cmd)
			if err != nil {
				return err
			}

			entries, err := s.vault.Search(ctx, s.vis, args[0], order)
			if err != nil {
				return err
			}
			return printer.print(cmd.OutOrStdout(), nil, entries)
		}),
	}

	orderFlags(cmd)
	return cmd
}

func NewVfsPutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <local> <path>",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read '%s': %w", args[0], err)
			}

			record, err := s.vault.Upload(ctx, paths.Clean(args[1]), data, s.vis.DisplayName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s)\n", record.Path, humanize.Bytes(uint64(record.Size)))
			return nil
		}),
	}
}

func NewVfsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path> [local]",
		Short: "Download a document",
		Long:  "Download a document into a local file, or to stdout when no local path is given.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			data, _, err := s.vault.Download(ctx, paths.Clean(args[0]))
			if err != nil {
				return err
			}

			if len(args) == 1 {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(args[1], data, 0644)
		}),
	}
}

func NewVfsRemoveCommand() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "rm <path>...",
		Short: "Remove documents or folders",
		Long:  "Remove one or more documents. With --recursive the path is removed as a folder including everything beneath it.",
		Args:  cobra.MinimumNArgs(1),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			var (
				tally vault.Tally
				err   error
			)

			if recursive {
				if len(args) != 1 {
					return fmt.Errorf("--recursive takes exactly one folder")
				}
				tally, err = s.vault.DeleteFolder(ctx, paths.Clean(args[0]))
				if err != nil {
					return err
				}
			} else {
				targets := make([]paths.Path, 0, len(args))
				for _, arg := range args {
					targets = append(targets, paths.Clean(arg))
				}
				tally = s.vault.BatchDelete(ctx, targets)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d, failed %d\n", tally.Succeeded, len(tally.Failed))
			for _, f := range tally.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", f.Path, f.Err)
			}
			return tally.Err(args[0])
		}),
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Remove a folder and its contents")

	return cmd
}

func NewVfsMoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mv <source> <dest>",
		Short: "Move a document or folder",
		Long:  "Move a document, or with --folder an entire folder, keeping its workflow flags.",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			result, err := s.vault.Move(ctx, mover.Operation{
				Source: paths.Clean(args[0]),
				Dest:   paths.Clean(args[1]),
				Kind:   kindFlag(cmd),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %d object(s)\n", len(result.Moved))
			return nil
		}),
	}

	cmd.Flags().Bool("folder", false, "Move a folder instead of a document")
	return cmd
}

func NewVfsRenameCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <path> <name>",
		Short: "Rename a document or folder in place",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			result, err := s.vault.Rename(ctx, paths.Clean(args[0]), args[1], kindFlag(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %d object(s)\n", len(result.Moved))
			return nil
		}),
	}

	cmd.Flags().Bool("folder", false, "Rename a folder instead of a document")
	return cmd
}

func NewVfsCreateDirectoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create an empty folder",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			node, err := s.vault.CreateFolder(ctx, paths.Clean(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", node.Path)
			return nil
		}),
	}
}

func NewVfsFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flag <path>",
		Short: "Set workflow flags of a document",
		Long:  "Set the completed, reviewed or starred flag of a document. Only the flags given are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error {
			var update vault.FlagUpdate
			for name, target := range map[string]**bool{
				"completed": &update.Completed,
				"reviewed":  &update.Reviewed,
				"starred":   &update.Starred,
			} {
				if !cmd.Flags().Changed(name) {
					continue
				}
				value, _ := cmd.Flags().GetBool(name)
				*target = &value
			}

			e, err := s.vault.SetFlags(ctx, paths.Clean(args[0]), update, s.vis.DisplayName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", flagMarks(e), e.Path)
			return nil
		}),
	}

	cmd.Flags().Bool("completed", false, "mark the document completed")
	cmd.Flags().Bool("reviewed", false, "mark the document reviewed")
	cmd.Flags().Bool("starred", false, "star the document")

	return cmd
}
