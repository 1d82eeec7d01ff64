package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/bizdesk/internal/controller"
	"github.com/sadopc/bizdesk/internal/core/history"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/output"
	"github.com/sadopc/bizdesk/internal/upload"
)

func newFilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"file", "f"},
		Short:   "Upload, list and download contract and drawing files",
	}
	cmd.AddCommand(
		newFilesListCmd(a),
		newFilesStatsCmd(a),
		newFilesShowCmd(a),
		newFilesUploadCmd(a),
		newFilesDownloadCmd(a),
		newFilesURLCmd(a),
		newFilesDeleteCmd(a),
		newFilesHistoryCmd(a),
	)
	return cmd
}

func parseTypeFlag(s string) (model.FileType, error) {
	if s == "" || s == "all" {
		return 0, nil
	}
	return model.ParseFileType(s)
}

func newFilesListCmd(a *app) *cobra.Command {
	var (
		typ, company, search string
		page                 int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded files, one server page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ft, err := parseTypeFlag(typ)
			if err != nil {
				return err
			}
			list := controller.NewFileList(a.svc.Files, controller.WithBoard(a.board), controller.WithLogger(a.logger.Named("controller")))
			// filters are set before the single fetch below
			q := list.Query()
			q.Type, q.CompanyID, q.Search, q.Page = ft, company, search, page
			if err := list.SetQuery(ctx, q); err != nil {
				return err
			}
			p := list.Page()
			return a.printResult(p, func(w io.Writer) { output.Files(w, p) })
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&typ, "type", "t", "", "file type: contract, drawing or all")
	fl.StringVar(&company, "company", "", "only files of this company")
	fl.StringVarP(&search, "search", "s", "", "search term")
	fl.IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}

func newFilesStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show file counts per type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.svc.Files.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return a.printResult(s, func(w io.Writer) { output.Stats(w, s) })
		},
	}
}

func newFilesShowCmd(a *app) *cobra.Command {
	var (
		company string
		content bool
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show file metadata, or its inline content with --content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			companyID, err := a.selectedCompany(ctx, company)
			if err != nil {
				return err
			}
			if content {
				data, err := a.svc.Files.Content(ctx, args[0], companyID)
				if err != nil {
					return err
				}
				_, err = a.stdout.Write(data)
				return err
			}
			p, err := a.svc.Files.Preview(ctx, args[0], companyID)
			if err != nil {
				return err
			}
			return a.printResult(p, func(w io.Writer) { output.FilePreview(w, p) })
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&company, "company", "", "company id (default the selected company)")
	fl.BoolVar(&content, "content", false, "write the file content to stdout")
	return cmd
}

func newFilesUploadCmd(a *app) *cobra.Command {
	var (
		typ, company string
		quiet        bool
	)
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files one after another",
		Long: "Upload files one after another. Contracts accept .pdf, drawings accept\n" +
			".jpg, .jpeg, .png, .gif and .webp. Exits with status 1 when some files failed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ft, err := model.ParseFileType(typ)
			if err != nil {
				return err
			}
			companyID, err := a.selectedCompany(ctx, company)
			if err != nil {
				return err
			}
			store, err := a.historyStore()
			if err != nil {
				return err
			}

			files := make([]upload.File, 0, len(args))
			for _, p := range args {
				f, err := upload.LocalFile(p)
				if err != nil {
					return err
				}
				files = append(files, f)
			}

			var mu sync.Mutex
			progress := func(name string, pct int) {
				if quiet {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				switch {
				case pct < 0:
					fmt.Fprintf(a.stderr, "\r%-40s failed\n", output.Truncate(name, 40))
				case pct == 100:
					fmt.Fprintf(a.stderr, "\r%-40s %3d%%\n", output.Truncate(name, 40), pct)
				default:
					fmt.Fprintf(a.stderr, "\r%-40s %3d%%", output.Truncate(name, 40), pct)
				}
			}
			batch := upload.NewBatch(a.transport, upload.BatchConfig{
				Path:       a.cfg.UploadPath,
				FileType:   ft,
				CompanyID:  companyID,
				Limits:     a.limits(),
				Recorder:   store,
				Logger:     a.logger.Named("upload"),
				OnProgress: progress,
			})
			if problems := batch.Add(files...); len(problems) > 0 {
				return problems
			}
			result, err := batch.Run(ctx)
			if err != nil {
				return err
			}
			if err := a.printResult(result, func(w io.Writer) { output.Batch(w, result) }); err != nil {
				return err
			}
			if n := len(result.Failed); n > 0 {
				return &partialError{msg: fmt.Sprintf("%d of %d uploads failed", n, n+result.Succeeded)}
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&typ, "type", "t", "contract", "file type: contract or drawing")
	fl.StringVar(&company, "company", "", "company id (default the selected company)")
	fl.BoolVarP(&quiet, "quiet", "q", false, "do not print progress")
	return cmd
}

func newFilesDownloadCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := a.svc.Files.Download(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out == "-" {
				_, err := a.stdout.Write(data)
				return err
			}
			target := out
			if target == "" {
				target = name
			}
			if target == "" {
				target = "file-" + args[0]
			}
			if info, err := os.Stat(target); err == nil && info.IsDir() {
				target = filepath.Join(target, firstName(name, "file-"+args[0]))
			}
			if err := os.WriteFile(target, data, 0o644); err != nil {
				return fmt.Errorf("saving download: %w", err)
			}
			a.logger.Debug("downloaded", zap.String("id", args[0]), zap.String("path", target), zap.Int("bytes", len(data)))
			fmt.Fprintf(a.stdout, "Saved %s (%s)\n", target, output.Size(fmt.Sprint(len(data))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path or directory, - for stdout")
	return cmd
}

func firstName(names ...string) string {
	for _, n := range names {
		if n != "" {
			return filepath.Base(n)
		}
	}
	return ""
}

func newFilesURLCmd(a *app) *cobra.Command {
	var copyURL bool
	cmd := &cobra.Command{
		Use:   "url <id>",
		Short: "Print the direct download address of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := a.svc.Files.DownloadURL(args[0])
			fmt.Fprintln(a.stdout, u)
			if copyURL {
				if err := clipboard.WriteAll(u); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(a.stderr, "Copied to clipboard")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyURL, "copy", false, "also copy the address to the clipboard")
	return cmd
}

func newFilesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.Files.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Deleted file %s\n", args[0])
			return nil
		},
	}
}

func newFilesHistoryCmd(a *app) *cobra.Command {
	var (
		failed  bool
		limit   int
		search  string
		typ     string
		company string
		since   time.Duration
		remove  int64
		clear   bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past uploads from the local history",
		Example: "  bizdesk files history --failed --since 24h\n" +
			"  bizdesk files history --type drawing --company 3",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.historyStore()
			if err != nil {
				return err
			}
			switch {
			case clear:
				if err := store.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, "Upload history cleared")
				return nil
			case remove > 0:
				if err := store.Delete(remove); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Removed history entry %d\n", remove)
				return nil
			}

			f := history.Filter{FileName: search, CompanyID: company, Failed: failed, Limit: limit}
			if typ != "" {
				ft, err := model.ParseFileType(typ)
				if err != nil {
					return err
				}
				f.FileType = int(ft)
			}
			if since > 0 {
				f.Since = time.Now().Add(-since)
			}
			entries, err := store.ListFiltered(f)
			if err != nil {
				return err
			}
			total, err := store.Count()
			if err != nil {
				return err
			}
			return a.printResult(entries, func(w io.Writer) {
				output.History(w, entries)
				if len(entries) > 0 {
					fmt.Fprintf(w, "%d of %d recorded uploads\n", len(entries), total)
				}
			})
		},
	}
	fl := cmd.Flags()
	fl.BoolVar(&failed, "failed", false, "only failed uploads")
	fl.IntVarP(&limit, "limit", "n", 50, "maximum entries")
	fl.StringVarP(&search, "search", "s", "", "filter by file name")
	fl.StringVarP(&typ, "type", "t", "", "filter by file type: contract or drawing")
	fl.StringVar(&company, "company", "", "filter by company id")
	fl.DurationVar(&since, "since", 0, "only uploads newer than this, e.g. 24h")
	fl.Int64Var(&remove, "delete", 0, "remove one entry by id")
	fl.BoolVar(&clear, "clear", false, "delete the whole history")
	return cmd
}
