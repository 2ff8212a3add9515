package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/docchat-app/docchat/internal/docapi"
	"github.com/docchat-app/docchat/internal/progress"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file|glob>...",
	Short: "Upload documents for question-answering",
	Long: `Uploads one or more documents to the document service. Arguments
may be plain paths or doublestar globs such as 'notes/**/*.pdf'.
Only PDF, TXT, MD and DOCX files are accepted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		gw := newGateway(cfg, st)
		if err := requireAuth(gw); err != nil {
			return err
		}

		paths, err := expandGlobs(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return errors.New("no files matched")
		}

		uploader := docapi.NewUploader(newDocClient(cfg))
		reporter := progress.NewReporter()
		failed := 0
		for _, path := range paths {
			if err := uploadOne(cmd.Context(), cmd.OutOrStdout(), uploader, reporter, path); err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d uploads failed", failed, len(paths))
		}
		return nil
	},
}

func uploadOne(ctx context.Context, out io.Writer, uploader *docapi.Uploader, reporter progress.Reporter, path string) error {
	started := false
	result, err := uploader.Upload(ctx, path, func(sent, total int64) {
		if !started {
			reporter.Start(path, total)
			started = true
		}
		reporter.Update(sent)
	})
	if started {
		reporter.Finish()
	}
	if err != nil {
		if errors.Is(err, docapi.ErrUnsupportedFile) {
			fmt.Fprintf(out, "❌ %s: %s\n", path, docapi.UnsupportedFileMessage)
			return err
		}
		var apiErr *docapi.Error
		if errors.As(err, &apiErr) {
			fmt.Fprintf(out, "❌ Lỗi: %s\n", apiErr.Detail)
			return err
		}
		fmt.Fprintln(out, "❌ Lỗi kết nối. Vui lòng thử lại.")
		return err
	}

	fmt.Fprintf(out, "✅ Upload thành công! Đã xử lý %d chunks.\n", result.ChunksCount)
	fmt.Fprintf(out, "Tài liệu \"%s\" đã được upload thành công! Bạn có thể bắt đầu hỏi đáp.\n", result.DocID)
	return nil
}

// expandGlobs resolves each argument, treating anything without glob
// metacharacters as a literal path.
func expandGlobs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if !hasGlobMeta(arg) {
			paths = append(paths, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

func hasGlobMeta(s string) bool {
	for _, r := range s {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
