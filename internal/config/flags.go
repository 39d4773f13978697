package config

import (
	"flag"
	"os"

	"github.com/trellodump/trellodump/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-b string    restrict the export to a single board id
//	-o string    export root directory
//	-debug       enable debug logging
//	-no-attachments
//	             record attachment metadata without downloading payloads
//
// Args are filtered with flagx.FilterArgs so the -c/-config flags handled
// by the credentials store do not trip this flag set.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-o", "-debug", "-no-attachments"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BoardFilter, "b", cfg.BoardFilter, "single board id to export")
	fs.StringVar(&cfg.ExportDir, "o", cfg.ExportDir, "export root directory")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
	noAttachments := fs.Bool("no-attachments", !cfg.DownloadAttachments, "skip attachment downloads")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.DownloadAttachments = !*noAttachments
	return nil
}
