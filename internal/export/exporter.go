// Package export materializes board snapshots as local files: one JSON
// record per board, downloaded attachment payloads, and a combined CSV
// summary.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/trellodump/trellodump/internal/common"
	"github.com/trellodump/trellodump/internal/filex"
	"github.com/trellodump/trellodump/internal/logging"
	"github.com/trellodump/trellodump/internal/trello"
)

// Options is the explicit configuration of one exporter instance.
type Options struct {
	// ExportDir is the root all board directories and the summary live
	// under.
	ExportDir string
	// BoardFilter restricts the export to a single board id when set.
	BoardFilter string
	// DownloadAttachments toggles fetching hosted attachment payloads;
	// metadata is recorded either way.
	DownloadAttachments bool
}

type Exporter struct {
	client *trello.Client
	opts   Options
	log    logging.Logger
}

func New(client *trello.Client, opts Options, log logging.Logger) *Exporter {
	if log == nil {
		log = logging.Discard()
	}
	return &Exporter{client: client, opts: opts, log: log}
}

// BoardRecord couples an exported snapshot with the file it was written
// to.
type BoardRecord struct {
	Board *trello.Board
	Path  string
}

// ExportAll enumerates the member's open boards (or just the configured
// one) and exports each in turn. A failing board does not stop its
// siblings; the joined error is returned alongside whatever succeeded so
// the caller can finish the summary and still exit non-zero.
func (e *Exporter) ExportAll(ctx context.Context) ([]*BoardRecord, error) {
	boards, err := e.client.MemberBoards(ctx)
	if err != nil {
		return nil, err
	}

	if e.opts.BoardFilter != "" {
		filtered := boards[:0]
		for _, b := range boards {
			if b.ID == e.opts.BoardFilter {
				filtered = append(filtered, b)
			}
		}
		if len(filtered) == 0 {
			return nil, fmt.Errorf("board %q not found among the member's boards", e.opts.BoardFilter)
		}
		boards = filtered
	}

	e.log.Info(ctx, "starting export", "boards", len(boards))

	var records []*BoardRecord
	var errs []error
	for _, b := range boards {
		rec, err := e.ExportBoard(ctx, b.ID)
		if err != nil {
			e.log.Error(ctx, "board export failed", "board", b.Name, "id", b.ID, "error", err)
			errs = append(errs, fmt.Errorf("board %s (%s): %w", b.Name, b.ID, err))
			continue
		}
		records = append(records, rec)
	}
	return records, errors.Join(errs...)
}

// ExportBoard fetches one board with everything embedded, downloads
// eligible attachments, and writes the record file. List- and card-level
// fetch failures abort the board; attachment failures only leave a marker
// on the card.
func (e *Exporter) ExportBoard(ctx context.Context, boardID string) (*BoardRecord, error) {
	board, err := e.client.BoardExport(ctx, boardID)
	if err != nil {
		return nil, err
	}

	slug := filex.Slug(board.Name)
	boardDir, err := filex.EnsureDir(filepath.Join(e.opts.ExportDir, fmt.Sprintf("%s_%s", slug, board.ID)))
	if err != nil {
		return nil, err
	}

	for i := range board.Cards {
		if err := e.exportCardAttachments(ctx, boardDir, &board.Cards[i]); err != nil {
			return nil, err
		}
	}

	recordPath := filepath.Join(boardDir, fmt.Sprintf("board_%s_%s.json", slug, board.ID))
	data, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(recordPath, append(data, '\n'), 0o660); err != nil {
		return nil, err
	}

	e.log.Info(ctx, "wrote board record", "board", board.Name, "path", recordPath,
		"lists", len(board.Lists), "cards", len(board.Cards))
	return &BoardRecord{Board: board, Path: recordPath}, nil
}

// exportCardAttachments resolves a card's attachment metadata, records
// external URLs, and downloads hosted payloads.
func (e *Exporter) exportCardAttachments(ctx context.Context, boardDir string, card *trello.Card) error {
	atts := card.Attachments
	if len(atts) == 0 {
		// Embedding occasionally omits attachments; ask for them
		// directly before concluding the card has none.
		fetched, err := e.client.CardAttachments(ctx, card.ID)
		if err != nil {
			return err
		}
		atts = fetched
		card.Attachments = atts
	}

	var hosted []trello.Attachment
	for _, att := range atts {
		if att.IsHosted() {
			hosted = append(hosted, att)
			continue
		}
		if att.URL != "" {
			card.LocalAttachments = append(card.LocalAttachments, att.URL)
		}
	}

	if !e.opts.DownloadAttachments {
		return nil
	}

	for _, att := range hosted {
		dest, err := e.downloadAttachment(ctx, boardDir, card.ID, att)
		if err != nil {
			e.log.Warn(ctx, "attachment download failed",
				"card", card.ID, "attachment", att.ID, "url", att.URL, "error", err)
			card.FailedAttachments = append(card.FailedAttachments, att.URL)
			continue
		}
		card.LocalAttachments = append(card.LocalAttachments, dest)
	}
	return nil
}

// downloadAttachment fetches one hosted payload into
// attachments/{cardID}_{attachmentID}/{safe filename} under the board
// directory. An existing file is kept as-is so re-runs never re-download.
// The returned path is relative to the export root with forward slashes,
// keeping records byte-identical across machines.
func (e *Exporter) downloadAttachment(ctx context.Context, boardDir, cardID string, att trello.Attachment) (string, error) {
	attID := att.ID
	if attID == "" {
		attID = trello.AttachmentIDFromURL(att.URL)
	}

	dir, err := filex.EnsureDir(filepath.Join(boardDir, "attachments", cardID+"_"+attID))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrAttachmentDownload, err)
	}

	name := att.Name
	if name == "" {
		if u, err := url.Parse(att.URL); err == nil {
			name = path.Base(u.Path)
		}
	}
	dest := filepath.Join(dir, filex.SafeFilename(name))

	rel, err := filepath.Rel(e.opts.ExportDir, dest)
	if err != nil {
		rel = dest
	}
	rel = filepath.ToSlash(rel)

	if _, err := os.Stat(dest); err == nil {
		e.log.Debug(ctx, "attachment already present", "path", rel)
		return rel, nil
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrAttachmentDownload, err)
	}
	if err := e.client.Download(ctx, att.URL, f); err != nil {
		f.Close()
		os.Remove(dest)
		return "", fmt.Errorf("%w: %v", common.ErrAttachmentDownload, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("%w: %v", common.ErrAttachmentDownload, err)
	}

	e.log.Debug(ctx, "downloaded attachment", "path", rel)
	return rel, nil
}
