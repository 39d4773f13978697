package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/trellodump/trellodump/internal/trello"
)

// summaryHeader is the column set of the combined summary file.
var summaryHeader = []string{"board", "list", "card", "description", "attachment_count", "attachment_urls"}

// WriteSummary flattens all board records into one CSV with a row per
// card, in board, then list, then card traversal order. The file is
// rewritten in full on every run so it always reflects the latest export.
func WriteSummary(records []*BoardRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(summaryHeader); err != nil {
		f.Close()
		return err
	}

	for _, rec := range records {
		listNames := make(map[string]string, len(rec.Board.Lists))
		for _, l := range rec.Board.Lists {
			listNames[l.ID] = l.Name
		}

		writeCard := func(card trello.Card) error {
			urls := make([]string, 0, len(card.Attachments))
			for _, a := range card.Attachments {
				if a.URL != "" {
					urls = append(urls, a.URL)
				}
			}
			return w.Write([]string{
				rec.Board.Name,
				listNames[card.ListID],
				card.Name,
				flattenNewlines(card.Desc),
				strconv.Itoa(len(card.Attachments)),
				strings.Join(urls, ";"),
			})
		}

		for _, list := range rec.Board.Lists {
			for _, card := range rec.Board.Cards {
				if card.ListID != list.ID {
					continue
				}
				if err := writeCard(card); err != nil {
					f.Close()
					return err
				}
			}
		}
		// Cards whose list was not returned still get a row, so the
		// summary always holds exactly one row per card.
		for _, card := range rec.Board.Cards {
			if _, ok := listNames[card.ListID]; ok {
				continue
			}
			if err := writeCard(card); err != nil {
				f.Close()
				return err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func flattenNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
