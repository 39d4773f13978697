// Package trello holds the read-only data model and the rate-limit-aware
// HTTP client for the Trello REST API.
package trello

import (
	"net/url"
	"strings"
)

// Board is a snapshot of one workspace. Lists and Cards are populated only
// when the board was fetched with embedding (see Client.BoardExport).
type Board struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Desc             string `json:"desc,omitempty"`
	Closed           bool   `json:"closed"`
	DateLastActivity string `json:"dateLastActivity,omitempty"`

	Lists      []List      `json:"lists,omitempty"`
	Cards      []Card      `json:"cards,omitempty"`
	Checklists []Checklist `json:"checklists,omitempty"`
}

// List is a column of cards. It belongs to exactly one board; cards point
// back at it through Card.ListID.
type List struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
}

type Card struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Desc   string `json:"desc,omitempty"`
	ListID string `json:"idList"`
	Closed bool   `json:"closed"`

	Attachments []Attachment `json:"attachments,omitempty"`

	// Populated by the exporter, not by the API: externally linked
	// attachment URLs plus paths of downloaded payloads, and the URLs of
	// downloads that failed.
	LocalAttachments  []string `json:"local_attachments,omitempty"`
	FailedAttachments []string `json:"failed_attachments,omitempty"`
}

// Checklist belongs to one card, referenced through CardID. The board
// export embeds every checklist of the board in a flat slice.
type Checklist struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	CardID     string      `json:"idCard"`
	CheckItems []CheckItem `json:"checkItems,omitempty"`
}

type CheckItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// IsHosted reports whether the attachment payload lives on Trello's own
// file hosting, which is the only kind the exporter downloads. Externally
// linked URLs are kept as metadata and never fetched.
func (a Attachment) IsHosted() bool {
	u, err := url.Parse(a.URL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host != "trello.com" && !strings.HasSuffix(host, ".trello.com") {
		return false
	}
	return strings.Contains(u.Path, "/cards/")
}

// AttachmentIDFromURL extracts the attachment id from a hosted download
// URL (".../cards/<cardID>/attachments/<id>/download/<name>"). Used as a
// fallback when the metadata carried no id.
func AttachmentIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	parts := strings.Split(u.Path, "/")
	for i, p := range parts {
		if p == "attachments" && i+1 < len(parts) && parts[i+1] != "" {
			return parts[i+1]
		}
	}
	return "unknown"
}
