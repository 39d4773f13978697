package trello

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachment_IsHosted(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{
			name: "hosted card attachment",
			url:  "https://trello.com/1/cards/c1/attachments/a1/download/img.png",
			want: true,
		},
		{
			name: "hosted on subdomain",
			url:  "https://api.trello.com/1/cards/c1/attachments/a1/download/img.png",
			want: true,
		},
		{
			name: "trello page that is not a card file",
			url:  "https://trello.com/b/abc/my-board",
			want: false,
		},
		{
			name: "external link",
			url:  "https://example.com/cards/doc.pdf",
			want: false,
		},
		{
			name: "lookalike domain",
			url:  "https://eviltrello.com/1/cards/c1/attachments/a1/download/img.png",
			want: false,
		},
		{
			name: "empty url",
			url:  "",
			want: false,
		},
		{
			name: "not a url",
			url:  "::::",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Attachment{URL: tt.url}
			assert.Equal(t, tt.want, a.IsHosted())
		})
	}
}

func TestAttachmentIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "standard download url",
			url:  "https://trello.com/1/cards/c1/attachments/5f2a77/download/img.png",
			want: "5f2a77",
		},
		{
			name: "no attachments segment",
			url:  "https://trello.com/1/cards/c1/img.png",
			want: "unknown",
		},
		{
			name: "attachments segment at end",
			url:  "https://trello.com/1/cards/c1/attachments",
			want: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AttachmentIDFromURL(tt.url))
		})
	}
}
