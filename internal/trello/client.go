package trello

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/trellodump/trellodump/internal/common"
	"github.com/trellodump/trellodump/internal/logging"
)

// errThrottled marks a 429 response inside the retry loop. It never
// escapes: exhaustion is reported as common.ErrRateLimitExceeded.
var errThrottled = errors.New("throttled")

// Client wraps an OAuth1-signing *http.Client with throttling-aware
// retries. Every data call of the exporter goes through it; the handshake
// does not (the handshake is never retried).
type Client struct {
	baseURL    string
	http       *http.Client
	maxRetries uint64
	baseDelay  time.Duration
	log        logging.Logger
}

type Options struct {
	// BaseURL of the REST API, e.g. "https://api.trello.com/1".
	BaseURL string
	// HTTPClient must already sign requests (see auth.SignedClient).
	HTTPClient *http.Client
	// MaxRetries bounds how many times a throttled request is re-sent.
	MaxRetries uint64
	// BaseDelay seeds the exponential backoff between retries.
	BaseDelay time.Duration
	Logger    logging.Logger
}

func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		http:       opts.HTTPClient,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		log:        opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = "https://api.trello.com/1"
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.baseDelay <= 0 {
		c.baseDelay = 1 * time.Second
	}
	if c.log == nil {
		c.log = logging.Discard()
	}
	return c
}

// newBackoff builds the retry policy for one request. The hint pointer
// carries the Retry-After value of the latest throttled response; when set
// it overrides the computed delay for that attempt only.
func (c *Client) newBackoff(hint *time.Duration) retry.Backoff {
	base := retry.NewExponential(c.baseDelay)
	withHint := retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := base.Next()
		if stop {
			return 0, true
		}
		if *hint > 0 {
			d = *hint
			*hint = 0
		}
		return d, false
	})
	return retry.WithMaxRetries(c.maxRetries, withHint)
}

// parseRetryAfter reads an integer-seconds Retry-After header. Absent or
// unparseable values yield 0 so the backoff policy decides.
func parseRetryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// do issues a GET for fullURL, re-sending it on 429 per the backoff
// policy. On a 2xx response sink is invoked with the response; any other
// status is an *common.APIError and is not retried.
func (c *Client) do(ctx context.Context, fullURL string, accept string, sink func(*http.Response) error) error {
	var hint time.Duration
	err := retry.Do(ctx, c.newBackoff(&hint), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return err
		}
		if accept != "" {
			req.Header.Set("Accept", accept)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrNet, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			_, _ = io.Copy(io.Discard, resp.Body)
			hint = parseRetryAfter(resp.Header)
			c.log.Warn(ctx, "throttled by api", "url", fullURL, "retry_after", hint)
			return retry.RetryableError(errThrottled)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
			return &common.APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}
		return sink(resp)
	})

	if errors.Is(err, errThrottled) {
		return fmt.Errorf("%w: gave up after %d attempts", common.ErrRateLimitExceeded, c.maxRetries+1)
	}
	return err
}

// get fetches baseURL+path with the given query and returns the raw body.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body []byte
	err := c.do(ctx, endpoint, "application/json", func(resp *http.Response) error {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrNet, err)
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func decode(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDecode, err)
	}
	return nil
}

// MemberBoards returns the authenticated member's boards, closed ones
// filtered out.
func (c *Client) MemberBoards(ctx context.Context) ([]Board, error) {
	raw, err := c.get(ctx, "/members/me/boards", url.Values{
		"fields": {"name,closed,dateLastActivity"},
	})
	if err != nil {
		return nil, err
	}

	var boards []Board
	if err := decode(raw, &boards); err != nil {
		return nil, err
	}

	open := boards[:0]
	for _, b := range boards {
		if !b.Closed {
			open = append(open, b)
		}
	}
	return open, nil
}

// BoardExport fetches one board with its lists, cards, checklists and
// attachment metadata embedded in a single call, which keeps the
// round-trip count at one per board for the common case.
func (c *Client) BoardExport(ctx context.Context, boardID string) (*Board, error) {
	raw, err := c.get(ctx, "/boards/"+boardID, url.Values{
		"lists":             {"all"},
		"cards":             {"all"},
		"checklists":        {"all"},
		"card_attachments":  {"true"},
		"attachment_fields": {"id,name,url"},
		"fields":            {"name,desc,closed,dateLastActivity"},
	})
	if err != nil {
		return nil, err
	}

	board := new(Board)
	if err := decode(raw, board); err != nil {
		return nil, err
	}
	return board, nil
}

// CardAttachments fetches attachment metadata for one card. Fallback for
// cards whose attachments were not embedded in the board payload.
func (c *Client) CardAttachments(ctx context.Context, cardID string) ([]Attachment, error) {
	raw, err := c.get(ctx, "/cards/"+cardID+"/attachments", url.Values{
		"fields": {"id,name,url"},
	})
	if err != nil {
		return nil, err
	}

	var atts []Attachment
	if err := decode(raw, &atts); err != nil {
		return nil, err
	}
	return atts, nil
}

// Download streams a signed GET of rawURL into w. It shares the
// throttling-aware loop with the JSON calls; a copy failure after the
// response started is not retried.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) error {
	return c.do(ctx, rawURL, "", func(resp *http.Response) error {
		if _, err := io.Copy(w, resp.Body); err != nil {
			return fmt.Errorf("%w: %v", common.ErrNet, err)
		}
		return nil
	})
}
