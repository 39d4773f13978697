// Package auth implements the one-time OAuth1 three-legged handshake
// against Trello and builds the signing HTTP client used for data calls.
//
// The handshake runs only when the credential store has no access token
// pair. It is interactive: the operator opens an authorization URL, then
// supplies the verification code out-of-band. None of the three round
// trips is retried; a transport failure aborts the run.
package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/dghubble/oauth1"
	"golang.org/x/term"

	"github.com/trellodump/trellodump/internal/common"
	"github.com/trellodump/trellodump/internal/logging"
)

// isTerminal is a test seam.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// TrelloEndpoint holds Trello's OAuth1 URLs.
var TrelloEndpoint = oauth1.Endpoint{
	RequestTokenURL: "https://trello.com/1/OAuthGetRequestToken",
	AuthorizeURL:    "https://trello.com/1/OAuthAuthorizeToken",
	AccessTokenURL:  "https://trello.com/1/OAuthGetAccessToken",
}

// PromptFunc asks the operator for the verification code shown after
// authorizing the application. It is an explicit dependency so both the
// blocking stdin read and test stubs stay outside the handshake logic.
type PromptFunc func(prompt string) (string, error)

// NewStdinPrompt returns a PromptFunc that reads one line from stdin,
// echoing the prompt to w. It refuses to prompt when stdin is not a
// terminal, since a non-interactive run cannot complete the handshake.
func NewStdinPrompt(w io.Writer) PromptFunc {
	reader := bufio.NewReader(os.Stdin)
	return func(prompt string) (string, error) {
		if !isTerminal() {
			return "", fmt.Errorf("%w: stdin is not a terminal; run interactively or set TRELLO_TOKEN and TRELLO_TOKEN_SECRET", common.ErrAuth)
		}
		if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
			return "", err
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && len(line) > 0 {
				return strings.TrimSpace(line), nil
			}
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
}

type Authenticator struct {
	cfg      *oauth1.Config
	callback string
	appName  string
	out      io.Writer
	prompt   PromptFunc
	log      logging.Logger
}

type Options struct {
	ConsumerKey    string
	ConsumerSecret string
	// CallbackURL is either "oob" (Trello shows a PIN) or a return URL
	// registered with the application.
	CallbackURL string
	// Endpoint overrides TrelloEndpoint; used by tests.
	Endpoint *oauth1.Endpoint
	// AppName is shown on Trello's authorization page.
	AppName string
	Out     io.Writer
	Prompt  PromptFunc
	Logger  logging.Logger
}

func New(opts Options) *Authenticator {
	endpoint := TrelloEndpoint
	if opts.Endpoint != nil {
		endpoint = *opts.Endpoint
	}
	appName := opts.AppName
	if appName == "" {
		appName = "trellodump"
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Authenticator{
		cfg: &oauth1.Config{
			ConsumerKey:    opts.ConsumerKey,
			ConsumerSecret: opts.ConsumerSecret,
			CallbackURL:    opts.CallbackURL,
			Endpoint:       endpoint,
		},
		callback: opts.CallbackURL,
		appName:  appName,
		out:      out,
		prompt:   opts.Prompt,
		log:      log,
	}
}

// ObtainTokens runs the full handshake: temporary token, authorization URL
// shown to the operator, verification code, access token exchange. The
// returned pair is durable; the caller persists it in the credential
// store.
func (a *Authenticator) ObtainTokens(ctx context.Context) (string, string, error) {
	requestToken, requestSecret, err := a.cfg.RequestToken()
	if err != nil {
		return "", "", classify("request token", err)
	}
	a.log.Debug(ctx, "obtained request token")

	authURL, err := a.cfg.AuthorizationURL(requestToken)
	if err != nil {
		return "", "", fmt.Errorf("%w: build authorization url: %v", common.ErrAuth, err)
	}
	q := authURL.Query()
	q.Set("name", a.appName)
	q.Set("scope", "read")
	q.Set("expiration", "never")
	authURL.RawQuery = q.Encode()

	fmt.Fprintf(a.out, "Open the following URL and authorize access:\n\n  %s\n\n", authURL.String())

	promptText := "Enter the Trello PIN"
	if !strings.EqualFold(a.callback, "oob") {
		fmt.Fprintf(a.out, "After approving you will be redirected to %s.\n", a.callback)
		promptText = "Paste the oauth_verifier parameter from the callback URL"
	}

	verifier, err := a.prompt(promptText)
	if err != nil {
		return "", "", err
	}
	verifier = strings.TrimSpace(verifier)
	if verifier == "" {
		return "", "", fmt.Errorf("%w: empty verification code", common.ErrAuth)
	}

	accessToken, accessSecret, err := a.cfg.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return "", "", classify("access token", err)
	}
	a.log.Info(ctx, "obtained access token pair")
	return accessToken, accessSecret, nil
}

// classify splits handshake failures into the transport kind (ErrNet) and
// everything the service itself rejected (ErrAuth).
func classify(step string, err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%w: %s: %v", common.ErrNet, step, err)
	}
	return fmt.Errorf("%w: %s: %v", common.ErrAuth, step, err)
}

// SignedClient returns an *http.Client that signs every request with the
// consumer pair and the durable access token pair. All data calls of the
// exporter, including attachment downloads, go through it.
func SignedClient(ctx context.Context, consumerKey, consumerSecret, token, tokenSecret string) *http.Client {
	conf := oauth1.NewConfig(consumerKey, consumerSecret)
	return conf.Client(ctx, oauth1.NewToken(token, tokenSecret))
}
