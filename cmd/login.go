// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	cerr "cardline/cli/internal/errors"
	"cardline/cli/internal/logging"
	"cardline/cli/internal/oauth"
)

// loginCmd represents the login command for Google sign-in.
// It opens the provider's consent page in the browser, receives the redirect
// on a local loopback listener, and completes the sign-in flow: code
// exchange, profile fetch and backend session issuance.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Sign in with Google and link this machine",
	Long: `The login command starts a browser-based Google sign-in. It opens the
consent page in your default browser and listens on a local loopback address
for the redirect carrying the authorization code. Once the code arrives the
CLI exchanges it for your profile, obtains a Cardline session and stores the
credentials in the OS keychain.

If you are already signed in with a valid session, the flow is skipped.
Closing the browser tab or pressing Ctrl-C abandons the attempt without
changing your current state.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		if a.sessions.IsAuthenticated() {
			fmt.Printf("Already signed in as %s\n", a.sessions.Profile().Email)
			return nil
		}

		ctrl := oauth.NewController(oauth.Config{
			ClientID:          a.cfg.GoogleClientID,
			ClientSecret:      a.cfg.GoogleClientSecret,
			RedirectURL:       a.cfg.RedirectURL,
			GmailInsights:     a.cfg.GmailInsights,
			AllowLocalSession: a.cfg.AllowLocalSession,
		}, a.store, a.sessions, a.backend)

		authURL, state, err := ctrl.BeginSignIn()
		if err != nil {
			return err
		}

		results, closeListener, err := listenForCallback(a.cfg.RedirectURL, state)
		if err != nil {
			return err
		}
		defer closeListener()

		fmt.Println("Open this link to sign in with Google:")
		fmt.Printf("%s\n\n", authURL)
		openBrowser(authURL)

		stopSpinner := startWaitSpinner("Waiting for you to finish in the browser")

		var res oauth.Result
		select {
		case <-ctx.Done():
			stopSpinner()
			res = oauth.Cancelled()
			if err := ctrl.CompleteSignIn(context.Background(), res); err != nil {
				return err
			}
			fmt.Println("Sign-in not completed. Run 'cardline login' to try again.")
			return nil
		case res = <-results:
			stopSpinner()
			logging.Debugf("sign-in redirect received")
		}

		if err := ctrl.CompleteSignIn(ctx, res); err != nil {
			if cerr.Is(err, cerr.AuthorizationDeclined) {
				fmt.Println("Google did not authorize this sign-in. Nothing was changed.")
			}
			return errors.New(logging.PresentError("sign-in failed", err))
		}

		fmt.Printf("✅ Signed in as %s\n", a.sessions.Profile().Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

// listenForCallback starts a loopback HTTP listener on the configured
// redirect address and resolves the first matching callback into an oauth
// Result. The state from BeginSignIn must be echoed back; a mismatch is
// treated as a declined attempt, not a success.
func listenForCallback(redirectURL, state string) (<-chan oauth.Result, func(), error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redirect URL %q: %w", redirectURL, err)
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot listen on %s for the sign-in redirect: %w", u.Host, err)
	}

	results := make(chan oauth.Result, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(u.Path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var res oauth.Result
		switch {
		case q.Get("error") != "":
			reason := q.Get("error")
			if d := q.Get("error_description"); d != "" {
				reason += ": " + d
			}
			res = oauth.Declined(reason)
		case q.Get("state") != state:
			res = oauth.Declined("state mismatch in redirect")
		case q.Get("code") == "":
			res = oauth.Declined("redirect carried no authorization code")
		default:
			res = oauth.Success(q.Get("code"))
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body><p>You can close this tab and return to the terminal.</p></body></html>")

		// Only the first callback counts; stray reloads are dropped.
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()

	closeFn := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	return results, closeFn, nil
}

// openBrowser attempts to open the provided URL in the user's default browser.
// It uses platform-specific commands to launch the default browser:
//   - Windows: rundll32 url.dll,FileProtocolHandler
//   - macOS: open command
//   - Linux: xdg-open command
//
// The function starts the browser process but does not wait for it to complete.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
