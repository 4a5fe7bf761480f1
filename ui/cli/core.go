// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gphunter1004/skm/internal/app"
	"github.com/gphunter1004/skm/internal/model"
)

// cliNotifier prints notifications as plain lines. Errors and warnings go
// to stderr so scripts can pipe stdout cleanly.
type cliNotifier struct{}

func (cliNotifier) Notify(n model.Notification) {
	switch n.Severity {
	case model.SeverityError:
		fmt.Fprintf(os.Stderr, "error: %s\n", n.Message)
	case model.SeverityWarning:
		fmt.Fprintf(os.Stderr, "warning: %s\n", n.Message)
	default:
		fmt.Println(n.Message)
	}
}

func (cliNotifier) Clear() {}

// cliConfirmer prompts on stdin. The --yes flag skips the prompt, matching
// the usual non-interactive convention.
type cliConfirmer struct{}

func (cliConfirmer) Confirm(title, message string) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s\n%s (yes/no): ", title, message)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "yes" || answer == "y"
}

// newCore wires an application context for headless commands. The periodic
// revalidation loop is not started; one-shot commands validate explicitly.
func newCore() (*app.App, error) {
	opts, err := buildAppOptions()
	if err != nil {
		return nil, err
	}
	opts.Notifier = cliNotifier{}
	opts.Confirmer = cliConfirmer{}
	return app.New(opts), nil
}

// newAuthenticatedCore restores and validates the stored session, failing
// fast when the command requires a login and none is usable.
func newAuthenticatedCore(cmd *cobra.Command) (*app.App, error) {
	core, err := newCore()
	if err != nil {
		return nil, err
	}
	if err := core.Sessions.Restore(); err != nil {
		return nil, err
	}
	if core.Sessions.Token() == "" {
		return nil, fmt.Errorf("not logged in; run 'skm login' first")
	}
	if !core.Auth.Validate(cmd.Context()) {
		return nil, fmt.Errorf("stored session is no longer valid; run 'skm login' again")
	}
	return core, nil
}
