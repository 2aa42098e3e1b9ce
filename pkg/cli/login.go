package cli

import (
	"context"
	"flag"
	"fmt"
)

func newLoginCommand() *Command {
	cmd := &Command{
		Name:        "login",
		Description: "Sign in to the identity provider",
		Flags:       flag.NewFlagSet("login", flag.ExitOnError),
		Run:         runLogin,
	}

	cmd.Flags.String("code", "", "Authorization code returned by the identity provider")
	cmd.Flags.String("state", "", "State value returned alongside the code")

	return cmd
}

func runLogin(args []string) error {
	cmd := newLoginCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	code := cmd.Flags.Lookup("code").Value.String()
	state := cmd.Flags.Lookup("state").Value.String()

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	// Without a code this starts the redirect flow: print the login URL and
	// wait for the user to come back with code and state.
	if code == "" {
		url, err := a.provider.BeginLogin()
		if err != nil {
			return err
		}
		fmt.Printf("Open this URL in a browser to sign in:\n\n  %s\n\n", url)
		fmt.Println("Then run: stepup login -code <code> -state <state>")
		return nil
	}

	if state == "" {
		return fmt.Errorf("code and state are both required to complete sign-in")
	}

	account, err := a.provider.CompleteRedirect(ctx, code, state)
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s (%s)\n", account.DisplayName, account.Subject)
	return nil
}
