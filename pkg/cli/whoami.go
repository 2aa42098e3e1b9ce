package cli

import (
	"context"
	"flag"
	"fmt"
)

func newWhoamiCommand() *Command {
	return &Command{
		Name:        "whoami",
		Description: "Show the signed-in account and active role",
		Flags:       flag.NewFlagSet("whoami", flag.ExitOnError),
		Run:         runWhoami,
	}
}

func runWhoami(args []string) error {
	cmd := newWhoamiCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	ident := a.provider.Identity()
	if ident == nil {
		fmt.Println("Not signed in. Run 'stepup login' first.")
		return nil
	}

	sess, err := a.session(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Account: %s (%s)\n", ident.DisplayName, ident.Subject)
	fmt.Printf("Active role: %s", sess.ActiveRole())
	if active := sess.Active(); active != nil && active.Synthesized() {
		fmt.Print(" (synthesized, no role assignment on record)")
	}
	fmt.Println()
	return nil
}
