package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/stepup-hq/stepup/pkg/roles"
)

func newRolesCommand() *Command {
	return &Command{
		Name:        "roles",
		Description: "List the role assignments available to the signed-in account",
		Flags:       flag.NewFlagSet("roles", flag.ExitOnError),
		Run:         runRoles,
	}
}

func runRoles(args []string) error {
	cmd := newRolesCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	sess, err := a.session(ctx)
	if err != nil {
		return explainAuthError(err)
	}

	available := make([]roles.Assignment, len(sess.Available))
	copy(available, sess.Available)
	roles.SortAssignments(available)

	for _, assignment := range available {
		marker := " "
		if active := sess.Active(); active != nil && active.RecordID == assignment.RecordID {
			marker = "*"
		}
		suffix := ""
		if assignment.IsDefault {
			suffix = " (default)"
		}
		if assignment.Synthesized() {
			suffix = " (synthesized)"
		}
		fmt.Printf("%s %-12s record=%s%s\n", marker, assignment.Role, assignment.RecordID, suffix)
	}
	return nil
}

func newSetDefaultRoleCommand() *Command {
	cmd := &Command{
		Name:        "set-default-role",
		Description: "Pin a role assignment record as the default role",
		Flags:       flag.NewFlagSet("set-default-role", flag.ExitOnError),
		Run:         runSetDefaultRole,
	}

	cmd.Flags.String("record", "", "Role assignment record ID to pin")

	return cmd
}

func runSetDefaultRole(args []string) error {
	cmd := newSetDefaultRoleCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	recordID := cmd.Flags.Lookup("record").Value.String()
	if recordID == "" {
		return fmt.Errorf("record is required")
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	sess, err := a.session(ctx)
	if err != nil {
		return explainAuthError(err)
	}

	if err := a.resolver.SetDefaultRole(ctx, sess, recordID); err != nil {
		return fmt.Errorf("failed to set default role: %w", err)
	}

	fmt.Printf("Default role pinned to record %s\n", recordID)
	return nil
}
