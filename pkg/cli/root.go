package cli

import (
	"flag"
	"fmt"
	"os"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// NewRootCommand creates the root command
func NewRootCommand() *Command {
	root := &Command{
		Name:        "stepup",
		Description: "StepUp - school data and workflow CLI",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("stepup", flag.ExitOnError),
	}

	root.Subcommands["login"] = newLoginCommand()
	root.Subcommands["whoami"] = newWhoamiCommand()
	root.Subcommands["roles"] = newRolesCommand()
	root.Subcommands["set-default-role"] = newSetDefaultRoleCommand()
	root.Subcommands["list"] = newListCommand()
	root.Subcommands["workflow"] = newWorkflowCommand()

	return root
}

// Execute runs the command
func (c *Command) Execute() error {
	args := os.Args[1:]
	if len(args) == 0 {
		return c.usage()
	}

	if args[0] == "-h" || args[0] == "--help" {
		return c.usage()
	}

	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	fmt.Printf("Usage: %s <command> [args]\n\n", c.Name)
	fmt.Printf("Commands:\n")
	for name, cmd := range c.Subcommands {
		fmt.Printf("  %-18s %s\n", name, cmd.Description)
	}
	return nil
}
