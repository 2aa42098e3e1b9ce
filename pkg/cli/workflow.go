package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/stepup-hq/stepup/pkg/config"
	"github.com/stepup-hq/stepup/pkg/workflow"
)

func newWorkflowCommand() *Command {
	cmd := &Command{
		Name:        "workflow",
		Description: "Apply a workflow action to a lesson planner record",
		Flags:       flag.NewFlagSet("workflow", flag.ExitOnError),
		Run:         runWorkflow,
	}

	cmd.Flags.String("record", "", "Lesson planner record ID")
	cmd.Flags.String("action", "", "Action: submit, approve, start, sendForSignoff, signoff, reject")

	return cmd
}

func runWorkflow(args []string) error {
	cmd := newWorkflowCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	recordID := cmd.Flags.Lookup("record").Value.String()
	action := workflow.Action(cmd.Flags.Lookup("action").Value.String())

	if recordID == "" || action == "" {
		return fmt.Errorf("record and action are required")
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

	rec, err := a.records.FetchOne(ctx, config.ListLessonPlans, recordID)
	if err != nil {
		return describeListError(err)
	}
	doc := workflow.DocumentFromRecord(rec)

	actor := workflow.Actor{Subject: sess.Subject, DisplayName: sess.DisplayName}
	doc, err = a.engine.Apply(ctx, doc, action, sess.ActiveRole(), actor)
	if err != nil {
		var terr *workflow.TransitionError
		if errors.As(err, &terr) {
			return fmt.Errorf("access denied: %s requires a different role or document state (currently %s as %s)",
				terr.Action, terr.Current, terr.Role)
		}
		return describeListError(err)
	}

	fmt.Printf("Record %s is now %s\n", recordID, doc.Status)
	return nil
}
