package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/stepup-hq/stepup/pkg/listaccess"
	"github.com/stepup-hq/stepup/pkg/listclient"
)

func newListCommand() *Command {
	cmd := &Command{
		Name:        "list",
		Description: "Read and write records in a configured list",
		Flags:       flag.NewFlagSet("list", flag.ExitOnError),
		Run:         runList,
	}

	cmd.Flags.String("key", "", "Semantic list key (students, userRoles, lessonPlans, ...)")
	cmd.Flags.String("op", "fetch", "Operation: fetch, get, create, update, delete")
	cmd.Flags.String("id", "", "Record ID (get, update, delete)")
	cmd.Flags.String("fields", "", "JSON object of field values (create, update)")
	cmd.Flags.String("filter-field", "", "Field name for a server-side equality filter")
	cmd.Flags.String("filter-value", "", "Value for the equality filter")
	cmd.Flags.String("top", "", "Maximum number of records to fetch")

	return cmd
}

func runList(args []string) error {
	cmd := newListCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	key := cmd.Flags.Lookup("key").Value.String()
	op := cmd.Flags.Lookup("op").Value.String()
	id := cmd.Flags.Lookup("id").Value.String()
	rawFields := cmd.Flags.Lookup("fields").Value.String()
	filterField := cmd.Flags.Lookup("filter-field").Value.String()
	filterValue := cmd.Flags.Lookup("filter-value").Value.String()
	top := cmd.Flags.Lookup("top").Value.String()

	if key == "" {
		return fmt.Errorf("key is required")
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	switch op {
	case "fetch":
		extra := ""
		if filterField != "" {
			extra += listaccess.FilterEq(filterField, filterValue)
		}
		if top != "" {
			n, err := strconv.Atoi(top)
			if err != nil || n <= 0 {
				return fmt.Errorf("top must be a positive integer")
			}
			extra += listaccess.TopN(n)
		}
		records, err := a.records.FetchAll(ctx, key, extra)
		if err != nil {
			return describeListError(err)
		}
		return printJSON(records)

	case "get":
		if id == "" {
			return fmt.Errorf("id is required for get")
		}
		record, err := a.records.FetchOne(ctx, key, id)
		if err != nil {
			return describeListError(err)
		}
		return printJSON(record)

	case "create":
		fields, err := parseFields(rawFields)
		if err != nil {
			return err
		}
		record, err := a.records.Create(ctx, key, fields)
		if err != nil {
			return describeListError(err)
		}
		return printJSON(record)

	case "update":
		if id == "" {
			return fmt.Errorf("id is required for update")
		}
		fields, err := parseFields(rawFields)
		if err != nil {
			return err
		}
		record, err := a.records.Update(ctx, key, id, fields)
		if err != nil {
			return describeListError(err)
		}
		return printJSON(record)

	case "delete":
		if id == "" {
			return fmt.Errorf("id is required for delete")
		}
		if err := a.records.Remove(ctx, key, id); err != nil {
			return describeListError(err)
		}
		fmt.Printf("Deleted record %s\n", id)
		return nil
	}

	return fmt.Errorf("unknown operation: %s", op)
}

func parseFields(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, fmt.Errorf("fields is required")
	}
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("fields must be a JSON object: %w", err)
	}
	return fields, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describeListError prefers the remote store's own message when one exists.
func describeListError(err error) error {
	if remote, ok := listclient.AsRemoteError(err); ok {
		return fmt.Errorf("remote store: %s", remote.Message())
	}
	return err
}
