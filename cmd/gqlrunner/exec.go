package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	serverlessgql "github.com/hanpama/serverlessgql"
	language "github.com/hanpama/serverlessgql/internal/language"
)

type execFlags struct {
	schemaFile    string
	query         string
	queryFile     string
	rootFile      string
	variablesFile string
	operation     string
	pretty        bool
}

func newExecCmd(g *globalFlags) *cobra.Command {
	f := &execFlags{}
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run an operation against a fixture root value",
		Long: `Run an operation with default field resolution over a root value read
from a YAML or JSON fixture. Subscription operations replay every list-valued
root field of the fixture as an event stream, one event per item, and print
one result per event.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, g, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.schemaFile, "schema", "", "SDL file (required)")
	fl.StringVar(&f.query, "query", "", "operation document text")
	fl.StringVar(&f.queryFile, "query-file", "", "file holding the operation document")
	fl.StringVar(&f.rootFile, "root", "", "YAML or JSON fixture used as the root value")
	fl.StringVar(&f.variablesFile, "variables", "", "YAML or JSON file holding variable values")
	fl.StringVarP(&f.operation, "operation", "o", "", "operation to run when the document holds several")
	fl.BoolVar(&f.pretty, "pretty", false, "indent JSON output")
	_ = cmd.MarkFlagRequired("schema")
	cmd.MarkFlagsOneRequired("query", "query-file")
	cmd.MarkFlagsMutuallyExclusive("query", "query-file")
	return cmd
}

func runExec(cmd *cobra.Command, g *globalFlags, f *execFlags) error {
	sdl, err := os.ReadFile(f.schemaFile)
	if err != nil {
		return err
	}
	query := f.query
	if f.queryFile != "" {
		b, err := os.ReadFile(f.queryFile)
		if err != nil {
			return err
		}
		query = string(b)
	}
	root, err := loadFixture(f.rootFile)
	if err != nil {
		return fmt.Errorf("--root: %w", err)
	}
	vars, err := loadFixture(f.variablesFile)
	if err != nil {
		return fmt.Errorf("--variables: %w", err)
	}
	varMap, ok := vars.(map[string]any)
	if vars != nil && !ok {
		return fmt.Errorf("--variables: expected a mapping, got %T", vars)
	}

	opts, shutdown, err := g.runnerOptions(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	runner, err := serverlessgql.NewQueryRunner(string(sdl), nil, opts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	req := serverlessgql.Request{Req: query, Variables: varMap, Root: root, OperationToRun: f.operation}
	out := newEncoder(cmd.OutOrStdout(), f.pretty)

	if !isSubscription(query, f.operation) {
		res, err := runner.RunQuery(ctx, req)
		if err != nil {
			return err
		}
		return out.Encode(res)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	req.Root = replayRoot(ctx, root)
	stream, err := runner.RunSubscription(ctx, req)
	if err != nil {
		return err
	}
	for res, err := range serverlessgql.Results(ctx, stream) {
		if err != nil {
			return fmt.Errorf("subscription: %w", err)
		}
		if err := out.Encode(res); err != nil {
			return err
		}
	}
	return nil
}

func newEncoder(w io.Writer, pretty bool) *json.Encoder {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc
}

// isSubscription reports whether the operation the document selects is a
// subscription. Unparsable documents are left to RunQuery to report.
func isSubscription(query, operation string) bool {
	doc, err := language.ParseQuery(query)
	if err != nil {
		return false
	}
	op := doc.Operations.ForName(operation)
	if op == nil && operation == "" && len(doc.Operations) == 1 {
		op = doc.Operations[0]
	}
	return op != nil && op.Operation == language.Subscription
}

// replayRoot copies root, turning each list-valued field into a channel.
// Item i of the list is delivered as the event {field: item}, so the
// subscription field resolves to the item itself.
func replayRoot(ctx context.Context, root any) any {
	m, ok := root.(map[string]any)
	if !ok {
		return root
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		items, ok := v.([]any)
		if !ok {
			out[k] = v
			continue
		}
		out[k] = replay(ctx, k, items)
	}
	return out
}

func replay(ctx context.Context, field string, items []any) <-chan any {
	ch := make(chan any)
	go func() {
		defer close(ch)
		for _, item := range items {
			select {
			case ch <- map[string]any{field: item}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
