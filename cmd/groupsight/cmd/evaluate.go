package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solatis/groupsight/internal/rules"
	"github.com/solatis/groupsight/internal/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <expression>",
	Short: "Evaluate a rule expression against a set of user attributes",
	Long: `Evaluate a rule expression against attributes supplied as --attr key=value
pairs. Values are interpreted as null, booleans or numbers where they parse
as such, and as strings otherwise. Expressions that reference group
membership or application context are reported as not locally evaluable.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringArray("attr", nil, "user attribute as key=value (repeatable)")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	expression := args[0]

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	pairs, _ := cmd.Flags().GetStringArray("attr")
	attrs, err := parseAttrPairs(pairs)
	if err != nil {
		return err
	}

	if !rules.CanEvaluateLocally(expression) {
		fmt.Fprintln(cmd.OutOrStdout(), "not locally evaluable")
		fmt.Fprintln(cmd.OutOrStdout(), "false")
		return nil
	}

	engine := rules.NewEngine(log)
	fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(engine.Evaluate(expression, attrs)))
	return nil
}

func parseAttrPairs(pairs []string) (types.AttributeMap, error) {
	attrs := make(types.AttributeMap, len(pairs))
	for _, pair := range pairs {
		key, raw, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --attr %q, expected key=value", pair)
		}
		attrs[key] = parseAttrValue(raw)
	}
	return attrs, nil
}

func parseAttrValue(raw string) types.AttributeValue {
	switch raw {
	case "null":
		return types.NullValue()
	case "true":
		return types.BoolValue(true)
	case "false":
		return types.BoolValue(false)
	}
	if num, err := strconv.ParseFloat(raw, 64); err == nil {
		return types.NumberValue(num)
	}
	return types.StringValue(raw)
}
