package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) getCommand() *cobra.Command {
	var (
		asJSON  bool
		rawArgs []string
	)

	cmd := &cobra.Command{
		Use:   HelpGetUse,
		Short: HelpGetShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arguments, err := parseArguments(rawArgs)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			collection, err := s.build(ctx)
			if err != nil {
				return err
			}

			resp, err := collection.Respond(ctx, args[0], arguments)
			if err != nil {
				return commandError(ExitCodeError, ErrMsgRequestFailed, err)
			}

			if asJSON {
				return writeJSON(a.stdout, resp)
			}
			for _, m := range resp.Messages {
				fmt.Fprintf(a.stdout, FmtMessageHeader, colorRole.Sprint(string(m.Role)))
				fmt.Fprintf(a.stdout, FmtMessageBody, m.Content)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, FlagJSON, false, HelpFlagJSON)
	cmd.Flags().StringArrayVarP(&rawArgs, FlagArg, FlagArgShort, nil, HelpFlagArg)
	return cmd
}

// parseArguments turns repeated key=value flags into request arguments.
// Values may contain '='; the last occurrence of a key wins.
func parseArguments(raw []string) (map[string]string, error) {
	arguments := make(map[string]string, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, ArgumentSeparator)
		if !ok || strings.TrimSpace(key) == "" {
			return nil, usageError(ErrMsgInvalidArgument, errors.New(kv))
		}
		arguments[strings.TrimSpace(key)] = value
	}
	return arguments, nil
}
