package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) listCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   CmdNameList,
		Short: HelpListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			descriptors := collection.Describe()
			if asJSON {
				return writeJSON(a.stdout, descriptors)
			}

			for _, d := range descriptors {
				summary := d.Description
				if summary == "" {
					summary = d.Title
				}
				fmt.Fprintf(a.stdout, FmtListEntry, colorName.Sprint(d.Name), summary)
				for _, arg := range d.Arguments {
					marker := ""
					if arg.Required {
						marker = FmtRequiredMarker
					}
					fmt.Fprintf(a.stdout, FmtListArgument, arg.Name, marker, arg.Description)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, FlagJSON, false, HelpFlagJSON)
	return cmd
}
