package main

import (
	"errors"
	"fmt"

	"github.com/Propfend/poet"
	"github.com/spf13/cobra"
)

// validationOutput represents JSON output for validation
type validationOutput struct {
	Valid     bool                    `json:"valid"`
	Documents int                     `json:"documents"`
	Prompts   []string                `json:"prompts"`
	Errors    []validationIssueOutput `json:"errors,omitempty"`
}

type validationIssueOutput struct {
	Document string `json:"document"`
	Message  string `json:"message"`
}

func (a *app) validateCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   CmdNameValidate,
		Short: HelpValidateShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := a.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			docs, err := s.documents(ctx)
			if err != nil {
				return err
			}

			output := validationOutput{Valid: true, Documents: len(docs), Prompts: []string{}}
			collection, err := s.builder.BuildDocuments(ctx, docs)
			if err != nil {
				var buildErr *poet.AggregateBuildError
				if !errors.As(err, &buildErr) {
					return commandError(ExitCodeError, ErrMsgBuildFailed, err)
				}
				output.Valid = false
				for _, name := range buildErr.Documents() {
					output.Errors = append(output.Errors, validationIssueOutput{
						Document: name,
						Message:  buildErr.DocumentError(name).Error(),
					})
				}
			} else {
				output.Prompts = collection.Names()
			}

			if asJSON {
				if err := writeJSON(a.stdout, output); err != nil {
					return err
				}
			} else {
				a.printValidation(output)
			}

			if !output.Valid {
				return reported(ExitCodeValidationError)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, FlagJSON, false, HelpFlagJSON)
	return cmd
}

func (a *app) printValidation(output validationOutput) {
	if output.Valid {
		fmt.Fprintf(a.stdout, FmtValidateSuccess, colorOK.Sprint(StatusOK), len(output.Prompts))
		return
	}
	for _, issue := range output.Errors {
		fmt.Fprintf(a.stdout, FmtValidateFailure, colorFail.Sprint(StatusFail), issue.Document, issue.Message)
	}
	fmt.Fprintf(a.stdout, FmtValidateSummary, len(output.Errors), output.Documents)
}
