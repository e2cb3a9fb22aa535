package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flickbridge/internal/flickrid"
)

func newRecognizeCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "recognize <url-or-text>",
		Short:       "Classify a Flickr reference",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := flickrid.Recognize(args[0])
			if err != nil {
				return fmt.Errorf("%q: %w", args[0], err)
			}

			if jsonOut {
				return writeJSON(cmd, map[string]string{
					"kind":     ref.Kind.String(),
					"photo_id": ref.PhotoID,
					"user_id":  ref.UserID,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Kind: %s\n", ref.Kind)
			if ref.PhotoID != "" {
				fmt.Fprintf(out, "Photo ID: %s\n", ref.PhotoID)
			}
			if ref.UserID != "" {
				fmt.Fprintf(out, "User: %s\n", ref.UserID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the result as JSON")
	return cmd
}
