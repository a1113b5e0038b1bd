package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/bluescreen10/apistore/cookiestore"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	var cookie string

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Print a Cookie header as the nested storage tree",
		Long: "Decode parses a Cookie request header the way the cookie storage does, expanding\n" +
			"basename[group][key] names into nested objects, and prints the result as JSON.\n" +
			"The header is read from --cookie or, when omitted, from stdin.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cookie == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "read stdin")
				}
				cookie = strings.TrimSpace(string(data))
			}
			cookie = strings.TrimPrefix(cookie, "Cookie:")

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cookiestore.ParseJar(cookie))
		},
	}

	cmd.Flags().StringVar(&cookie, "cookie", "", "Cookie header value")
	return cmd
}
