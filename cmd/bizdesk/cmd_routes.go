package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sadopc/bizdesk/internal/router"
)

func newRoutesCmd(a *app) *cobra.Command {
	var resolve string
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the pages of the terminal UI",
		Long:  "List the pages of the terminal UI. With --resolve, print the page a path\nleads to given the current session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if resolve != "" {
				session, err := a.sessionStore(cmd.Context())
				if err != nil {
					return err
				}
				r, err := router.New(session).Resolve(cmd.Context(), resolve)
				if err != nil {
					return err
				}
				return a.printResult(r, func(w io.Writer) {
					fmt.Fprintf(w, "%s -> %s (%s)\n", resolve, r.Path, r.FullTitle())
				})
			}
			routes := router.Routes()
			return a.printResult(routes, func(w io.Writer) {
				for _, r := range routes {
					auth := ""
					if r.RequiresAuth {
						auth = "company required"
					}
					fmt.Fprintf(w, "%-26s %-20s %s\n", r.Path, r.Title, auth)
				}
			})
		},
	}
	cmd.Flags().StringVar(&resolve, "resolve", "", "path to resolve against the session")
	return cmd
}
