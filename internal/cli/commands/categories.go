package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roomly-dev/roomly/internal/cli/client"
	"github.com/roomly-dev/roomly/internal/cli/cookies"
)

// NewCategoriesCmd creates the categories command
func NewCategoriesCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List room categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPISession(serverAlias, cookies.Keyring)
			if err != nil {
				return err
			}
			return runCategories(api.client, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runCategories(apiClient *client.Client, out io.Writer) error {
	categories, err := apiClient.Categories(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PK\tNAME")
	for _, category := range categories {
		fmt.Fprintf(w, "%d\t%s\n", category.PK, category.Name)
	}

	return w.Flush()
}
