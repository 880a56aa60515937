package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roomly-dev/roomly/internal/cli/client"
	"github.com/roomly-dev/roomly/internal/cli/cookies"
)

// NewUploadCmd creates the room upload command
func NewUploadCmd() *cobra.Command {
	var serverAlias, file string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a new listing from a YAML definition",
		Long: `Upload a new listing from a YAML definition.

The definition file references amenities and the category by their
numeric pk (see 'roomly rooms amenities' and 'roomly categories'):

  name: Cozy hanok in Jeonju
  country: South Korea
  city: Jeonju
  price: 85
  rooms: 2
  toilets: 1
  address: 12-3 Hanok-gil
  pet_friendly: true
  kind: entire_place
  description: Traditional wooden house near the old town.
  amenities: [1, 2, 4]
  category: 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPISession(serverAlias, cookies.Keyring)
			if err != nil {
				return err
			}
			return runUpload(api.client, file, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the room definition YAML file")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runUpload(apiClient *client.Client, file string, out io.Writer) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read room definition: %w", err)
	}

	var payload client.UploadRoomPayload
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to parse room definition: %w", err)
	}

	room, err := apiClient.UploadRoom(context.Background(), payload)
	if err != nil {
		var domainErr *client.DomainError
		if errors.As(err, &domainErr) {
			return fmt.Errorf("upload rejected: %s", domainErr.Message)
		}
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Fprintf(out, "✓ Uploaded %q (pk %s)\n", room.Name, room.PK)
	return nil
}
