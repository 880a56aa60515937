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

// roomLister is the slice of the API client the list command needs;
// mocked in tests.
type roomLister interface {
	ListRooms(ctx context.Context) ([]client.RoomSummary, error)
}

// NewRoomsCmd creates the rooms command group
func NewRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Browse and manage listings",
	}

	cmd.AddCommand(newRoomsListCmd())
	cmd.AddCommand(newRoomsGetCmd())
	cmd.AddCommand(newRoomsReviewsCmd())
	cmd.AddCommand(newRoomsAmenitiesCmd())
	cmd.AddCommand(NewUploadCmd())

	return cmd
}

func newRoomsListCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPISession(serverAlias, cookies.Keyring)
			if err != nil {
				return err
			}
			return runRoomsList(api.client, api.server.Alias, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runRoomsList(lister roomLister, serverAlias string, out io.Writer) error {
	rooms, err := lister.ListRooms(context.Background())
	if err != nil {
		return err
	}

	if len(rooms) == 0 {
		fmt.Fprintln(out, "No rooms found.")
		fmt.Fprintln(out, "\nUpload a listing with: roomly rooms upload -f room.yaml")
		return nil
	}

	fmt.Fprintf(out, "Rooms on %s:\n\n", serverAlias)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PK\tNAME\tLOCATION\tPRICE\tRATING")
	fmt.Fprintln(w, "──\t────\t────────\t─────\t──────")

	for _, room := range rooms {
		fmt.Fprintf(w, "%s\t%s\t%s, %s\t$%d\t%.1f\n",
			room.PK,
			room.Name,
			room.City,
			room.Country,
			room.Price,
			room.Rating,
		)
	}

	return w.Flush()
}

func newRoomsGetCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "get <pk>",
		Short: "Show one room in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPISession(serverAlias, cookies.Keyring)
			if err != nil {
				return err
			}
			return runRoomsGet(api.client, args[0], os.Stdout)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runRoomsGet(apiClient *client.Client, pk string, out io.Writer) error {
	room, err := apiClient.GetRoom(context.Background(), pk)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n", room.Name)
	fmt.Fprintf(out, "  Location:  %s, %s\n", room.City, room.Country)
	fmt.Fprintf(out, "  Price:     $%d / night\n", room.Price)
	fmt.Fprintf(out, "  Rooms:     %d (toilets: %d)\n", room.Rooms, room.Toilets)
	fmt.Fprintf(out, "  Kind:      %s\n", room.Kind)
	fmt.Fprintf(out, "  Rating:    %.1f\n", room.Rating)
	if room.PetFriendly {
		fmt.Fprintln(out, "  Pets:      welcome")
	}
	if room.Category != nil {
		fmt.Fprintf(out, "  Category:  %s\n", room.Category.Name)
	}
	if room.Owner != nil {
		fmt.Fprintf(out, "  Host:      %s\n", room.Owner.Name)
	}
	if len(room.Amenities) > 0 {
		fmt.Fprint(out, "  Amenities: ")
		for i, amenity := range room.Amenities {
			if i > 0 {
				fmt.Fprint(out, ", ")
			}
			fmt.Fprint(out, amenity.Name)
		}
		fmt.Fprintln(out)
	}
	if room.Description != "" {
		fmt.Fprintf(out, "\n%s\n", room.Description)
	}

	return nil
}

func newRoomsReviewsCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "reviews <pk>",
		Short: "Show the reviews of a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPISession(serverAlias, cookies.Keyring)
			if err != nil {
				return err
			}
			return runRoomsReviews(api.client, args[0], os.Stdout)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runRoomsReviews(apiClient *client.Client, pk string, out io.Writer) error {
	reviews, err := apiClient.GetRoomReviews(context.Background(), pk)
	if err != nil {
		return err
	}

	if len(reviews) == 0 {
		fmt.Fprintln(out, "No reviews yet.")
		return nil
	}

	for _, review := range reviews {
		fmt.Fprintf(out, "%s — %d/5\n", review.User.Name, review.Rating)
		fmt.Fprintf(out, "  %s\n\n", review.Payload)
	}

	return nil
}

func newRoomsAmenitiesCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "amenities",
		Short: "List amenities available for listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPISession(serverAlias, cookies.Keyring)
			if err != nil {
				return err
			}
			return runRoomsAmenities(api.client, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runRoomsAmenities(apiClient *client.Client, out io.Writer) error {
	amenities, err := apiClient.Amenities(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PK\tNAME\tDESCRIPTION")
	for _, amenity := range amenities {
		fmt.Fprintf(w, "%d\t%s\t%s\n", amenity.PK, amenity.Name, amenity.Description)
	}

	return w.Flush()
}
