package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/roomly-dev/roomly/internal/cli/client"
)

// mockRoomLister simulates the API client for listing rooms
type mockRoomLister struct {
	rooms      []client.RoomSummary
	shouldFail bool
	errorMsg   string
}

func (m *mockRoomLister) ListRooms(ctx context.Context) ([]client.RoomSummary, error) {
	if m.shouldFail {
		return nil, errors.New(m.errorMsg)
	}
	return m.rooms, nil
}

// TestRoomsList_NoRooms tests the empty listing scenario
func TestRoomsList_NoRooms(t *testing.T) {
	mockAPI := &mockRoomLister{rooms: []client.RoomSummary{}}
	var output bytes.Buffer

	err := runRoomsList(mockAPI, "test-server", &output)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	outputStr := output.String()
	if !strings.Contains(outputStr, "No rooms found") {
		t.Errorf("expected 'No rooms found' message, got: %s", outputStr)
	}
	if !strings.Contains(outputStr, "roomly rooms upload") {
		t.Errorf("expected helpful upload hint, got: %s", outputStr)
	}
}

// TestRoomsList_RendersTable
func TestRoomsList_RendersTable(t *testing.T) {
	mockAPI := &mockRoomLister{
		rooms: []client.RoomSummary{
			{PK: "r1", Name: "Cozy hanok", City: "Jeonju", Country: "South Korea", Price: 85, Rating: 4.5},
			{PK: "r2", Name: "City loft", City: "Seoul", Country: "South Korea", Price: 120, Rating: 3.8},
		},
	}
	var output bytes.Buffer

	err := runRoomsList(mockAPI, "production", &output)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	outputStr := output.String()
	for _, want := range []string{"production", "Cozy hanok", "Jeonju, South Korea", "$85", "4.5", "City loft"} {
		if !strings.Contains(outputStr, want) {
			t.Errorf("expected output to contain %q, got: %s", want, outputStr)
		}
	}
}

// TestRoomsList_APIFailure tests handling of API failures
func TestRoomsList_APIFailure(t *testing.T) {
	mockAPI := &mockRoomLister{
		shouldFail: true,
		errorMsg:   "request failed with status 502",
	}
	var output bytes.Buffer

	err := runRoomsList(mockAPI, "test-server", &output)
	if err == nil {
		t.Fatal("expected error when API fails, but got success")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("expected the API error to pass through, got: %s", err.Error())
	}
	if output.Len() > 0 {
		t.Errorf("expected no output on error, got: %s", output.String())
	}
}
