package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sri-Rahul/linkanalysis/internal/domain"
)

// Commands provides command-line operations for the client
type Commands struct {
	client *Client
}

// NewCommands creates a new Commands instance
func NewCommands(client *Client) *Commands {
	return &Commands{
		client: client,
	}
}

// Create creates a short link and displays the result
func (c *Commands) Create(ctx context.Context, destinationURL, alias string, expiresAt *time.Time) error {
	result, err := c.client.CreateLink(ctx, domain.CreateLinkRequest{
		DestinationURL: destinationURL,
		CustomAlias:    alias,
		ExpiresAt:      expiresAt,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Short link created:\n")
	fmt.Printf("Code: %s\n", result.Code)
	fmt.Printf("Short URL: %s\n", result.ShortURL)
	fmt.Printf("Destination: %s\n", result.Destination)
	if result.ExpiresAt != nil {
		fmt.Printf("Expires At: %s\n", result.ExpiresAt.Format(time.RFC3339))
	}
	fmt.Printf("Created At: %s\n", result.CreatedAt.Format(time.RFC3339))

	return nil
}

// Get retrieves and displays information about a short link
func (c *Commands) Get(ctx context.Context, code string) error {
	info, err := c.client.GetLink(ctx, code)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			fmt.Printf("Code '%s' not found\n", code)
			return nil
		}
		return err
	}

	fmt.Printf("Link Information:\n")
	fmt.Printf("Code: %s\n", info.Code)
	fmt.Printf("Short URL: %s\n", info.ShortURL)
	fmt.Printf("Destination: %s\n", info.Destination)
	fmt.Printf("Active: %t\n", info.Active)
	if info.ExpiresAt != nil {
		fmt.Printf("Expires At: %s\n", info.ExpiresAt.Format(time.RFC3339))
	} else {
		fmt.Printf("Expires At: Never\n")
	}
	fmt.Printf("Clicks: %d\n", info.Clicks)
	fmt.Printf("Created At: %s\n", info.CreatedAt.Format(time.RFC3339))

	return nil
}

// Delete removes a short link
func (c *Commands) Delete(ctx context.Context, code string) error {
	if err := c.client.DeleteLink(ctx, code); err != nil {
		return err
	}

	fmt.Printf("Short link '%s' deleted successfully\n", code)
	return nil
}

// List displays all links for the owner in a table format
func (c *Commands) List(ctx context.Context) error {
	infos, err := c.client.ListLinks(ctx)
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("No links found")
		return nil
	}

	fmt.Printf("%-15s %-50s %-20s %-8s %s\n", "Code", "Destination", "Created At", "Active", "Clicks")
	fmt.Println(strings.Repeat("-", 105))

	for _, info := range infos {
		destination := info.Destination
		if len(destination) > 50 {
			destination = destination[:47] + "..."
		}

		fmt.Printf("%-15s %-50s %-20s %-8t %d\n",
			info.Code,
			destination,
			info.CreatedAt.Format("2006-01-02 15:04:05"),
			info.Active,
			info.Clicks,
		)
	}

	return nil
}

// Stats displays the analytics summary for the owner
func (c *Commands) Stats(ctx context.Context) error {
	summary, err := c.client.Summary(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Analytics Summary:\n")
	fmt.Printf("Total URLs: %d\n", summary.TotalURLs)
	fmt.Printf("Total Clicks: %d\n", summary.TotalClicks)

	if len(summary.TopURLs) > 0 {
		fmt.Printf("\nTop Links:\n")
		for i, top := range summary.TopURLs {
			fmt.Printf("%d. %s -> %s (%d clicks)\n", i+1, top.Code, top.Destination, top.Clicks)
		}
	}

	if len(summary.DeviceTally) > 0 {
		fmt.Printf("\nDevice Breakdown:\n")
		for _, tally := range summary.DeviceTally {
			fmt.Printf("%-10s %d\n", tally.Category, tally.Count)
		}
	}

	return nil
}
