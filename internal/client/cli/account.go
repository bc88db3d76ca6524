package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/medicnote/internal/client/session"
	"github.com/iudanet/medicnote/internal/client/storage"
	"github.com/iudanet/medicnote/internal/models"
)

func newRegisterCmd(get func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Args:  cobra.NoArgs,
		RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
			return c.runRegister(cmd.Context())
		}),
	}
}

func newLoginCmd(get func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login and merge this device with the server",
		Args:  cobra.NoArgs,
		RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
			return c.runLogin(cmd.Context())
		}),
	}
}

func newLogoutCmd(get func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the session from this device",
		Args:  cobra.NoArgs,
		RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
			return c.runLogout(cmd.Context())
		}),
	}
}

func newStatusCmd(get func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session, connectivity and queue state",
		Args:  cobra.NoArgs,
		RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
			return c.runStatus(cmd.Context())
		}),
	}
}

func (c *Cli) readCredentials() (string, string, error) {
	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return "", "", fmt.Errorf("failed to read username: %w", err)
	}
	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	return username, password, nil
}

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	username, password, err := c.readCredentials()
	if err != nil {
		return err
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password confirmation: %w", err)
	}
	if confirm != password {
		return fmt.Errorf("passwords do not match")
	}

	userID, err := c.auth.Register(ctx, username, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID: %s\n", userID)
	c.io.Println("Run 'medicnote login' to start.")
	return nil
}

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	username, password, err := c.readCredentials()
	if err != nil {
		return err
	}

	c.io.Println("Authenticating...")
	authData, err := c.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}

	c.io.Println("✓ Login successful!")
	c.io.Printf("Username: %s\n", authData.Username)
	if authData.ExpiresAt > 0 {
		c.io.Printf("Session expires: %s\n", time.Unix(authData.ExpiresAt, 0).Format(time.RFC3339))
	}

	c.state.SetOnline(true)
	result, err := c.records.MergeOnInit(ctx)
	if err != nil {
		if errors.Is(err, session.ErrOffline) {
			return nil
		}
		c.io.Printf("Warning: merge with server incomplete: %v\n", err)
		return nil
	}
	c.io.Printf("Merged with server: %d pulled, %d pushed, %d removed\n", result.Pulled, result.Pushed, result.Tombstoned)
	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.auth.Logout(ctx); err != nil {
		return err
	}
	c.io.Println("✓ Logged out. Local records and queued changes are kept.")
	return nil
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()

	authData, err := c.auth.Status(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			c.io.Println("Session: not authenticated")
			c.io.Println("Run 'medicnote login' to authenticate.")
			return nil
		}
		return fmt.Errorf("failed to read session: %w", err)
	}

	c.io.Printf("Session: %s (%s)\n", authData.Username, authData.UserID)
	if authData.ExpiresAt > 0 {
		expiresAt := time.Unix(authData.ExpiresAt, 0)
		if remaining := expiresAt.Sub(c.now()); remaining > 0 {
			c.io.Printf("Expires: %s (in %s)\n", expiresAt.Format(time.RFC3339), remaining.Round(time.Second))
		} else {
			c.io.Println("⚠️  Session has expired. Please login again.")
		}
	}

	// expiry was reported above
	_, _ = c.auth.Restore(ctx)
	if c.connect(ctx) {
		c.io.Println("Server: reachable")
	} else {
		c.io.Println("Server: unreachable (working offline)")
	}

	stats, err := c.queue.Stats(ctx, authData.UserID)
	if err != nil {
		return err
	}
	c.io.Printf("Queue: %d pending, %d failed, %d synced\n",
		stats[models.StatusPending], stats[models.StatusFailed], stats[models.StatusSynced])
	if stats[models.StatusPending]+stats[models.StatusFailed] > 0 {
		c.io.Println("Run 'medicnote sync' to push queued changes.")
	}
	return nil
}
