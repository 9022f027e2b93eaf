package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/treadline/treadline/internal/auth"
	"github.com/treadline/treadline/internal/paths"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Stride API credentials",
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authStatusCmd())
	cmd.AddCommand(authLogoutCmd())

	return cmd
}

func authLoginCmd() *cobra.Command {
	var (
		token  string
		expiry time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a Stride API token",
		Long:  "Stores the given access token locally. Reads STRIDE_TOKEN when --token is not set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("STRIDE_TOKEN")
			}
			if token == "" {
				return fmt.Errorf("no token given: pass --token or set STRIDE_TOKEN")
			}

			if _, err := paths.EnsureDir(); err != nil {
				return err
			}
			tokenPath, err := paths.Token()
			if err != nil {
				return err
			}

			t := &oauth2.Token{
				AccessToken: token,
				TokenType:   "Bearer",
			}
			if expiry > 0 {
				t.Expiry = time.Now().Add(expiry)
			}

			if err := auth.SaveToken(tokenPath, t); err != nil {
				return err
			}

			fmt.Println("Authentication successful!")
			if !t.Expiry.IsZero() {
				fmt.Printf("Token expires: %s\n", t.Expiry.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Stride API access token")
	cmd.Flags().DurationVar(&expiry, "expiry", 0, "token lifetime (0 means no expiry)")

	return cmd
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := newTokenSource()
			if err != nil {
				return err
			}

			token, err := ts.Token()
			if err != nil {
				fmt.Printf("Not authenticated: %v\n", err)
				return nil
			}

			fmt.Println("Authenticated")
			if !token.Expiry.IsZero() {
				fmt.Printf("Token expires: %s\n", token.Expiry.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenPath, err := paths.Token()
			if err != nil {
				return err
			}
			if err := auth.ClearToken(tokenPath); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}
