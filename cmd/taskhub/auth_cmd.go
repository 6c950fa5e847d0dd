package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskhub/internal/api"
	"taskhub/internal/auth"
	"taskhub/internal/config"
)

func newLoginCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		username      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store a session token in the system keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !passwordStdin {
				return fmt.Errorf("--password-stdin is required")
			}
			normalized, err := auth.NormalizeUsername(username)
			if err != nil {
				return err
			}
			password, err := readPassword(stdin)
			if err != nil {
				return err
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Login(cmd.Context(), api.LoginRequest{Username: normalized, Password: password})
				if err != nil {
					return err
				}
				if err := tokenStore.Save(cfg.APIURL, resp.Token); err != nil {
					return fmt.Errorf("store session token: %w", err)
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"user": resp.User, "expires_at": resp.ExpiresAt})
				}
				return writePlain("logged in as %s (session expires %s)\n", normalized, formatTime(resp.ExpiresAt))
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username to sign in as")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session and forget its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				if err := client.Logout(cmd.Context()); err != nil && !api.IsCode(err, "unauthorized") {
					return err
				}
				if err := tokenStore.Delete(cfg.APIURL); err != nil {
					return fmt.Errorf("remove session token: %w", err)
				}
				return writePlain("logged out\n")
			})
		},
	}
}

func newWhoamiCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				user, err := client.Me(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(user)
				}
				return writePlain("%s (%s, %s)\n", user.Username, user.Role, user.ID)
			})
		},
	}
}
