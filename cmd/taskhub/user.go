package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskhub/internal/api"
	"taskhub/internal/config"
	"taskhub/internal/models"
)

func newUserCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(
		newUserCreateCmd(cfg, jsonOutput),
		newUserListCmd(cfg, jsonOutput),
		newUserShowCmd(cfg, jsonOutput),
		newUserUpdateCmd(cfg, jsonOutput),
		newUserDeleteCmd(cfg),
		newUserPasswdCmd(cfg),
	)
	return cmd
}

func newUserCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		req           api.UserCreateRequest
		teams         string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Register a user",
		Args:  requireExactlyArgs(1, "username is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Username = args[0]
			req.Teams = splitCommaList(teams)
			if passwordStdin {
				password, err := readPassword(stdin)
				if err != nil {
					return err
				}
				req.Password = password
			}

			return withClient(cfg, func(client *api.Client) error {
				user, err := client.CreateUser(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(user)
				}
				return writePlain("created user %s (%s)\n", user.Username, user.ID)
			})
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.DisplayName, "display-name", "", "display name")
	cmd.Flags().StringVar(&req.Role, "role", "", "role: admin or member")
	cmd.Flags().StringVar(&teams, "teams", "", "comma-separated team names")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read initial password from stdin")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUserListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		query      api.UserQuery
		activeOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if activeOnly {
				active := true
				query.Active = &active
			}
			return withClient(cfg, func(client *api.Client) error {
				users, err := client.ListUsers(cmd.Context(), query)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"count": len(users), "users": users})
				}
				if len(users) == 0 {
					return writePlain("no users found\n")
				}
				return writeUserList(users)
			})
		},
	}

	cmd.Flags().StringVar(&query.Role, "role", "", "filter by role")
	cmd.Flags().StringVar(&query.Team, "team", "", "filter by team")
	cmd.Flags().StringVar(&query.Skill, "skill", "", "filter by skill name")
	cmd.Flags().StringVar(&query.Search, "search", "", "match username, email or display name")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only active users")
	cmd.Flags().IntVar(&query.Limit, "limit", 0, "maximum number of users")
	cmd.Flags().IntVar(&query.Offset, "offset", 0, "number of users to skip")
	return cmd
}

func newUserShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a user",
		Args:  requireExactlyArgs(1, "user id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				user, err := client.GetUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(user)
				}
				return writeUserDetail(user)
			})
		},
	}
}

func newUserUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		email, displayName, role, teams string
		active                          bool
		expectedVersion                 int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user's profile",
		Args:  requireExactlyArgs(1, "user id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			req := api.UserUpdateRequest{
				Email:           optionalString(flags.Changed("email"), email),
				DisplayName:     optionalString(flags.Changed("display-name"), displayName),
				Role:            optionalString(flags.Changed("role"), role),
				ExpectedVersion: expectedVersion,
			}
			if flags.Changed("active") {
				req.IsActive = &active
			}
			if flags.Changed("teams") {
				list := splitCommaList(teams)
				req.Teams = &list
			}

			return withClient(cfg, func(client *api.Client) error {
				user, err := client.UpdateUser(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(user)
				}
				return writePlain("updated user %s (version %d)\n", user.Username, user.Version)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&displayName, "display-name", "", "display name")
	cmd.Flags().StringVar(&role, "role", "", "role (admin only)")
	cmd.Flags().StringVar(&teams, "teams", "", "comma-separated team names")
	cmd.Flags().BoolVar(&active, "active", true, "account is active (admin only)")
	cmd.Flags().IntVar(&expectedVersion, "expected-version", 0, "fail if the user changed since this version")
	return cmd
}

func newUserDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a user",
		Args:    requireExactlyArgs(1, "user id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				if err := client.DeleteUser(cmd.Context(), args[0]); err != nil {
					return err
				}
				return writePlain("deleted user %s\n", args[0])
			})
		},
	}
}

func newUserPasswdCmd(cfg *config.Config) *cobra.Command {
	var current string

	cmd := &cobra.Command{
		Use:   "passwd <id>",
		Short: "Set a user's password (new password read from stdin)",
		Args:  requireExactlyArgs(1, "user id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(stdin)
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				req := api.PasswordRequest{Password: password, CurrentPassword: current}
				if err := client.SetPassword(cmd.Context(), args[0], req); err != nil {
					return err
				}
				return writePlain("password updated\n")
			})
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "current password, required when changing your own")
	return cmd
}

func writeUserDetail(user models.User) error {
	lines := []string{
		fmt.Sprintf("id: %s", user.ID),
		fmt.Sprintf("username: %s", user.Username),
		fmt.Sprintf("email: %s", user.Email),
		fmt.Sprintf("role: %s", user.Role),
		fmt.Sprintf("active: %t", user.IsActive),
		fmt.Sprintf("version: %d", user.Version),
	}
	if user.DisplayName != "" {
		lines = append(lines, fmt.Sprintf("display_name: %s", user.DisplayName))
	}
	if len(user.Teams) > 0 {
		lines = append(lines, fmt.Sprintf("teams: %s", strings.Join(user.Teams, ", ")))
	}
	stats := user.CollaborationStats
	lines = append(lines, fmt.Sprintf("stats: created=%d completed=%d comments=%d",
		stats.TasksCreated, stats.TasksCompleted, stats.CommentsPosted))
	return writePlain("%s\n", strings.Join(lines, "\n"))
}
