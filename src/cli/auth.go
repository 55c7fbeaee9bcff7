package cli

import (
	"bufio"
	"fmt"
	"strings"

	"notes-app/src/client"

	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			var err error
			if email, err = promptIfEmpty(cmd, in, email, "Email"); err != nil {
				return err
			}
			if password, err = promptIfEmpty(cmd, in, password, "Password"); err != nil {
				return err
			}

			session, err := client.Login(cmd.Context(), a.httpClient, a.v.GetString(keyServer), email, password)
			if err != nil {
				return err
			}
			if err := a.sessionStore().Save(session); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", session.User.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			var err error
			if username, err = promptIfEmpty(cmd, in, username, "Username"); err != nil {
				return err
			}
			if email, err = promptIfEmpty(cmd, in, email, "Email"); err != nil {
				return err
			}
			if password, err = promptIfEmpty(cmd, in, password, "Password"); err != nil {
				return err
			}

			session, err := client.Register(cmd.Context(), a.httpClient, a.v.GetString(keyServer), username, email, password)
			if err != nil {
				return err
			}
			if err := a.sessionStore().Save(session); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", session.User.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username (3-50 characters)")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (at least 6 characters)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sessionStore().Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func promptIfEmpty(cmd *cobra.Command, in *bufio.Reader, value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
	line, err := in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("%s is required: %w", strings.ToLower(label), err)
		}
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return line, nil
}
