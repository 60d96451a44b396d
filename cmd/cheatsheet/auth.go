package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cheatsheets/pkg/models"
)

// promptPassword reads a password without echo when stdin is a terminal
func promptPassword(w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(w)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd() *cobra.Command {
	var creds models.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the remote catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if creds.Password == "" {
				pw, err := promptPassword(cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return err
				}
				creds.Password = pw
			}

			a, err := openApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer a.close()

			user, err := a.session.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&creds.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var reg models.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the remote catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reg.Password == "" {
				pw, err := promptPassword(cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return err
				}
				confirm, err := promptPassword(cmd.ErrOrStderr(), "Confirm password: ")
				if err != nil {
					return err
				}
				reg.Password, reg.ConfirmPassword = pw, confirm
			} else if reg.ConfirmPassword == "" {
				reg.ConfirmPassword = reg.Password
			}

			a, err := openApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer a.close()

			user, err := a.session.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reg.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&reg.Name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer a.close()

			a.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.session.Init(cmd.Context()); err != nil {
				return err
			}
			user, ok := a.session.CurrentUser()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", user.Name, user.Email, user.ID)
			return nil
		},
	}
}
