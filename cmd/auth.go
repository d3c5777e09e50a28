package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	emailFlag    string
	passwordFlag string
)

var (
	okStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("42"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the Team Task service",
	Long: `Log in with your email and password.

The bearer token is stored under your profile directory and reused by
every subsequent command until you log out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		email, password, err := credentials()
		if err != nil {
			return err
		}

		if err := e.guard.Login(cmd.Context(), email, password); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Println(okStyle.Render("Logged in"))
		if userID := e.session.UserID(); userID != "" {
			fmt.Println(mutedStyle.Render("user: " + userID))
		}
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		email, password, err := credentials()
		if err != nil {
			return err
		}

		user, err := e.guard.Register(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		fmt.Println(okStyle.Render("Account created"))
		fmt.Println(mutedStyle.Render("user: " + user.ID))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		if err := e.guard.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}

		fmt.Println(okStyle.Render("Logged out"))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user id of the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		userID, err := e.guard.Require()
		if err != nil {
			return err
		}

		fmt.Println(userID)
		return nil
	},
}

// credentials resolves email and password from flags, prompting for
// whatever is missing. The password prompt never echoes.
func credentials() (string, string, error) {
	email := strings.TrimSpace(emailFlag)
	if email == "" {
		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	password := passwordFlag
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	}

	return email, password, nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&emailFlag, "email", "", "Account email (prompted when omitted)")
		c.Flags().StringVar(&passwordFlag, "password", "", "Account password (prompted when omitted)")
	}

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
