// bookversectl is the operator CLI: bootstrap tasks that must never be
// reachable over HTTP, like provisioning the first admin account.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/huanvo/bookverse-api/internal/models"
	"github.com/huanvo/bookverse-api/internal/repository/sqlconnect"
	"github.com/huanvo/bookverse-api/internal/security/password"
	storeusers "github.com/huanvo/bookverse-api/internal/store/users"
	"github.com/huanvo/bookverse-api/internal/validate"
)

func main() {
	root := &cobra.Command{
		Use:           "bookversectl",
		Short:         "Operator tooling for the bookverse API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("env-file", ".env", "env file to load before connecting")
	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if f, _ := cmd.Flags().GetString("env-file"); f != "" {
			_ = godotenv.Load(f)
		}
	}

	root.AddCommand(createAdminCmd(), checkEnvCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func createAdminCmd() *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Provision an admin account (prompts for the password)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validate.Username(username); err != nil {
				return fmt.Errorf("--username: %w", err)
			}
			if err := validate.Email(email); err != nil {
				return fmt.Errorf("--email: %w", err)
			}

			plain, err := promptPassword("Password: ")
			if err != nil {
				return err
			}
			if err := validate.Password(plain); err != nil {
				return err
			}
			confirm, err := promptPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if plain != confirm {
				return fmt.Errorf("passwords do not match")
			}

			hash, err := password.Hash(plain)
			if err != nil {
				return err
			}

			db, err := sqlconnect.ConnectDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			u, err := storeusers.New(db).Provision(ctx,
				storeusers.Draft{Username: username, Email: email},
				hash,
				[]string{models.RoleCustomer, models.RoleAdmin},
			)
			if err != nil {
				return err
			}
			fmt.Printf("Created admin %s (%s) with roles %s\n",
				u.Username, u.ID, strings.Join(u.Roles, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login username")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func checkEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-env",
		Short: "Validate required configuration and print hardening warnings",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := validate.Env(); err != nil {
				return err
			}
			warns := validate.HardeningWarnings(os.Getenv("APP_ENV"))
			for _, w := range warns {
				fmt.Println("warning:", w)
			}
			if len(warns) == 0 {
				fmt.Println("configuration OK")
			}
			return nil
		},
	}
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
