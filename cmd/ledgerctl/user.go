package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an API user",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		fullName, _ := cmd.Flags().GetString("full-name")
		role, _ := cmd.Flags().GetString("role")
		password, _ := cmd.Flags().GetString("password")

		if password == "" {
			var err error
			password, err = promptPassword()
			if err != nil {
				return err
			}
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.svc.Auth.CreateUser(cmd.Context(), username, password, fullName, role)
		if err != nil {
			return err
		}
		fmt.Printf("Created user %s (id %d, role %s)\n", user.Username, user.ID, user.Role)
		return nil
	},
}

func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--password is required when stdin is not a terminal")
	}

	fmt.Print("Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Print("Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return strings.TrimRight(string(first), "\r\n"), nil
}
