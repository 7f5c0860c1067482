package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/agentflow-ai/agentflow-go/pkg/auth"
)

func newLoginCmd() *cobra.Command {
	var passwordFlag string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Authenticate and store the access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, store, err := newClient()
			if err != nil {
				return err
			}

			password := passwordFlag
			if password == "" {
				password, err = readPassword()
				if err != nil {
					return err
				}
			}

			result, err := auth.Login(cmd.Context(), c, args[0], password)
			if err != nil {
				return err
			}
			if err := store.Save(result.Token); err != nil {
				return err
			}

			fmt.Printf("已登录: %s (%s)\n", result.User.Email, result.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&passwordFlag, "password", "p", "", "password (prompted if omitted)")
	return cmd
}

func readPassword() (string, error) {
	fmt.Print("密码: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	// Piped stdin, e.g. echo $PASS | agentflow login ...
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
