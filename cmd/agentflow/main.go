// Command agentflow is the terminal client for the AgentFlow platform:
// streaming chat, skill runs, workflow executions, knowledge-base
// management and a local development sandbox.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentflow-ai/agentflow-go/pkg/auth"
	"github.com/agentflow-ai/agentflow-go/pkg/client"
	"github.com/agentflow-ai/agentflow-go/pkg/logx"
)

const rootLongDesc = `AgentFlow terminal client.

Talks to an AgentFlow platform instance: streaming chat with knowledge-base
grounding, skill runs, workflow executions and admin operations.

Configuration is read from ~/.agentflow/config.yaml and AGENTFLOW_* env
vars. CLI flags take precedence.

  agentflow login user@example.com     Authenticate and store the token
  agentflow chat                       Interactive streaming chat
  agentflow skill list                 List available skills
  agentflow workflow list              List workflows
  agentflow kb list                    List knowledge bases
  agentflow sandbox                    Run the local dev server`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "agentflow",
		Short:         "AgentFlow terminal client",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logx.SetLevel(logx.LevelDebug)
			}
			return initConfig(cmd)
		},
	}

	cmd.PersistentFlags().String("base-url", "", "platform base URL")
	cmd.PersistentFlags().String("config-dir", "", "config directory (default ~/.agentflow)")
	cmd.PersistentFlags().BoolP("debug", "d", false, "enable debug logging")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newSkillCmd())
	cmd.AddCommand(newWorkflowCmd())
	cmd.AddCommand(newKBCmd())
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newSandboxCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("config-dir")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, ".agentflow")
	}

	viper.SetDefault("base_url", "http://localhost:8080")
	viper.SetDefault("token_path", filepath.Join(dir, "token"))

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(dir)
	viper.SetEnvPrefix("AGENTFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; defaults and env cover it.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return err
		}
	}

	if base, _ := cmd.Flags().GetString("base-url"); base != "" {
		viper.Set("base_url", base)
	}
	return nil
}

// newClient builds the API client with the persisted credential store and
// the 401 hook that reminds the user to log in again.
func newClient() (*client.Client, *auth.FileStore, error) {
	store, err := auth.NewFileStore(viper.GetString("token_path"))
	if err != nil {
		return nil, nil, err
	}
	c := client.New(viper.GetString("base_url"),
		client.WithCredentials(store),
		client.WithUnauthorizedHook(func() {
			fmt.Fprintln(os.Stderr, "登录已过期，请重新运行 agentflow login")
		}),
	)
	return c, store, nil
}
