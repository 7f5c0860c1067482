package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentflow-ai/agentflow-go/pkg/logx"
	"github.com/agentflow-ai/agentflow-go/pkg/sandbox"
)

const sandboxLongDesc = `Run the local development sandbox.

Serves the full platform API on localhost with seeded fixtures: two
accounts (admin@example.com / admin123 and user@example.com with any
password), a translator skill, a demo workflow and a sample knowledge
base. Streaming endpoints produce scripted replies unless an OpenAI key
is configured, in which case tokens are relayed from a live model.`

func newSandboxCmd() *cobra.Command {
	var (
		addr        string
		openaiModel string
	)

	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run the local development sandbox server",
		Long:  sandboxLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := sandbox.New(sandbox.Config{
				OpenAIKey:   viper.GetString("openai_api_key"),
				OpenAIModel: openaiModel,
			})

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Listen(addr) }()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-quit:
				logx.WithField("signal", sig.String()).Info("shutting down sandbox")
			}

			done := make(chan error, 1)
			go func() { done <- srv.Shutdown() }()
			select {
			case err := <-done:
				return err
			case <-time.After(10 * time.Second):
				logx.Warn("sandbox shutdown timed out")
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().StringVar(&openaiModel, "openai-model", "", "relay model (requires AGENTFLOW_OPENAI_API_KEY)")
	return cmd
}
