package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentflow-ai/agentflow-go/pkg/chat"
)

func newChatCmd() *cobra.Command {
	var workflowID, kbID string
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the platform, streaming the reply",
		Long: `Streams a chat reply token by token. With a message argument it sends
one turn and exits; without arguments it opens an interactive session
(/new starts a fresh conversation, /quit exits).`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}

			var history *chat.HistoryStore
			if !noHistory {
				path := filepath.Join(filepath.Dir(viper.GetString("token_path")), "history.db")
				history, err = chat.OpenHistory(path)
				if err != nil {
					return err
				}
				defer history.Close()
			}

			svc := chat.NewService(c, history)
			svc.SelectedWorkflowID = workflowID
			svc.SelectedKBID = kbID
			svc.OnToken = func(delta string) { fmt.Print(delta) }
			svc.Thought = newThoughtPrinter()

			if history != nil {
				if err := svc.LoadHistory(cmd.Context()); err != nil {
					return err
				}
			}

			if len(args) > 0 {
				err := svc.Send(cmd.Context(), strings.Join(args, " "))
				fmt.Println()
				return err
			}
			return runInteractive(cmd, svc)
		},
	}

	cmd.Flags().StringVar(&workflowID, "workflow", "", "scope replies to one workflow")
	cmd.Flags().StringVar(&kbID, "kb", "", "ground replies on one knowledge base")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not persist the session")
	return cmd
}

func runInteractive(cmd *cobra.Command, svc *chat.Service) error {
	fmt.Println("AgentFlow 聊天 (/new 新会话, /quit 退出)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/new":
			session := svc.NewSession()
			fmt.Println("新会话:", session.Title)
			continue
		}

		if err := svc.Send(cmd.Context(), line); err != nil {
			fmt.Fprintln(os.Stderr, "发送失败:", err)
		}
		fmt.Println()
	}
}
