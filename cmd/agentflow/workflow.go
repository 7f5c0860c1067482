package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentflow-ai/agentflow-go/pkg/workflow"
)

func newWorkflowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "List and execute workflows",
	}
	cmd.AddCommand(newWorkflowListCmd())
	cmd.AddCommand(newWorkflowExecCmd())
	cmd.AddCommand(newWorkflowDeleteCmd())
	return cmd
}

func newWorkflowListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workflows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			items, err := workflow.NewAPI(c).List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, len(items))
			for i, w := range items {
				rows[i] = []string{w.ID, w.Name, w.Description}
			}
			table([]string{"ID", "NAME", "DESCRIPTION"}, rows)
			return nil
		},
	}
}

func newWorkflowExecCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "exec <id>",
		Short: "Execute a workflow with a test input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}

			exec := workflow.NewExecutor(c)
			exec.OnLog = func(line string) { fmt.Fprintln(os.Stderr, line) }
			exec.OnToken = func(delta string) { fmt.Print(delta) }

			if err := exec.Execute(cmd.Context(), args[0], input); err != nil {
				return err
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "test input passed to the start node")
	return cmd
}

func newWorkflowDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			if err := workflow.NewAPI(c).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("已删除工作流:", args[0])
			return nil
		},
	}
}
