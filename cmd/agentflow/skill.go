package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentflow-ai/agentflow-go/pkg/skill"
)

func newSkillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skill",
		Short: "List, inspect and run skills",
	}
	cmd.AddCommand(newSkillListCmd())
	cmd.AddCommand(newSkillShowCmd())
	cmd.AddCommand(newSkillRunCmd())
	cmd.AddCommand(newSkillPushCmd())
	cmd.AddCommand(newSkillDeleteCmd())
	return cmd
}

func newSkillListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available skills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			skills, err := skill.NewAPI(c).List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, len(skills))
			for i, s := range skills {
				inputs := "-"
				if s.HasInputs {
					names := make([]string, len(s.Inputs))
					for j, in := range s.Inputs {
						names[j] = in.Name
					}
					inputs = strings.Join(names, ", ")
				}
				rows[i] = []string{s.Name, s.Description, inputs}
			}
			table([]string{"NAME", "DESCRIPTION", "INPUTS"}, rows)
			return nil
		},
	}
}

func newSkillShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a skill's full definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			s, err := skill.NewAPI(c).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(s.RawContent)
			return nil
		},
	}
}

func newSkillRunCmd() *cobra.Command {
	var inputFlags []string

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a skill, streaming its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			api := skill.NewAPI(c)
			s, err := api.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			inputs := skill.PrefillInputs(s)
			for _, kv := range inputFlags {
				key, value, found := strings.Cut(kv, "=")
				if !found {
					return fmt.Errorf("invalid --input %q, want name=value", kv)
				}
				inputs[key] = value
			}

			runner := skill.NewRunner(c)
			runner.OnToken = func(delta string) { fmt.Print(delta) }
			runner.Thought = newThoughtPrinter()

			err = runner.Run(cmd.Context(), s, inputs)
			fmt.Println()
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&inputFlags, "input", "i", nil, "skill input as name=value (repeatable)")
	return cmd
}

func newSkillPushCmd() *cobra.Command {
	var update bool

	cmd := &cobra.Command{
		Use:   "push <name> <skill.md>",
		Short: "Create or update a skill from a SKILL.md file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			c, _, err := newClient()
			if err != nil {
				return err
			}
			api := skill.NewAPI(c)

			if update {
				_, err = api.Update(cmd.Context(), args[0], string(content))
			} else {
				_, err = api.Create(cmd.Context(), args[0], string(content))
			}
			if err != nil {
				return err
			}
			fmt.Println("已保存技能:", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&update, "update", "u", false, "update an existing skill")
	return cmd
}

func newSkillDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			if err := skill.NewAPI(c).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("已删除技能:", args[0])
			return nil
		},
	}
}
