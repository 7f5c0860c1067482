package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentflow-ai/agentflow-go/pkg/knowledge"
)

func newKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Manage knowledge bases",
	}
	cmd.AddCommand(newKBListCmd())
	cmd.AddCommand(newKBCreateCmd())
	cmd.AddCommand(newKBDeleteCmd())
	cmd.AddCommand(newKBDocsCmd())
	cmd.AddCommand(newKBUploadCmd())
	cmd.AddCommand(newKBSearchCmd())
	return cmd
}

func newKBListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List knowledge bases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			bases, err := knowledge.NewAPI(c).List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, len(bases))
			for i, b := range bases {
				rows[i] = []string{b.ID, b.Name, strconv.Itoa(b.DocumentCount)}
			}
			table([]string{"ID", "NAME", "DOCS"}, rows)
			return nil
		},
	}
}

func newKBCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			b, err := knowledge.NewAPI(c).Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("已创建知识库: %s (%s)\n", b.Name, b.ID)
			return nil
		},
	}
}

func newKBDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a knowledge base and all its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			if err := knowledge.NewAPI(c).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("已删除知识库:", args[0])
			return nil
		},
	}
}

func newKBDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "docs <id>",
		Short: "List the documents of a knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			docs, err := knowledge.NewAPI(c).Documents(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, len(docs))
			for i, d := range docs {
				rows[i] = []string{d.ID, d.Filename, d.Status, strconv.FormatInt(d.FileSize, 10)}
			}
			table([]string{"ID", "FILENAME", "STATUS", "SIZE"}, rows)
			return nil
		},
	}
}

func newKBUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <id> <file>...",
		Short: "Upload documents for indexing",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}

			paths := args[1:]
			results := knowledge.NewAPI(c).UploadAll(cmd.Context(), args[0], paths)

			var failed int
			for i, res := range results {
				if res.OK() {
					fmt.Printf("已上传: %s (%s)\n", res.Value.Filename, res.Value.Status)
					continue
				}
				failed++
				fmt.Printf("上传失败: %s: %v\n", paths[i], res.Err)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(paths))
			}
			return nil
		},
	}
}

func newKBSearchCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search <id> <query>",
		Short: "Search a knowledge base",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := newClient()
			if err != nil {
				return err
			}
			results, err := knowledge.NewAPI(c).Search(cmd.Context(), args[0], args[1], topK)
			if err != nil {
				return err
			}

			for _, r := range results {
				fmt.Printf("%.3f  %s #%d\n%s\n\n", r.Score, r.Filename, r.ChunkIndex, r.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "number of chunks to return")
	return cmd
}
