package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"resumechat/internal/domain"
)

func newAskCommand(a *app) *cobra.Command {
	var debug, asJSON bool
	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Answer one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, _, err := a.prepare()
			if err != nil {
				return err
			}
			defer a.closeIndex(idx)

			req := domain.ChatRequest{Message: strings.Join(args, " "), Debug: debug}
			resp, err := a.chatService(idx, nil).Respond(a.ctx, req)
			if err != nil {
				return fmt.Errorf("answer failed: %w", err)
			}
			if asJSON {
				data, err := json.MarshalIndent(resp, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal answer: %w", err)
				}
				cmd.Println(string(data))
				return nil
			}
			printAnswer(cmd, resp)
			return nil
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "include retrieval hits")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the response as JSON")
	return cmd
}

func printAnswer(cmd *cobra.Command, resp domain.ChatResponse) {
	cmd.Println(resp.Answer)
	if len(resp.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, c := range resp.Citations {
			cmd.Printf("  [%d] %s: %s\n", c.ChunkID, c.Section, c.Snippet)
		}
	}
	if len(resp.UsedFields) > 0 {
		cmd.Printf("\nFields: %s\n", strings.Join(resp.UsedFields, ", "))
	}
	if resp.DebugHits != nil && len(*resp.DebugHits) > 0 {
		cmd.Println()
		cmd.Println("Hits:")
		for _, h := range *resp.DebugHits {
			cmd.Printf("  [%d] %s %s %.4f %s\n", h.ChunkID, h.Method, h.Type, h.Score, h.Snippet)
		}
	}
}
