package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mailmind-ai/mailmind/pkg/digest"
	"github.com/mailmind-ai/mailmind/pkg/models"
)

func newReplyCmd() *cobra.Command {
	var configPath string
	var modelOverride string
	var stream bool

	cmd := &cobra.Command{
		Use:   "reply [text]",
		Short: "Draft a gated reply to an email (text from arg or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(args)
			if err != nil {
				return err
			}

			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()

			task := a.cfg.Task(models.TaskReply)
			modelID := task.Model
			if modelOverride != "" {
				modelID = modelOverride
			}

			req := models.Request{
				Task:      models.TaskReply,
				InputText: digest.ReplyPrompt(text),
				ModelID:   modelID,
			}

			if stream {
				return streamResponse(cmd, a, req, task.Threshold)
			}

			resp, err := a.pipeline.Handle(cmd.Context(), req, task.Threshold)
			if err != nil {
				return fmt.Errorf("reply: %w", err)
			}
			printVerdict(cmd, resp)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVarP(&modelOverride, "model", "m", "", "override the configured reply model")
	cmd.Flags().BoolVar(&stream, "stream", false, "stream partial output as it is generated")
	return cmd
}

func inputText(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no input text: pass it as an argument or on stdin")
	}
	return text, nil
}

func streamResponse(cmd *cobra.Command, a *app, req models.Request, threshold float64) error {
	events, err := a.pipeline.HandleStream(cmd.Context(), req, threshold)
	if err != nil {
		return fmt.Errorf("reply: %w", err)
	}

	for ev := range events {
		if !ev.Done {
			cmd.Print(ev.Text)
			continue
		}
		if ev.Err != nil {
			cmd.Println()
			return fmt.Errorf("reply: %w", ev.Err)
		}
		cmd.Println()
		if !ev.Response.Accepted {
			cmd.Printf("\n%s\n", ev.Response.Annotation)
		}
	}
	return nil
}

func printVerdict(cmd *cobra.Command, resp models.GatedResponse) {
	cmd.Println(resp.Text)
	if !resp.Accepted {
		cmd.Printf("\n%s\n", resp.Annotation)
	}
}
