package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ent0n29/realtybot/internal/app"
	"github.com/ent0n29/realtybot/internal/dialogue"
	"github.com/ent0n29/realtybot/internal/session"
)

var chatClientID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant in the terminal",
	Long: `chat runs one conversation against the configured listing search, lead
store and AI fallback. Type a number to pick a suggested reply, /clear to start
over and /quit to leave. Reusing --client restores the stored conversation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		res, err := app.Build(ctx, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer res.Cleanup()
		return chat(ctx, res.Hub, chatClientID, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatClientID, "client", "terminal", "Client id used for stored conversation state")
}

func chat(ctx context.Context, hub *dialogue.Hub, clientID string, in io.Reader, out io.Writer) error {
	c, snap := hub.Open(ctx, clientID)
	defer hub.End(c.SessionID())

	t := &transcript{out: out, echoUser: true}
	t.render(snap)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			snap = c.ClearConversation(ctx)
		default:
			if action, ok := t.replyAction(line); ok {
				snap = c.SelectQuickReply(ctx, action)
			} else {
				snap = c.SendUserMessage(ctx, line)
			}
		}
		t.render(snap)
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

// transcript prints the turns added since the last render.
type transcript struct {
	out      io.Writer
	printed  int
	echoUser bool
	replies  []session.QuickReply
}

func (t *transcript) render(snap session.Snapshot) {
	turns := snap.Turns
	if len(turns) < t.printed {
		// cleared
		t.printed = 0
		t.echoUser = true
	}
	for _, turn := range turns[t.printed:] {
		if turn.Speaker == session.SpeakerUser {
			// Typed lines are already on screen.
			if t.echoUser {
				fmt.Fprintf(t.out, "you: %s\n", turn.Text)
			}
			continue
		}
		fmt.Fprintf(t.out, "bot: %s\n", turn.Text)
		for _, p := range turn.Properties {
			fmt.Fprintf(t.out, "     listing %s\n", p.ID)
		}
	}
	t.printed = len(turns)
	t.echoUser = false

	t.replies = nil
	if n := len(turns); n > 0 && turns[n-1].Speaker == session.SpeakerAssistant {
		t.replies = turns[n-1].QuickReplies
	}
	for i, qr := range t.replies {
		fmt.Fprintf(t.out, "  [%d] %s\n", i+1, qr.Label)
	}
}

// replyAction maps a typed number to the matching suggestion.
func (t *transcript) replyAction(line string) (string, bool) {
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(t.replies) {
		return "", false
	}
	return t.replies[n-1].Action, true
}
