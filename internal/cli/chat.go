package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var userID string
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant on stdin (one message per line, \"exit\" to quit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			out := cmd.OutOrStdout()
			sc := bufio.NewScanner(cmd.InOrStdin())
			for {
				_, _ = fmt.Fprint(out, "> ")
				if !sc.Scan() {
					break
				}
				line := strings.TrimSpace(sc.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}
				resp, err := m.ProcessMessage(cmd.Context(), userID, line, sessionID)
				if err != nil {
					return err
				}
				sessionID = resp.SessionID
				_, _ = fmt.Fprintln(out, resp.Response)
			}
			if sessionID != "" {
				_, _ = fmt.Fprintf(out, "\nsession: %s\n", sessionID)
			}
			return sc.Err()
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().StringVar(&sessionID, "session", "", "Resume an existing session")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
