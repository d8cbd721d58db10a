package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/assistant"
)

func runAsk(cmd *cobra.Command, args []string) error {
	if askEmail == "" || askPassword == "" {
		return errors.New("ask: --email and --password are required (or CARELOG_EMAIL / CARELOG_PASSWORD)")
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()

	user, err := a.users.Authenticate(ctx, askEmail, askPassword, "")
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	res := a.assistant.ProcessMessage(ctx, assistant.Input{
		Message:     strings.Join(args, " "),
		UserID:      user.ID,
		DisplayName: user.Name,
	})

	out := cmd.OutOrStdout()
	if askJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintln(out, res.Response)
	if !res.Success && res.Error != "" {
		fmt.Fprintf(out, "(%s: %s)\n", res.Kind, res.Error)
	}
	return nil
}
