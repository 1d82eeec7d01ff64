package main

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	tui "github.com/sadopc/bizdesk/internal/app"
	"github.com/sadopc/bizdesk/internal/logging"
	"github.com/sadopc/bizdesk/internal/ui/theme"
)

func newTUICmd(a *app) *cobra.Command {
	var themeName string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session, err := a.sessionStore(ctx)
			if err != nil {
				return err
			}
			store, err := a.historyStore()
			if err != nil {
				return err
			}

			// stderr belongs to the alt screen; only a log file survives
			logger := a.logger
			if a.cfg.Log.File == "" {
				logger = logging.Nop()
			}

			name := a.cfg.Theme
			if themeName != "" {
				name = themeName
			}
			model := tui.New(ctx, tui.Deps{
				Services:  a.svc,
				Transport: a.transport,
				Session:   session,
				History:   store,
				Board:     a.board,
				Logger:    logger,
				Config:    a.cfg,
				Theme:     theme.Resolve(name, theme.CustomDir()),
			})

			p := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithOutput(a.stdout),
			)
			_, err = p.Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&themeName, "theme", "", "color theme, overrides the config ("+strings.Join(theme.Names(), ", ")+")")
	return cmd
}
