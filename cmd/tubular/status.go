package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tubularapp/tubular/internal/domain"
)

// newStatusCommand creates the status command
func newStatusCommand(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			current := app.session.Current()
			if current == nil {
				fmt.Println("No account configured. Add an instance and an account to get started.")
				return nil
			}

			fmt.Printf("Account:  %s\n", current.Name)
			fmt.Printf("Backend:  %s\n", app.session.App().Name())
			if current.Anonymous {
				fmt.Println("Signed in: no (anonymous)")
				return nil
			}
			if current.Public {
				fmt.Println("Signed in: no (public instance)")
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			if err := app.session.API().Validate(ctx); err != nil {
				switch {
				case errors.Is(err, domain.ErrAuthFailed):
					fmt.Println("Signed in: no (credentials rejected)")
				case errors.Is(err, domain.ErrNotSignedIn):
					fmt.Println("Signed in: no (no credentials stored)")
				default:
					return fmt.Errorf("could not verify credentials: %w", err)
				}
				return nil
			}

			if app.session.SignedIn() {
				fmt.Println("Signed in: yes")
			} else {
				fmt.Println("Signed in: no")
			}
			return nil
		},
	}
}
