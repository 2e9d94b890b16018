package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tubularapp/tubular/internal/domain"
)

// newAccountCommand creates the account command group
func newAccountCommand(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	cmd.AddCommand(newAccountListCommand(app))
	cmd.AddCommand(newAccountAddCommand(app))
	cmd.AddCommand(newAccountRemoveCommand(app))
	cmd.AddCommand(newAccountSwitchCommand(app))

	return cmd
}

func newAccountListCommand(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts := app.session.All()
			if len(accounts) == 0 {
				fmt.Println("No accounts stored.")
				return nil
			}
			current := app.session.Current()
			for _, account := range accounts {
				marker := " "
				if current != nil && current.ID == account.ID {
					marker = "*"
				}
				secrets := ""
				if app.session.HasSecrets(account) {
					secrets = " [credentials]"
				}
				fmt.Printf("%s %s  %s%s\n", marker, account.ID, account.Name, secrets)
			}
			return nil
		},
	}
}

func newAccountAddCommand(app *appState) *cobra.Command {
	var (
		instanceQuery string
		username      string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account on an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instance, err := findInstance(app, instanceQuery)
			if err != nil {
				return err
			}
			if username == "" {
				username = args[0]
			}

			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}

			account, err := app.session.Add(instance, args[0], username, password)
			if err != nil {
				return err
			}

			fmt.Printf("Added account %s on %s\n", account.Name, instance.Description())
			return nil
		},
	}

	cmd.Flags().StringVar(&instanceQuery, "instance", "", "Instance id or name")
	cmd.Flags().StringVar(&username, "username", "", "Login username (defaults to the account name)")
	cmd.MarkFlagRequired("instance")

	return cmd
}

func newAccountRemoveCommand(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id-or-name>",
		Short: "Remove an account and purge its credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := findAccount(app, args[0])
			if err != nil {
				return err
			}
			if err := app.session.Remove(account); err != nil {
				return err
			}
			fmt.Printf("Removed account %s\n", account.Name)
			return nil
		},
	}
}

func newAccountSwitchCommand(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <id-or-name>",
		Short: "Switch the current account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := findAccount(app, args[0])
			if err != nil {
				return err
			}
			if err := app.session.SetCurrent(&account); err != nil {
				return err
			}
			fmt.Printf("Now using %s (%s)\n", account.Name, app.session.App().Name())
			return nil
		},
	}
}

// findAccount resolves an account by exact id, then by fuzzy name match.
func findAccount(app *appState, query string) (domain.Account, error) {
	if account := app.session.Find(query); account != nil {
		return *account, nil
	}

	accounts := app.session.All()
	names := make([]string, len(accounts))
	for i, account := range accounts {
		names[i] = account.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	if len(ranks) == 0 {
		return domain.Account{}, fmt.Errorf("no account matches %q: %w", query, domain.ErrAccountNotFound)
	}
	sort.Sort(ranks)
	return accounts[ranks[0].OriginalIndex], nil
}

// readPassword prompts on the terminal without echo, falling back to a
// plain line read when stdin is not a TTY (piped input in scripts).
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
