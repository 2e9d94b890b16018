package session

import (
	"github.com/tubularapp/tubular/internal/domain"
)

// Migrate moves legacy plaintext credentials from durable account records
// into the keychain. It runs at startup before any account is activated.
// Records the rules recognize get their plaintext fields cleared, so a
// second run finds nothing left to do; records matching no rule are left
// untouched.
func (c *Controller) Migrate() error {
	for _, account := range c.store.Accounts() {
		if !account.NeedsMigration() {
			continue
		}

		instance, ok := c.resolveInstance(account.InstanceID)
		if !ok {
			c.logger.Warn("legacy account bound to unknown instance, skipping",
				"account", account.ID, "instance", account.InstanceID)
			continue
		}

		migrated := false
		switch instance.App {
		case domain.AppInvidious:
			// The oldest layout stored the login name in the name field;
			// a later one stored the token in the username field.
			if account.LegacyName != "" {
				if err := c.SetCredentials(account, account.LegacyName, ""); err != nil {
					return err
				}
				migrated = true
			}
			if account.Username != "" {
				if err := c.SetToken(account, account.Username); err != nil {
					return err
				}
				migrated = true
			}
		case domain.AppPiped:
			if account.Username != "" && account.Password != "" {
				if err := c.SetCredentials(account, account.Username, account.Password); err != nil {
					return err
				}
				migrated = true
			}
		}

		if !migrated {
			continue
		}

		c.logger.Info("migrated legacy credentials", "account", account.ID, "app", instance.App)

		if err := c.RemoveDefaultsCredentials(account); err != nil {
			return err
		}
	}
	return nil
}
