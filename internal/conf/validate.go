// validate.go: settings validation
package conf

import (
	"github.com/rcanovic/restaurant-reviews/internal/errors"
)

// ValidateSettings checks the loaded settings for configurations that cannot work.
func ValidateSettings(settings *Settings) error {
	if settings.Output.SQLite.Enabled && settings.Output.MySQL.Enabled {
		return errors.Newf("only one database output can be enabled at a time").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("sqlite", settings.Output.SQLite.Enabled).
			Context("mysql", settings.Output.MySQL.Enabled).
			Build()
	}

	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return errors.Newf("a database output must be enabled").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		return errors.Newf("sqlite output requires a database path").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("field", "output.sqlite.path").
			Build()
	}

	if settings.Output.MySQL.Enabled {
		if settings.Output.MySQL.Host == "" || settings.Output.MySQL.Database == "" {
			return errors.Newf("mysql output requires host and database").
				Component("conf").
				Category(errors.CategoryConfiguration).
				Build()
		}
	}

	if settings.WebServer.Enabled && settings.WebServer.Port == "" {
		return errors.Newf("web server requires a port").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("field", "webserver.port").
			Build()
	}

	return nil
}
