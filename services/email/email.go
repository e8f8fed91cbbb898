// Package emailsvc implements core.EmailService.
package emailsvc

import "github.com/fitsenior/backend/core"

// New returns the console service in debug mode and the SendGrid service otherwise.
func New(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return NewConsoleService(conf, logger)
	}
	return NewSendgridService(conf, logger)
}
