package command

import (
	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-errors"
)

// RegisterHandlers wires report export commands to go-command.
func RegisterHandlers(reg *gcmd.Registry, exporter Exporter) ([]dispatcher.Subscription, error) {
	if exporter == nil {
		return nil, errors.New("exporter is required", errors.CategoryValidation).
			WithTextCode("EXPORTER_REQUIRED")
	}

	exportReport := NewExportReportHandler(exporter)
	subscriptions := []dispatcher.Subscription{
		dispatcher.SubscribeCommand(exportReport),
	}

	if reg != nil {
		if err := reg.RegisterCommand(exportReport); err != nil {
			return subscriptions, err
		}
	}
	return subscriptions, nil
}
