package notifications

import (
	"context"

	pkgerrors "github.com/Tag-Take/tagandtake-backend-sub000/pkg/errors"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/enums"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
)

// Notifier delivers a templated notification to a recipient. Delivery is
// fire-and-forget: callers invoke it after their transaction commits and only
// log failures, they never roll back on one.
type Notifier interface {
	Notify(ctx context.Context, recipient string, template enums.NotificationTemplate, data map[string]any) error
}

// LogNotifier is the default sink. It emits a structured log line per
// notification; a real delivery channel can replace it without touching the
// lifecycle services.
type LogNotifier struct {
	logg *logger.Logger
}

// NewLogNotifier builds the logging sink.
func NewLogNotifier(logg *logger.Logger) (*LogNotifier, error) {
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &LogNotifier{logg: logg}, nil
}

func (n *LogNotifier) Notify(ctx context.Context, recipient string, template enums.NotificationTemplate, data map[string]any) error {
	fields := map[string]any{
		"recipient": recipient,
		"template":  template.String(),
	}
	for key, value := range data {
		fields["ctx_"+key] = value
	}
	n.logg.Info(n.logg.WithFields(ctx, fields), "notification dispatched")
	return nil
}
