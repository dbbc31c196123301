package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Notifier delivers a human-readable message. Implementations may send mail,
// chat or SMS; LogNotifier writes to the structured log.
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

type LogNotifier struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, subject, message string) error {
	n.log.InfoContext(ctx, "notify", "subject", subject, "message", message)
	return nil
}

// HumanTimeRange formats a [start, end) pair of unix seconds in loc. The end
// date is repeated only when it differs from the start date.
func HumanTimeRange(startUnix, endUnix int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	st := time.Unix(startUnix, 0).In(loc)
	et := time.Unix(endUnix, 0).In(loc)
	if st.YearDay() == et.YearDay() && st.Year() == et.Year() {
		return fmt.Sprintf("%s - %s", st.Format("2006-01-02 15:04"), et.Format("15:04 MST"))
	}
	return fmt.Sprintf("%s - %s", st.Format("2006-01-02 15:04"), et.Format("2006-01-02 15:04 MST"))
}
