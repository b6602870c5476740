package common

import (
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/inconshreveable/log15"
)

// NewLog returns a module logger. Error records are forwarded to Sentry when it is configured.
func NewLog(module string) log15.Logger {
	lg := log15.New("module", module)

	h := lg.GetHandler()
	sentryHandle := log15.FuncHandler(func(r *log15.Record) error {
		if r.Lvl <= log15.LvlError && sentry.CurrentHub().Client() != nil {
			msg := string(log15.JsonFormat().Format(r))
			go func(m string) {
				sentry.CaptureMessage(m)
			}(msg)
		}
		return nil
	})

	lg.SetHandler(log15.MultiHandler(h, sentryHandle))

	return lg
}

// SetupLog configures the root handler shared by every module logger.
func SetupLog(level, format, sentryDsn string) error {
	lvl, err := log15.LvlFromString(strings.ToLower(level))
	if err != nil {
		lvl = log15.LvlInfo
	}

	logFormat := log15.LogfmtFormat()
	if format == "json" {
		logFormat = log15.JsonFormat()
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stdout, logFormat)))

	if sentryDsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{Dsn: sentryDsn})
}
