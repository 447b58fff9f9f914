package projectlog

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/thaoanhhaa1/kltn-backend/config"
)

func Init(cfg *config.Config) {
	logrus.SetFormatter(&JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.GetStringOrDefault(config.AppLogLevel, "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetReportCaller(cfg.GetBool(config.AppLogReportcaller))
	logrus.SetOutput(os.Stdout)
}
