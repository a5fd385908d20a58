package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"teamcal/cmd"
)

func main() {
	if err := cmd.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		logrus.WithError(err).Error("teamcal failed")
		os.Exit(1)
	}
}
