package main

import (
	"fmt"
	"os"

	"tomcatvhost/logger"
	"tomcatvhost/pkg/cmd"
)

func main() {
	if err := logger.InitLogger(os.Getenv("TOMCAT_VHOST_LOG")); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	vhostCmd, err := cmd.New()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if err := vhostCmd.Execute(); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}
