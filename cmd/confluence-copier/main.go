/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import "os"

func main() {
	if err := Execute(); err != nil {
		logger.Error().Err(err).Msg("")
		os.Exit(1)
	}
}
