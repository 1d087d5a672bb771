package main

import (
	"os"

	"github.com/Jahid786-lang/vensar-drive/internal/cli"
	"github.com/Jahid786-lang/vensar-drive/internal/logger"
)

func main() {
	code := cli.Execute()
	logger.Shutdown()
	os.Exit(code)
}
