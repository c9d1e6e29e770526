package cmd

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultLogFile = "search_waves.out"

// config holds the defaults that the environment provides for the flags.
type config struct {
	LogFile     string
	RecordName  string
	MonitorPort int
}

// loadConfig reads IPCSCAN_* variables, after loading an optional .env file
// from envFile. Variables already set in the environment win over the file.
func loadConfig(envFile string) (config, error) {
	err := godotenv.Load(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, err
	}

	c := config{
		LogFile:    os.Getenv("IPCSCAN_LOG"),
		RecordName: os.Getenv("IPCSCAN_RECORD"),
	}

	if c.LogFile == "" {
		c.LogFile = defaultLogFile
	}

	if port := os.Getenv("IPCSCAN_MONITOR_PORT"); port != "" {
		c.MonitorPort, err = strconv.Atoi(port)
		if err != nil {
			return config{}, errors.New("IPCSCAN_MONITOR_PORT must be a number")
		}
	}

	return c, nil
}
