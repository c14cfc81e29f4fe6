package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses the configuration flags from args (normally
// os.Args[1:]) using a private flag set, so it can be called repeatedly.
//
// Flags:
//
//	-a backend base URL
//	-token bearer token
//	-d sqlite DSN
//	-images image blob directory
//	-c/-config json file path with configs
//	-request-timeout general request timeout (e.g. "30s")
//	-image-timeout image download timeout (e.g. "15s")
//	-sync-interval periodic refresh interval (e.g. "5m")
//	-debug-address debug/metrics listener in format [host]:[port]
//	-log-file log file path
//	-log-level log level
func ParseFlags(args []string) (*StructuredConfig, error) {
	var debugAddress NetAddress
	var serverAddress string
	var token string
	var databaseDSN string
	var imageDir string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var imageTimeout time.Duration
	var syncInterval time.Duration
	var logFile string
	var logLevel string

	fs := flag.NewFlagSet("tally-syncd", flag.ContinueOnError)
	fs.StringVar(&serverAddress, "a", "", "Backend base URL")
	fs.StringVar(&token, "token", "", "Bearer token")
	fs.StringVar(&databaseDSN, "d", "", "SQLite DSN")
	fs.StringVar(&imageDir, "images", "", "Image blob directory")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s)")
	fs.DurationVar(&imageTimeout, "image-timeout", 0, "Image download timeout (e.g., 15s)")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Periodic refresh interval (e.g., 5m)")
	fs.Var(&debugAddress, "debug-address", "Debug listener host:port")
	fs.StringVar(&logFile, "log-file", "", "Log file path")
	fs.StringVar(&logLevel, "log-level", "", "Log level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		Adapter: Adapter{
			HTTPAddress:    serverAddress,
			RequestTimeout: requestTimeout,
			ImageTimeout:   imageTimeout,
		},
		Auth: Auth{Token: token},
		Storage: Storage{
			DB:    DB{DSN: databaseDSN},
			Files: Files{ImageDir: imageDir},
		},
		Workers:      Workers{SyncInterval: syncInterval},
		Debug:        Debug{HTTPAddress: debugAddress.String()},
		Log:          Log{Path: logFile, Level: logLevel},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
