package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/thread-tools/wpanbus/pkg/version"
)

// Config holds the application configuration from CLI flags
type Config struct {
	InterfaceName string
	Listen        string
	EnableMDNS    bool
	LogLevel      string
}

// ParseFlags parses command line arguments and returns a Config
func ParseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.InterfaceName, "interface", "wpan0", "Mesh network interface managed by the daemon")
	flag.StringVar(&cfg.Listen, "listen", "", "Address for the diagnostic API (empty disables it)")
	flag.BoolVar(&cfg.EnableMDNS, "mdns", true, "Advertise the MeshCoP service over mDNS")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Parse()

	if *showVersion {
		fmt.Printf("wpanbusd version %s (commit: %s, built at: %s)\n",
			version.Version,
			version.CommitHash,
			version.BuildTime)
		os.Exit(0)
	}

	return cfg
}

// String returns a string representation of the Config
func (c *Config) String() string {
	return fmt.Sprintf("Interface: %s, Listen: %s, MDNS: %t, LogLevel: %s",
		c.InterfaceName, c.Listen, c.EnableMDNS, c.LogLevel)
}
