package config

import (
	"flag"
	"io"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string    HTTP bind address (e.g. ":8080")
//	-r string    gRPC bind address; empty disables gRPC
//	-store s     record store driver (json, memory, postgres, sqlite, badger)
//	-data string data directory of the json and badger stores
//	-d string    database DSN of the sql stores
//	-s string    JWT HMAC secret key
//	-t int       session validity, minutes
//	-w duration  presence window (e.g. "5m")
//	-u string    upload directory of the disk blob store
//	-l string    log level
//	-signup-role role given to self-registered accounts
//
// Only these flags are read from args; others are ignored.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-r", "-store", "-data", "-d", "-s", "-t", "-w", "-u", "-l", "-signup-role"})

	fs, sessionMinutes := flagSet(config)
	if err := fs.Parse(args); err != nil {
		return err
	}

	config.SessionTTL = time.Duration(*sessionMinutes) * time.Minute
	return nil
}

const signupRoleUsage = "role given to self-registered accounts; the legacy app made every signup Admin, this server defaults to Member"

func flagSet(config *Config) (*flag.FlagSet, *int) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "r", config.GRPCAddr, "gRPC address and port")
	fs.StringVar(&config.StoreDriver, "store", config.StoreDriver, "record store driver")
	fs.StringVar(&config.DataDir, "data", config.DataDir, "data directory")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionMinutes := fs.Int("t", int(config.SessionTTL.Minutes()), "session validity (in minutes)")

	fs.DurationVar(&config.PresenceWindow, "w", config.PresenceWindow, "presence window")
	fs.StringVar(&config.UploadDir, "u", config.UploadDir, "upload directory")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.SignupRole, "signup-role", config.SignupRole, signupRoleUsage)

	return fs, sessionMinutes
}
