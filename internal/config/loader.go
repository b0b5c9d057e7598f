package config

import (
	"errors"
	"flag"
	"os"

	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/go-playground/validator/v10"
	"github.com/omeid/uconfig/flat"
)

const (
	TagEnv  = "env"
	TagFlag = "flag"
	TagDesc = "desc"
)

var (
	ErrEnvParse         = errors.New("cannot parse env variable")
	ErrFlagParse        = errors.New("cannot parse flag")
	ErrConfigInvalid    = errors.New("invalid config struct")
	ErrConfigValidation = errors.New("config validation error")
)

// LoadConfig fills cfg from env variables, then from command line flags, applies defaults and validates the result
func LoadConfig(cfg *Config, osArgs []string) error {
	// recursively iterates over each field of the nested struct
	fields, err := flat.View(cfg)
	if err != nil {
		return lib.WrapError(ErrConfigInvalid, err)
	}

	flagset := flag.NewFlagSet("", flag.ContinueOnError)

	for _, field := range fields {
		envName, ok := field.Tag(TagEnv)
		if !ok {
			continue
		}

		envValue, isSet := os.LookupEnv(envName)
		if isSet {
			err := field.Set(envValue)
			if err != nil {
				return lib.WrapErrorf(ErrEnvParse, "%s: %s", envName, err)
			}
		}

		flagName, ok := field.Tag(TagFlag)
		if !ok {
			continue
		}

		flagDesc, _ := field.Tag(TagDesc)

		// writes flag value to variable
		flagset.Var(field, flagName, flagDesc)
	}

	args := osArgs
	if args == nil {
		args = os.Args
	}

	// flags override .env variables
	if len(args) > 0 {
		err = flagset.Parse(args[1:])
		if err != nil {
			return lib.WrapError(ErrFlagParse, err)
		}
	}

	cfg.SetDefaults()

	err = validator.New().Struct(cfg)
	if err != nil {
		return lib.WrapError(ErrConfigValidation, err)
	}

	return nil
}
