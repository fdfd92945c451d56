// Package config loads and validates the pgsteward connection profile.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config is the resolved connection profile plus tool behavior switches.
type Config struct {
	// Host is the database host. The value may be an "external:container"
	// pair; selection between the halves happens at engine construction.
	Host string `koanf:"host" validate:"required"`
	// Port is the TCP port of the database server.
	Port int `koanf:"port" validate:"required,min=1,max=65535"`
	// Database is the name of the database to operate on.
	Database string `koanf:"database" validate:"required"`
	// User is the role used for every connection.
	User string `koanf:"user" validate:"required"`
	// Password is the connection secret. It is never logged and never
	// written to disk.
	Password string `koanf:"password"`

	// Echo logs every SQL statement issued through the ORM face.
	Echo bool `koanf:"echo"`
	// SafeMode refuses destructive operations regardless of other switches.
	SafeMode bool `koanf:"safe_mode"`

	// ConstTables lists tables treated as constant by exact name.
	ConstTables []string `koanf:"const_tables"`
	// ConstTablePatterns lists regular expressions, matched from the start
	// of the name, that mark further tables as constant.
	ConstTablePatterns []string `koanf:"const_table_patterns"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report violations under config key names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the structural soundness of the profile.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		problems := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return fmt.Errorf("invalid configuration: %w", err)
}
