package config

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks c and reports every failing field at once.
func (c *Config) Validate() error {
	validate := validator.New()

	_ = validate.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("nameserver", func(fl validator.FieldLevel) bool {
		return validNameserver(fl.Field().String())
	})

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("configuration validation error: %w", err)
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := fmt.Sprintf("%s: rule '%s'", e.Namespace(), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if v := fmt.Sprint(e.Value()); v != "" {
			msg += fmt.Sprintf(", actual: '%s'", v)
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("invalid configuration:\n  %s", strings.Join(msgs, "\n  "))
}

// validNameserver accepts "host" or "host:port", IPv6 included.
func validNameserver(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if net.ParseIP(s) != nil {
		return true
	}

	host, port, err := net.SplitHostPort(s)
	if err != nil {
		// No port. Anything without separators or spaces will do as a name.
		return !strings.ContainsAny(s, ":/ ")
	}
	if host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n > 0 && n <= 65535
}
