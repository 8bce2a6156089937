// Package config provides YAML configuration loading with environment variable override.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load reads a YAML configuration file into the given struct.
// It also applies environment variable overrides using `env` struct tags.
// Unknown YAML keys are rejected.
func Load(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	// Expand environment variables in the YAML
	expanded := os.ExpandEnv(string(data))

	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := ApplyEnv(out); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

// LoadOrDefault tries to load config from path. A missing file leaves out
// untouched apart from environment overrides.
func LoadOrDefault(path string, out any) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ApplyEnv(out)
	}
	return Load(path, out)
}

// ApplyEnv sets struct fields from the environment variables named by their
// `env` tag, recursing into nested structs.
func ApplyEnv(v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := val.Field(i)

		if fieldVal.Kind() == reflect.Struct {
			if fieldVal.CanAddr() {
				if err := ApplyEnv(fieldVal.Addr().Interface()); err != nil {
					return err
				}
			}
			continue
		}

		envTag := field.Tag.Get("env")
		if envTag == "" || !fieldVal.CanSet() {
			continue
		}
		envVal, ok := os.LookupEnv(envTag)
		if !ok {
			continue
		}
		if err := setField(fieldVal, envVal); err != nil {
			return fmt.Errorf("env %s: %w", envTag, err)
		}
	}
	return nil
}

func setField(fieldVal reflect.Value, envVal string) error {
	if fieldVal.Type() == durationType {
		d, err := time.ParseDuration(envVal)
		if err != nil {
			return err
		}
		fieldVal.SetInt(int64(d))
		return nil
	}

	switch fieldVal.Kind() {
	case reflect.String:
		fieldVal.SetString(envVal)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(envVal), 10, 64)
		if err != nil {
			return err
		}
		fieldVal.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(envVal), 64)
		if err != nil {
			return err
		}
		fieldVal.SetFloat(f)
	case reflect.Bool:
		fieldVal.SetBool(strings.EqualFold(envVal, "true") || envVal == "1")
	default:
		return fmt.Errorf("unsupported field kind %s", fieldVal.Kind())
	}
	return nil
}
