// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ReadFile reads data from file.
// If succeed, ReadFile returns the data of the file as byte array;
// otherwise ReadFile returns an error.
func ReadFile(filename string) ([]byte, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %q, error: %v",
			filename, err)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func ReadFileFromDir(configDir, filename string) ([]byte, error) {
	absPath := filename
	if !filepath.IsAbs(filename) {
		absPath = filepath.Join(configDir, filename)
	}
	data, err := ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read file: %q, error: %v", absPath, err)
	}
	return data, nil
}

// WriteFile replaces the named file. The data is first written to
// "<name>.new" which is then renamed over name, so readers never observe a
// partially written file.
func WriteFile(name string, data []byte, perm os.FileMode) error {
	tmp := name + ".new"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, name); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// UpToDate reports whether the named file exists with exactly the given
// content.
func UpToDate(name string, data []byte) bool {
	old, err := os.ReadFile(name)
	return err == nil && bytes.Equal(old, data)
}

// WriteIfChanged writes data to name unless the file already has that
// content. With always set, the file is rewritten regardless, which updates
// its timestamp. It reports whether the file was written.
func WriteIfChanged(name string, data []byte, always bool) (bool, error) {
	if !always && UpToDate(name, data) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory for %q: %v", name, err)
	}
	if err := WriteFile(name, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write %q: %v", name, err)
	}
	return true, nil
}

func setDefaults(config interface{}) error {
	t := reflect.TypeOf(config).Elem()
	v := reflect.ValueOf(config).Elem()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i)

		defaultTag := field.Tag.Get("default")
		if defaultTag == "" || !value.IsZero() {
			continue
		}
		switch value.Kind() {
		case reflect.String:
			value.SetString(defaultTag)
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(defaultTag, 0, 64)
			if err != nil {
				return fmt.Errorf("bad default %q for field %s: %v", defaultTag, field.Name, err)
			}
			value.SetInt(n)
		case reflect.Bool:
			b, err := strconv.ParseBool(defaultTag)
			if err != nil {
				return fmt.Errorf("bad default %q for field %s: %v", defaultTag, field.Name, err)
			}
			value.SetBool(b)
		default:
			return fmt.Errorf("unsupported default for field %s of kind %s", field.Name, value.Kind())
		}
	}
	return nil
}

// LoadConfig reads a Yaml configuration file from the specified path with
// filename and unmarshals it into the provided struct (v).
//
// Parameters:
//   - configDir:  The directory path of the Yaml configuration file.
//   - configFile: The file path of the Yaml configuration file.
//   - v:          A pointer to the struct where the configuration will be unmarshaled.
//
// Returns:
//   - An error if there was an issue reading or unmarshaling the configuration file.
func LoadConfig(configDir, configFile string, v interface{}) error {
	yamlData, err := ReadFileFromDir(configDir, configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration file: %v", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(yamlData))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}

	return setDefaults(v)
}

// ApplyDefaults fills the zero-valued fields of v from their default tags.
// It is used when no configuration file is given.
func ApplyDefaults(v interface{}) error {
	return setDefaults(v)
}

// LoadJSON reads a JSON file and unmarshals it into v.
func LoadJSON(path string, v interface{}) error {
	data, err := ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load %q: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %q: %v", path, err)
	}
	return nil
}
