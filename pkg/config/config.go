// Package config reads and writes the repository configuration file in
// the INI dialect git uses, e.g. `[user] name = ...`.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/grit-vcs/grit/pkg/lockfile"
)

var ErrInvalidVariable = errors.New("invalid configuration variable name")

var variablePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)

type Config struct {
	pathname string
	lock     *lockfile.Lockfile
	file     *ini.File
}

func New(pathname string) *Config {
	return &Config{
		pathname: pathname,
		lock:     lockfile.New(pathname),
	}
}

// Open loads the config file. A missing file yields an empty config.
func (c *Config) Open() error {
	if c.file != nil {
		return nil
	}

	file, err := ini.LooseLoad(c.pathname)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", c.pathname, err)
	}
	c.file = file
	return nil
}

// OpenForUpdate takes the config lock and reloads the file, so the
// read-modify-write cycle sees a consistent snapshot.
func (c *Config) OpenForUpdate() error {
	if err := c.lock.Hold(); err != nil {
		return err
	}
	c.file = nil
	return c.Open()
}

// Save writes the config through the held lock and releases it.
func (c *Config) Save() error {
	var buf bytes.Buffer
	if _, err := c.file.WriteTo(&buf); err != nil {
		c.lock.Rollback()
		return fmt.Errorf("serializing config: %w", err)
	}

	if err := c.lock.Write(buf.Bytes()); err != nil {
		return err
	}
	return c.lock.Commit()
}

// Rollback releases the lock without writing.
func (c *Config) Rollback() error {
	return c.lock.Rollback()
}

// Get looks up a dotted variable such as "user.name" or
// "branch.main.remote". The second return reports whether it was set.
func (c *Config) Get(name string) (string, bool, error) {
	section, key, err := splitName(name)
	if err != nil {
		return "", false, err
	}

	sec, err := c.file.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return "", false, nil
	}
	return sec.Key(key).String(), true, nil
}

// Set assigns a dotted variable in memory. Call Save to persist it.
func (c *Config) Set(name, value string) error {
	section, key, err := splitName(name)
	if err != nil {
		return err
	}

	c.file.Section(section).Key(key).SetValue(value)
	return nil
}

// Unset removes a variable, dropping its section once empty.
func (c *Config) Unset(name string) error {
	section, key, err := splitName(name)
	if err != nil {
		return err
	}

	sec, err := c.file.GetSection(section)
	if err != nil {
		return nil
	}

	sec.DeleteKey(key)
	if len(sec.Keys()) == 0 {
		c.file.DeleteSection(section)
	}
	return nil
}

// splitName maps "user.name" to ("user", "name"). Middle components form
// a quoted subsection, so "branch.main.remote" becomes (`branch "main"`,
// "remote"). Section and key are case-insensitive, subsections are not.
func splitName(name string) (string, string, error) {
	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidVariable, name)
	}

	section := strings.ToLower(parts[0])
	key := strings.ToLower(parts[len(parts)-1])

	if !variablePattern.MatchString(section) || !variablePattern.MatchString(key) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidVariable, name)
	}

	if len(parts) > 2 {
		subsection := strings.Join(parts[1:len(parts)-1], ".")
		section = fmt.Sprintf("%s \"%s\"", section, subsection)
	}
	return section, key, nil
}
