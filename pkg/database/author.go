package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Author struct {
	Name  string
	Email string
	Time  time.Time
}

func NewAuthor(name, email string, t time.Time) Author {
	return Author{Name: name, Email: email, Time: t}
}

// String renders the author in commit header form:
// `Name <email> <unix timestamp> <utc offset>`.
func (a Author) String() string {
	return fmt.Sprintf("%s <%s> %d %s", a.Name, a.Email, a.Time.Unix(), a.Time.Format("-0700"))
}

// ReadableTime formats the timestamp the way `log` displays it.
func (a Author) ReadableTime() string {
	return a.Time.Format("Mon Jan 2 15:04:05 2006 -0700")
}

func (a Author) ShortDate() string {
	return a.Time.Format("2006-01-02")
}

// ParseAuthor reads the commit header form produced by String.
func ParseAuthor(data string) (Author, error) {
	open := strings.Index(data, "<")
	close := strings.Index(data, ">")
	if open < 0 || close < open {
		return Author{}, fmt.Errorf("malformed author line: %q", data)
	}

	name := strings.TrimSpace(data[:open])
	email := data[open+1 : close]

	fields := strings.Fields(data[close+1:])
	if len(fields) != 2 {
		return Author{}, fmt.Errorf("malformed author timestamp: %q", data)
	}

	unix, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Author{}, fmt.Errorf("parsing author timestamp: %w", err)
	}

	zone, err := time.Parse("-0700", fields[1])
	if err != nil {
		return Author{}, fmt.Errorf("parsing author zone: %w", err)
	}

	return Author{
		Name:  name,
		Email: email,
		Time:  time.Unix(unix, 0).In(zone.Location()),
	}, nil
}
