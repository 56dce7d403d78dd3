package database

import (
	"fmt"
	"strings"
)

type Commit struct {
	// Parent is empty for a root commit.
	Parent  string
	TreeOID string
	Author  Author
	Message string
}

func NewCommit(parent, tree string, author Author, message string) *Commit {
	return &Commit{Parent: parent, TreeOID: tree, Author: author, Message: message}
}

func (c *Commit) Type() string {
	return "commit"
}

func (c *Commit) Bytes() []byte {
	lines := []string{fmt.Sprintf("tree %s", c.TreeOID)}
	if c.Parent != "" {
		lines = append(lines, fmt.Sprintf("parent %s", c.Parent))
	}
	lines = append(lines,
		fmt.Sprintf("author %s", c.Author),
		fmt.Sprintf("committer %s", c.Author),
		"",
		c.Message,
	)

	return []byte(strings.Join(lines, "\n"))
}

// TitleLine returns the first line of the commit message.
func (c *Commit) TitleLine() string {
	lines := strings.SplitN(c.Message, "\n", 2)
	return lines[0]
}

// ParseCommit reads the serialized body of a commit object.
func ParseCommit(data []byte) (*Commit, error) {
	commit := &Commit{}

	rest := string(data)
	for {
		line, remainder, found := strings.Cut(rest, "\n")
		rest = remainder
		if line == "" {
			break
		}

		key, value, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("malformed commit header: %q", line)
		}

		switch key {
		case "tree":
			commit.TreeOID = value
		case "parent":
			commit.Parent = value
		case "author":
			author, err := ParseAuthor(value)
			if err != nil {
				return nil, err
			}
			commit.Author = author
		case "committer":
			// Same identity as author in everything we write.
		default:
			return nil, fmt.Errorf("unknown commit header: %q", key)
		}

		if !found {
			rest = ""
			break
		}
	}

	commit.Message = rest
	return commit, nil
}
