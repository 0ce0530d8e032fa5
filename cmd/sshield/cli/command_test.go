// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func testTree(help *bytes.Buffer, ran *[]string) *Command {
	var port int
	return &Command{
		Name:       "sshield",
		HelpOutput: help,
		Subcommands: []*Command{
			{
				Name:    "gen-key",
				Summary: "Generate a key",
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("gen-key", pflag.ContinueOnError)
					flagSet.IntVar(&port, "port", 22, "SSH port")
					return flagSet
				},
				Run: func(args []string) error {
					*ran = append(*ran, "gen-key:"+strings.Join(args, ","))
					return nil
				},
			},
			{
				Name:    "serve",
				Summary: "Run the agent",
				Run: func(args []string) error {
					*ran = append(*ran, "serve")
					return nil
				},
			},
		},
	}
}

func TestExecuteDispatch(t *testing.T) {
	var help bytes.Buffer
	var ran []string
	root := testTree(&help, &ran)

	if err := root.Execute([]string{"gen-key", "--port", "2222", "work", "me", "host"}); err != nil {
		t.Fatal(err)
	}
	if len(ran) != 1 || ran[0] != "gen-key:work,me,host" {
		t.Errorf("ran = %v", ran)
	}
}

func TestExecuteNoArgsPrintsHelp(t *testing.T) {
	var help bytes.Buffer
	var ran []string
	root := testTree(&help, &ran)

	if err := root.Execute(nil); err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}
	for _, want := range []string{"Usage:", "gen-key", "Generate a key", "serve"} {
		if !strings.Contains(help.String(), want) {
			t.Errorf("help output missing %q:\n%s", want, help.String())
		}
	}
	if len(ran) != 0 {
		t.Errorf("ran = %v", ran)
	}
}

func TestExecuteUnknownCommandSuggests(t *testing.T) {
	var help bytes.Buffer
	var ran []string
	err := testTree(&help, &ran).Execute([]string{"genkey"})
	if err == nil {
		t.Fatal("unknown command succeeded")
	}
	if !strings.Contains(err.Error(), `did you mean "gen-key"`) {
		t.Errorf("error = %q", err)
	}
	var toolError *ToolError
	if !errors.As(err, &toolError) || toolError.Category != CategoryValidation {
		t.Errorf("error is not a validation ToolError: %#v", err)
	}
}

func TestExecuteUnknownFlagSuggests(t *testing.T) {
	var help bytes.Buffer
	var ran []string
	err := testTree(&help, &ran).Execute([]string{"gen-key", "--prot", "1"})
	if err == nil {
		t.Fatal("unknown flag succeeded")
	}
	if !strings.Contains(err.Error(), "did you mean --port?") {
		t.Errorf("error = %q", err)
	}
}

func TestExecuteSubcommandHelp(t *testing.T) {
	var help bytes.Buffer
	var ran []string
	if err := testTree(&help, &ran).Execute([]string{"gen-key", "--help"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(help.String(), "--port") {
		t.Errorf("subcommand help missing flags:\n%s", help.String())
	}
	if !strings.Contains(help.String(), "sshield gen-key") {
		t.Errorf("subcommand help missing full name:\n%s", help.String())
	}
}

func TestRequireArgs(t *testing.T) {
	if err := RequireArgs("delete-key", []string{"one"}, 1, 1, "NAME"); err != nil {
		t.Errorf("RequireArgs with one arg: %v", err)
	}
	err := RequireArgs("delete-key", nil, 1, 1, "NAME")
	if err == nil || !strings.Contains(err.Error(), "expected NAME") {
		t.Errorf("RequireArgs with no args = %v", err)
	}
}
