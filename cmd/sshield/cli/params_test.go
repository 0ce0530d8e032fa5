// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
)

type sampleParams struct {
	JSONOutput
	Port   int      `flag:"port,p" desc:"SSH port" default:"22"`
	Type   string   `flag:"type" desc:"key type" default:"ed25519"`
	Genkey bool     `flag:"genkey" desc:"regenerate"`
	Tags   []string `flag:"tag" desc:"tags"`
	Ignore string
}

func TestFlagsFromParamsDefaults(t *testing.T) {
	var params sampleParams
	flagSet := FlagsFromParams("sample", &params)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatal(err)
	}
	if params.Port != 22 || params.Type != "ed25519" || params.Genkey || params.OutputJSON {
		t.Errorf("defaults = %+v", params)
	}
	if flagSet.Lookup("ignore") != nil {
		t.Error("untagged field was bound")
	}
}

func TestFlagsFromParamsParse(t *testing.T) {
	var params sampleParams
	flagSet := FlagsFromParams("sample", &params)
	err := flagSet.Parse([]string{"-p", "2222", "--type=rsa", "--genkey", "--json", "--tag", "a,b", "rest"})
	if err != nil {
		t.Fatal(err)
	}
	if params.Port != 2222 || params.Type != "rsa" || !params.Genkey || !params.OutputJSON {
		t.Errorf("parsed = %+v", params)
	}
	if strings.Join(params.Tags, "|") != "a|b" {
		t.Errorf("Tags = %v", params.Tags)
	}
	if args := flagSet.Args(); len(args) != 1 || args[0] != "rest" {
		t.Errorf("Args() = %v", args)
	}
}

func TestBindFlagsRejectsBadInput(t *testing.T) {
	var notStruct int
	if err := BindFlags(&notStruct, nil); err == nil {
		t.Error("BindFlags accepted a non-struct")
	}

	type unsupported struct {
		Ratio float64 `flag:"ratio"`
	}
	var params unsupported
	if err := BindFlags(&params, FlagsFromParams("empty", &struct{}{})); err == nil {
		t.Error("BindFlags accepted an unsupported field type")
	}

	type badDefault struct {
		Port int `flag:"port" default:"twenty"`
	}
	var bad badDefault
	if err := BindFlags(&bad, FlagsFromParams("empty", &struct{}{})); err == nil {
		t.Error("BindFlags accepted an unparseable default")
	}
}
