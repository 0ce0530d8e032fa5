// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kevinburke/ssh_config"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sshield/cmd/sshield/cli"
	"github.com/bureau-foundation/sshield/lib/keymaterial"
	"github.com/bureau-foundation/sshield/lib/keystore"
	"github.com/bureau-foundation/sshield/lib/secret"
	"github.com/bureau-foundation/sshield/sandbox"
)

type importKeyParams struct {
	PassphraseFile string `flag:"passphrase-file" desc:"read the key file's passphrase from this file (- for stdin)"`
	SSHConfig      string `flag:"ssh-config" desc:"ssh_config file to read host, user, and port from (default ~/.ssh/config)"`
	User           string `flag:"user" desc:"login user, overriding ssh_config"`
	Host           string `flag:"host" desc:"host name, overriding ssh_config"`
	Port           int    `flag:"port" desc:"SSH port, overriding ssh_config"`
}

// hostEntry is the connection target for an imported key.
type hostEntry struct {
	User string
	Host string
	Port int
}

func importKeyCommand(app *App) *cli.Command {
	var params importKeyParams
	return &cli.Command{
		Name:    "import-key",
		Summary: "Import an existing private key file",
		Description: `Import the private key at PATH under NAME. The key is re-sealed under
the master password; the original file is left untouched.

The user, host, and port come from the "Host NAME" entry in ssh_config
when present. Flags override them. Without either, HOST defaults to
NAME, the user to the local account, and the port to 22.`,
		Usage: "sshield import-key NAME PATH [flags]",
		Examples: []cli.Example{
			{Description: "Import a key used by an ssh_config alias", Command: "sshield import-key build ~/.ssh/id_ed25519"},
			{Command: "sshield import-key db ~/.ssh/db_rsa --passphrase-file - --host db.internal"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("import-key", &params)
		},
		Run: func(args []string) error {
			if err := cli.RequireArgs("import-key", args, 2, 2, "NAME PATH"); err != nil {
				return err
			}
			if params.Port != 0 {
				if err := validPort(params.Port); err != nil {
					return err
				}
			}
			return runImportKey(app, args[0], args[1], &params)
		},
	}
}

func runImportKey(app *App, nickname, path string, params *importKeyParams) error {
	s, err := app.begin("import-key", sandbox.Management)
	if err != nil {
		return err
	}
	defer s.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		return cli.Validation("reading key file: %v", err)
	}
	defer secret.Zero(data)

	material, err := s.parseKeyFile(path, data, params.PassphraseFile)
	if err != nil {
		return err
	}

	entry, err := lookupHost(nickname, params.SSHConfig)
	if err != nil {
		return err
	}
	if params.User != "" {
		entry.User = params.User
	}
	if params.Host != "" {
		entry.Host = params.Host
	}
	if params.Port != 0 {
		entry.Port = params.Port
	}
	if entry.User == "" {
		entry.User = s.user
	}
	if entry.Host == "" {
		entry.Host = nickname
	}
	if entry.Port == 0 {
		entry.Port = 22
	}

	if err := s.unlock(); err != nil {
		return err
	}
	blob, cipher, err := s.codec.Encode(material, nickname)
	if err != nil {
		return fmt.Errorf("sealing key: %w", err)
	}
	inserted, err := s.store.Insert(s.ctx, keystore.Record{
		Nickname:   nickname,
		User:       entry.User,
		Host:       entry.Host,
		Port:       entry.Port,
		EncodedKey: blob,
		Cipher:     cipher,
	})
	if err != nil {
		return err
	}
	if !inserted {
		return cli.Conflict("a key named %q already exists", nickname)
	}

	s.logger.Info("key imported", "nickname", nickname, "source", path, "fingerprint", material.Fingerprint())
	key, err := s.store.Get(s.ctx, nickname)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout(), "Imported key '%s'\n%s\n", nickname, key)
	return nil
}

// parseKeyFile parses data, asking for a passphrase only when the file
// is encrypted.
func (s *session) parseKeyFile(path string, data []byte, passphraseFile string) (keymaterial.Material, error) {
	material, err := keymaterial.ParseFile(data, nil)
	if err == nil {
		return material, nil
	}
	if !errors.Is(err, keymaterial.ErrPassphraseRequired) {
		return keymaterial.Material{}, cli.Validation("%s: %v", path, err)
	}

	var passphrase *secret.Buffer
	if passphraseFile != "" {
		passphrase, err = secret.ReadFromPath(passphraseFile)
	} else {
		passphrase, err = s.app.terminal().ReadPassword(s.ctx, fmt.Sprintf("Passphrase for %s: ", path))
	}
	if err != nil {
		return keymaterial.Material{}, fmt.Errorf("reading passphrase: %w", err)
	}
	defer passphrase.Close()

	material, err = keymaterial.ParseFile(data, passphrase)
	if err != nil {
		return keymaterial.Material{}, cli.Validation("%s: %v", path, err)
	}
	return material, nil
}

// lookupHost reads the entry for alias from the ssh_config at path, or
// ~/.ssh/config when path is empty. A missing default file yields an
// empty entry; a missing explicit file is an error.
func lookupHost(alias, path string) (hostEntry, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return hostEntry{}, nil
		}
		path = filepath.Join(home, ".ssh", "config")
	}

	file, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return hostEntry{}, nil
		}
		return hostEntry{}, cli.Validation("reading ssh_config: %v", err)
	}
	defer file.Close()

	cfg, err := ssh_config.Decode(file)
	if err != nil {
		return hostEntry{}, cli.Validation("parsing %s: %v", path, err)
	}

	var entry hostEntry
	if entry.Host, err = cfg.Get(alias, "HostName"); err != nil {
		return hostEntry{}, cli.Validation("%s: %v", path, err)
	}
	if entry.User, err = cfg.Get(alias, "User"); err != nil {
		return hostEntry{}, cli.Validation("%s: %v", path, err)
	}
	port, err := cfg.Get(alias, "Port")
	if err != nil {
		return hostEntry{}, cli.Validation("%s: %v", path, err)
	}
	if port != "" {
		entry.Port, err = strconv.Atoi(port)
		if err != nil {
			return hostEntry{}, cli.Validation("%s: Port %q for %s is not a number", path, port, alias)
		}
	}
	return entry, nil
}
