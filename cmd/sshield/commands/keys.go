// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sshield/cmd/sshield/cli"
	"github.com/bureau-foundation/sshield/keyagent"
	"github.com/bureau-foundation/sshield/lib/keymaterial"
	"github.com/bureau-foundation/sshield/lib/keystore"
	"github.com/bureau-foundation/sshield/sandbox"
)

// keyView is the JSON form of a stored key.
type keyView struct {
	Nickname      string `json:"nickname"`
	User          string `json:"user"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	Cipher        string `json:"cipher"`
	AuthorizedKey string `json:"authorized_key"`
	Fingerprint   string `json:"fingerprint"`
}

func newKeyView(key keystore.ProcessedKey) keyView {
	return keyView{
		Nickname:      key.Nickname,
		User:          key.User,
		Host:          key.Host,
		Port:          key.Port,
		Cipher:        key.Cipher,
		AuthorizedKey: key.AuthorizedKey(),
		Fingerprint:   key.Material.Fingerprint(),
	}
}

func printKeys(w io.Writer, keys []keystore.ProcessedKey) {
	for i, key := range keys {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, key.String())
	}
}

func validPort(port int) error {
	if port < 1 || port > 65535 {
		return cli.Validation("port %d out of range (1-65535)", port)
	}
	return nil
}

// injectIntoAgent adds key to a running agent. A missing daemon is
// reported, never fatal: the key is stored and the next serve loads it.
func (s *session) injectIntoAgent(key keystore.ProcessedKey) {
	socketPath := s.config.Socket
	if _, err := os.Stat(socketPath); err != nil {
		s.logger.Debug("no running agent, key will load on next serve", "socket", socketPath)
		return
	}
	loader := &keyagent.Loader{
		SocketPath: socketPath,
		Source:     keyagent.StaticKeys{key},
		Logger:     s.logger,
	}
	result, err := loader.Run(s.ctx, nil)
	if err != nil || result.Failed > 0 {
		s.logger.Warn("key not added to running agent", "socket", socketPath, "error", err)
		return
	}
	fmt.Fprintf(s.app.stdout(), "Added '%s' to the running agent\n", key.Nickname)
}

type genKeyParams struct {
	Port    int    `flag:"port,p" desc:"SSH port of the host" default:"22"`
	Type    string `flag:"type,t" desc:"key algorithm: ed25519, ecdsa, or rsa" default:"ed25519"`
	NoAgent bool   `flag:"no-agent" desc:"do not add the key to a running agent; run under the management profile"`
}

func genKeyCommand(app *App) *cli.Command {
	var params genKeyParams
	return &cli.Command{
		Name:    "gen-key",
		Summary: "Generate and store a new key for a host",
		Description: `Generate a new private key, seal it under the master password, and
store it as NAME. The public key is printed as an authorized_keys line
to install on HOST. If the agent is running, the key is added to it.

Adding the key to the agent needs a Unix socket connection, so gen-key
runs under the serving syscall profile. With --no-agent it only writes
the database, runs under the management profile like the other key
commands, and the key is loaded on the next serve or
add-keys-to-server.`,
		Usage: "sshield gen-key NAME USER HOST [flags]",
		Examples: []cli.Example{
			{Description: "Generate an ed25519 key for a build server", Command: "sshield gen-key build deploy build.example.com"},
			{Command: "sshield gen-key legacy admin 10.0.0.5 --port 2222 --type rsa"},
			{Description: "Store only, without touching the agent", Command: "sshield gen-key offline deploy backup.example.com --no-agent"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("gen-key", &params)
		},
		Run: func(args []string) error {
			if err := cli.RequireArgs("gen-key", args, 3, 3, "NAME USER HOST"); err != nil {
				return err
			}
			if err := validPort(params.Port); err != nil {
				return err
			}
			algorithm, err := keymaterial.ParseAlgorithm(params.Type)
			if err != nil {
				return cli.Validation("%v", err)
			}
			return runGenKey(app, args[0], args[1], args[2], params.Port, algorithm, !params.NoAgent)
		},
	}
}

func runGenKey(app *App, nickname, user, host string, port int, algorithm keymaterial.Algorithm, pushToAgent bool) error {
	profile := sandbox.Management
	if pushToAgent {
		profile = sandbox.Serving
	}
	s, err := app.begin("gen-key", profile)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.unlock(); err != nil {
		return err
	}

	material, err := keymaterial.Generate(algorithm)
	if err != nil {
		return err
	}
	blob, cipher, err := s.codec.Encode(material, nickname)
	if err != nil {
		return fmt.Errorf("sealing key: %w", err)
	}
	inserted, err := s.store.Insert(s.ctx, keystore.Record{
		Nickname:   nickname,
		User:       user,
		Host:       host,
		Port:       port,
		EncodedKey: blob,
		Cipher:     cipher,
	})
	if err != nil {
		return err
	}
	if !inserted {
		return cli.Conflict("a key named %q already exists", nickname)
	}

	key, err := s.store.Get(s.ctx, nickname)
	if err != nil {
		return err
	}
	s.logger.Info("key generated", "nickname", nickname, "cipher", cipher, "fingerprint", key.Material.Fingerprint())
	fmt.Fprintf(app.stdout(), "Generated key '%s'\n%s\n", nickname, key)

	if pushToAgent {
		s.injectIntoAgent(key)
	}
	return nil
}

type showKeyParams struct {
	cli.JSONOutput
}

func showKeyCommand(app *App) *cli.Command {
	var params showKeyParams
	return &cli.Command{
		Name:    "show-key",
		Summary: "Show one stored key, or all of them",
		Usage:   "sshield show-key [NAME] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show-key", &params)
		},
		Run: func(args []string) error {
			if err := cli.RequireArgs("show-key", args, 0, 1, "at most one NAME"); err != nil {
				return err
			}
			s, err := app.begin("show-key", sandbox.Management)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.unlock(); err != nil {
				return err
			}

			var keys []keystore.ProcessedKey
			if len(args) == 1 {
				key, err := s.store.Get(s.ctx, args[0])
				if errors.Is(err, keystore.ErrNotFound) {
					return cli.NotFound("no key named %q", args[0])
				}
				if err != nil {
					return err
				}
				keys = []keystore.ProcessedKey{key}
			} else {
				keys, err = s.store.GetAll(s.ctx)
				if err != nil {
					return err
				}
			}

			views := make([]keyView, len(keys))
			for i, key := range keys {
				views[i] = newKeyView(key)
			}
			if done, err := params.EmitJSON(app.stdout(), views); done {
				return err
			}
			if len(keys) == 0 {
				fmt.Fprintln(app.stdout(), "No keys stored.")
				return nil
			}
			printKeys(app.stdout(), keys)
			return nil
		},
	}
}

func deleteKeyCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "delete-key",
		Summary: "Delete a stored key",
		Usage:   "sshield delete-key NAME",
		Run: func(args []string) error {
			if err := cli.RequireArgs("delete-key", args, 1, 1, "NAME"); err != nil {
				return err
			}
			s, err := app.begin("delete-key", sandbox.Management)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.unlock(); err != nil {
				return err
			}

			deleted, err := s.store.Delete(s.ctx, args[0])
			if err != nil {
				return err
			}
			if deleted == 0 {
				return cli.NotFound("no key named %q", args[0])
			}
			s.logger.Info("key deleted", "nickname", args[0])
			fmt.Fprintf(app.stdout(), "Deleted key '%s'\n", args[0])
			return nil
		},
	}
}

type updateKeyParams struct {
	User   string `flag:"user" desc:"new login user"`
	Host   string `flag:"host" desc:"new host name"`
	Port   int    `flag:"port" desc:"new SSH port"`
	Genkey bool   `flag:"genkey" desc:"replace the key with a freshly generated one of the same algorithm"`
}

func (p *updateKeyParams) update() (keystore.Update, error) {
	var update keystore.Update
	if p.User != "" {
		update.User = &p.User
	}
	if p.Host != "" {
		update.Host = &p.Host
	}
	if p.Port != 0 {
		if err := validPort(p.Port); err != nil {
			return update, err
		}
		update.Port = &p.Port
	}
	return update, nil
}

func updateKeyCommand(app *App) *cli.Command {
	var params updateKeyParams
	return &cli.Command{
		Name:    "update-key",
		Summary: "Change a stored key's user, host, port, or key material",
		Description: `Change the fields of a stored key. Unset flags keep their stored value.
With --genkey the private key is replaced by a new one of the same
algorithm; the new public key must be installed on the host.`,
		Usage: "sshield update-key NAME [flags]",
		Examples: []cli.Example{
			{Description: "Move a key to a new port", Command: "sshield update-key build --port 2222"},
			{Description: "Rotate the key material", Command: "sshield update-key build --genkey"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("update-key", &params)
		},
		Run: func(args []string) error {
			if err := cli.RequireArgs("update-key", args, 1, 1, "NAME"); err != nil {
				return err
			}
			update, err := params.update()
			if err != nil {
				return err
			}
			if update.Empty() && !params.Genkey {
				return cli.Validation("update-key: nothing to change (use --user, --host, --port, or --genkey)")
			}
			return runUpdateKey(app, args[0], update, params.Genkey)
		},
	}
}

func runUpdateKey(app *App, nickname string, update keystore.Update, regenerate bool) error {
	s, err := app.begin("update-key", sandbox.Management)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.unlock(); err != nil {
		return err
	}

	existing, err := s.store.Get(s.ctx, nickname)
	if errors.Is(err, keystore.ErrNotFound) {
		return cli.NotFound("no key named %q", nickname)
	}
	if err != nil {
		return err
	}

	if !update.Empty() {
		if _, err := s.store.Update(s.ctx, nickname, update); err != nil {
			return err
		}
	}

	if regenerate {
		algorithm, err := keymaterial.AlgorithmForCipher(existing.Cipher)
		if err != nil {
			return err
		}
		material, err := keymaterial.Generate(algorithm)
		if err != nil {
			return err
		}
		blob, cipher, err := s.codec.Encode(material, nickname)
		if err != nil {
			return fmt.Errorf("sealing key: %w", err)
		}
		if _, err := s.store.ReplaceKey(s.ctx, nickname, blob, cipher); err != nil {
			return err
		}
		s.logger.Info("key material replaced",
			"nickname", nickname,
			"old_fingerprint", existing.Material.Fingerprint(),
			"new_fingerprint", material.Fingerprint(),
		)
	}

	key, err := s.store.Get(s.ctx, nickname)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout(), "Updated key '%s'\n%s\n", nickname, key)
	return nil
}
