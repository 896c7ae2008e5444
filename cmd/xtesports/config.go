package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

type configFlags struct {
	optsPath    *string
	secretsPath *string
}

func addConfigFlags(p *pflag.FlagSet) configFlags {
	return configFlags{
		optsPath: p.StringP(
			"options", "o", "",
			"options file",
		),
		secretsPath: p.StringP(
			"secrets", "s", "secrets.toml",
			"secrets file, created if missing",
		),
	}
}

func readSecrets(path string) (*Secrets, error) {
	rawSecrets, err := os.ReadFile(path)
	if err != nil {
		rawSecrets = nil
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read secrets: %w", err)
		}
	}
	var secrets Secrets
	if err := toml.Unmarshal(rawSecrets, &secrets); err != nil {
		return nil, fmt.Errorf("unmarshal secrets: %w", err)
	}
	secretsChanged, err := secrets.GenerateMissing()
	if err != nil {
		return nil, fmt.Errorf("generate secrets: %w", err)
	}
	if secretsChanged {
		newRawSecrets, err := toml.Marshal(&secrets)
		if err != nil {
			return nil, fmt.Errorf("marshal secrets: %w", err)
		}
		if err := os.WriteFile(path, newRawSecrets, 0600); err != nil {
			return nil, fmt.Errorf("write secrets: %w", err)
		}
	}
	return &secrets, nil
}

// load builds options from the options file, the secrets file and the environment, in this
// order of increasing priority.
func (f configFlags) load() (*Options, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var opts Options
	if *f.optsPath != "" {
		rawOpts, err := os.ReadFile(*f.optsPath)
		if err != nil {
			return nil, fmt.Errorf("read options: %w", err)
		}
		if err := toml.Unmarshal(rawOpts, &opts); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
	}

	secrets, err := readSecrets(*f.secretsPath)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(&opts, secrets, osLookup); err != nil {
		return nil, fmt.Errorf("apply env: %w", err)
	}
	if err := opts.MixSecrets(secrets); err != nil {
		return nil, fmt.Errorf("mix secrets into options: %w", err)
	}
	opts.FillDefaults()
	return &opts, nil
}
