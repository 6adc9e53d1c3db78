package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Listen   string   `koanf:"listen"`
	Storage  Storage  `koanf:"storage"`
	Exchange Exchange `koanf:"exchange"`
	Holidays Holidays `koanf:"holidays"`
	Auth     Auth     `koanf:"auth"`
	Notify   Notify   `koanf:"notify"`
	CrashLog CrashLog `koanf:"crashlog"`
}

type Storage struct {
	// Path of the persisted key-value document holding bills and the PIN digest.
	Path string `koanf:"path"`
}

type Exchange struct {
	// Dirs are candidate export/import directories, tried in order.
	Dirs []string `koanf:"dirs"`
}

type Holidays struct {
	// Region of the bank holiday calendar. Only "UK" is implemented.
	Region string `koanf:"region"`
	// Years is the size of the holiday window computed at startup.
	Years int `koanf:"years"`
}

type Auth struct {
	DefaultPIN string `koanf:"defaultpin"`
}

type Notify struct {
	// LeadHours is how long before the due date a reminder fires.
	LeadHours int `koanf:"leadhours"`
}

type CrashLog struct {
	// Dirs are candidate crash log directories, tried in order.
	Dirs []string `koanf:"dirs"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	err = k.Load(structs.Provider(Application{
		Listen: ":8282",
		Storage: Storage{
			Path: "bills_store.json",
		},
		Exchange: Exchange{
			Dirs: []string{
				filepath.Join(home, "Documents", "Billfold_Exports"),
				filepath.Join(home, "Billfold_Exports"),
			},
		},
		Holidays: Holidays{
			Region: "UK",
			Years:  10,
		},
		Auth: Auth{
			DefaultPIN: "1234",
		},
		Notify: Notify{
			LeadHours: 24,
		},
		CrashLog: CrashLog{
			Dirs: []string{
				filepath.Join(home, "Billfold_Logs"),
			},
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "BILLFOLD_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "BILLFOLD_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
