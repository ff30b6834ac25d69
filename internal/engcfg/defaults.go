package engcfg

import (
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// Defaults is the CLI-oriented configuration file (spec.md §6a), an
// ini file with a single [heracles] section. The core engine never
// reads this file, and cmd/heracles does not call LoadDefaults either:
// its flag defaults come from FromEnviron and built-in values.
type Defaults struct {
	Root       string
	LensLib    string
	SaveMode   string
	TypeCheck  bool
	EnableSpan bool
}

// LoadDefaults reads path as an ini file. A missing file is not an
// error: it just means no overrides, same as an absent rc file.
func LoadDefaults(path string) (*Defaults, error) {
	d := &Defaults{SaveMode: "overwrite"}
	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading defaults file %s", path)
	}
	sec := cfg.Section("heracles")
	d.Root = sec.Key("root").MustString(d.Root)
	d.LensLib = sec.Key("lens_lib").MustString(d.LensLib)
	d.SaveMode = sec.Key("save_mode").MustString(d.SaveMode)
	d.TypeCheck = sec.Key("type_check").MustBool(d.TypeCheck)
	d.EnableSpan = sec.Key("enable_span").MustBool(d.EnableSpan)
	return d, nil
}
