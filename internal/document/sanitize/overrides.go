package sanitize

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Overrides extends the built-in tables with confusions found in production.
//
//	name:
//	  "4": "A"
//	numeric:
//	  "U": "0"
//	filler_noise: "LSCKE"
type Overrides struct {
	Name        map[string]string `yaml:"name"`
	Numeric     map[string]string `yaml:"numeric"`
	FillerNoise string            `yaml:"filler_noise"`
}

// LoadOverrides decodes YAML overrides.
func LoadOverrides(r io.Reader) (Overrides, error) {
	var o Overrides
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && err != io.EOF {
		return Overrides{}, fmt.Errorf("decode sanitizer overrides: %w", err)
	}
	return o, nil
}

// FromFile builds a sanitizer from the YAML overrides at path. An empty path
// returns Default.
func FromFile(path string) (*Sanitizer, error) {
	if path == "" {
		return Default, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sanitizer overrides: %w", err)
	}
	defer f.Close()

	o, err := LoadOverrides(f)
	if err != nil {
		return nil, err
	}
	return New(o)
}

func (o Overrides) applyTo(s *Sanitizer) error {
	for k, v := range o.Name {
		from, to, err := checkSingle("name", k, v)
		if err != nil {
			return err
		}
		if !isUpper(to) && to != Filler {
			return fmt.Errorf("sanitize: name override %q must map to a letter or filler", k)
		}
		s.toLetter[from] = to
	}
	for k, v := range o.Numeric {
		from, to, err := checkSingle("numeric", k, v)
		if err != nil {
			return err
		}
		if !isDigit(to) && to != Filler {
			return fmt.Errorf("sanitize: numeric override %q must map to a digit or filler", k)
		}
		s.toDigit[from] = to
	}
	if o.FillerNoise != "" {
		for i := 0; i < len(o.FillerNoise); i++ {
			if !isUpper(o.FillerNoise[i]) {
				return fmt.Errorf("sanitize: filler noise %q must be uppercase letters", o.FillerNoise)
			}
		}
		s.setNoise(o.FillerNoise)
	}
	return nil
}
