// Package fixtures holds the test data the built-in workflows submit:
// the manager login and the customer record.
package fixtures

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/formcheck/internal/errors"
	"github.com/user/formcheck/internal/form"
)

//go:embed data/*.json
var defaults embed.FS

// Login is the manager account used to sign in
type Login struct {
	UserID   string `yaml:"userID" json:"userID"`
	Password string `yaml:"password" json:"password"`
}

// Address is the customer's postal address
type Address struct {
	Street string `yaml:"street" json:"street"`
	City   string `yaml:"city" json:"city"`
	State  string `yaml:"state" json:"state"`
}

// Customer is a valid customer record plus one over-long input per
// length-limited field. Gender is a radio index: 0 male, 1 female.
type Customer struct {
	Gender   int     `yaml:"gender" json:"gender"`
	DOB      string  `yaml:"dob" json:"dob"`
	Address  Address `yaml:"address" json:"address"`
	PIN      string  `yaml:"pin" json:"pin"`
	Mobile   string  `yaml:"mobile" json:"mobile"`
	Password string  `yaml:"password" json:"password"`

	NameOver25Chars    string `yaml:"nameOver25Chars" json:"nameOver25Chars"`
	AddressOver50Chars string `yaml:"addressOver50Chars" json:"addressOver50Chars"`
	CityOver25Chars    string `yaml:"cityOver25Chars" json:"cityOver25Chars"`
	StateOver25Chars   string `yaml:"stateOver25Chars" json:"stateOver25Chars"`
	PINOver6Digits     string `yaml:"pinOver6Digits" json:"pinOver6Digits"`
	MobileOver15Digits string `yaml:"mobileOver15Digits" json:"mobileOver15Digits"`
	EmailOver30Chars   string `yaml:"emailOver30Chars" json:"emailOver30Chars"`
}

// GenderValue maps the radio index to the radio's value attribute
func (c Customer) GenderValue() string {
	if c.Gender == 1 {
		return "f"
	}
	return "m"
}

// Set is every fixture a run needs. It is loaded once and read-only.
type Set struct {
	Login    Login
	Customer Customer
}

// Default returns the embedded fixtures
func Default() (*Set, error) {
	set := &Set{}
	if err := decodeEmbedded("login", &set.Login); err != nil {
		return nil, err
	}
	if err := decodeEmbedded("customer", &set.Customer); err != nil {
		return nil, err
	}
	return set, nil
}

// Load returns the embedded fixtures overlaid with login.{json,yaml,yml} and
// customer.{json,yaml,yml} from dir. Keys absent from a file keep their
// default. An empty dir loads the defaults only.
func Load(dir string) (*Set, error) {
	set, err := Default()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		if err := overlay(dir, "login", &set.Login); err != nil {
			return nil, err
		}
		if err := overlay(dir, "customer", &set.Customer); err != nil {
			return nil, err
		}
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func decodeEmbedded(name string, out interface{}) error {
	data, err := defaults.ReadFile("data/" + name + ".json")
	if err != nil {
		return errors.NewFixtureError(name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.NewFixtureError(name, err)
	}
	return nil
}

// overlay decodes the first existing file for name onto out. JSON is valid
// YAML, so one decoder serves both.
func overlay(dir, name string, out interface{}) error {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return errors.NewFixtureError(path, err)
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return errors.NewFixtureError(path, err)
		}
		return nil
	}
	return nil
}

// Validate checks the fixtures are usable as valid form input
func (s *Set) Validate() error {
	c := s.Customer
	required := []struct{ key, value string }{
		{"login.userID", s.Login.UserID},
		{"login.password", s.Login.Password},
		{"customer.dob", c.DOB},
		{"customer.address.street", c.Address.Street},
		{"customer.address.city", c.Address.City},
		{"customer.address.state", c.Address.State},
		{"customer.pin", c.PIN},
		{"customer.mobile", c.Mobile},
		{"customer.password", c.Password},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.NewFixtureError(r.key, fmt.Errorf("value is empty"))
		}
	}

	if c.Gender != 0 && c.Gender != 1 {
		return errors.NewFixtureError("customer.gender", fmt.Errorf("must be 0 (male) or 1 (female), got %d", c.Gender))
	}
	if _, err := time.Parse("2006-01-02", c.DOB); err != nil {
		return errors.NewFixtureError("customer.dob", fmt.Errorf("must be YYYY-MM-DD: %w", err))
	}
	if _, err := strconv.Atoi(c.PIN); err != nil || len(c.PIN) != 6 {
		return errors.NewFixtureError("customer.pin", fmt.Errorf("must be 6 digits, got %q", c.PIN))
	}

	overflows := []struct {
		key   string
		value string
		max   int
	}{
		{"customer.nameOver25Chars", c.NameOver25Chars, 25},
		{"customer.addressOver50Chars", c.AddressOver50Chars, 50},
		{"customer.cityOver25Chars", c.CityOver25Chars, 25},
		{"customer.stateOver25Chars", c.StateOver25Chars, 25},
		{"customer.pinOver6Digits", c.PINOver6Digits, 6},
		{"customer.mobileOver15Digits", c.MobileOver15Digits, 15},
		{"customer.emailOver30Chars", c.EmailOver30Chars, 30},
	}
	for _, o := range overflows {
		if o.value == "" {
			continue
		}
		if n := form.InputLength(o.value); n <= o.max {
			return errors.NewFixtureError(o.key, fmt.Errorf("needs more than %d characters, has %d", o.max, n))
		}
	}
	return nil
}
