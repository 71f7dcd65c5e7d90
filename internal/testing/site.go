package testing

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/user/formcheck/internal/driver"
)

// Guru99 message texts served by the simulated site
const (
	MsgFirstCharSpace  = "First character can not have space"
	MsgCharsNotAllowed = "Characters are not allowed"
	MsgNumbersNotAllow = "Numbers are not allowed"
	MsgSpecialChars    = "Special characters are not allowed"
	MsgPinDigits       = "PIN Code must have 6 Digits"
	MsgEmailInvalid    = "Email-ID is not valid"
	MsgSignupInvalid   = "Email ID is not valid"
	AlertLoginInvalid  = "User or Password is not valid"
	AlertFillAllFields = "please fill all fields"
	TextRegistered     = "Customer Registered Successfully!!!"
	TextAccessValidity = "This access is valid only for 20 days."
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)+$`)

// Quirks make the simulated site misbehave so failure paths can be tested
type Quirks struct {
	IgnoreMaxLength   bool              // Inputs accept any length
	MessageOverrides  map[string]string // Served message keyed by the correct one
	MissingHeading    bool              // Add-customer heading never renders
	FlakyHeadingLoads int               // The first N add-customer loads miss the heading
	NoAlerts          bool              // Invalid submissions open no alert
	RejectLogins      bool              // Every login fails
	ScriptErrorOnLoad error             // Every page load throws this
	SuccessTextTypo   bool              // Registration page prints a wrong banner
}

// Customer is one record created through the add-customer form
type Customer struct {
	ID     string
	Fields map[string]string
}

// Site simulates the Guru99 banking demo. It is shared by every session
// opened from it and safe for concurrent use.
type Site struct {
	BaseURL   string
	SignupURL string

	mu        sync.Mutex
	users     map[string]string
	customers []Customer
	nextID    int
	quirks    Quirks
	sessions  int
}

// NewGuru99Site creates a site with one known manager account
func NewGuru99Site(baseURL, signupURL string) *Site {
	return &Site{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		SignupURL: signupURL,
		users:     map[string]string{"mngr34926": "amUpenu"},
		nextID:    1000,
	}
}

// AddUser registers a manager account
func (s *Site) AddUser(uid, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[uid] = password
}

// SetQuirks replaces the site's misbehaviour switches
func (s *Site) SetQuirks(q Quirks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quirks = q
}

func (s *Site) getQuirks() Quirks {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quirks
}

// takeFlakyLoad consumes one flaky heading load
func (s *Site) takeFlakyLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quirks.FlakyHeadingLoads > 0 {
		s.quirks.FlakyHeadingLoads--
		return true
	}
	return false
}

// Customers returns every registered customer
func (s *Site) Customers() []Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Customer(nil), s.customers...)
}

// Sessions returns how many sessions were opened
func (s *Site) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions
}

func (s *Site) login(uid, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quirks.RejectLogins {
		return false
	}
	pw, ok := s.users[uid]
	return ok && pw == password
}

func (s *Site) register(fields map[string]string) Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c := Customer{ID: fmt.Sprint(s.nextID), Fields: fields}
	s.customers = append(s.customers, c)
	return c
}

func (s *Site) signup() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	uid := fmt.Sprintf("mngr%d", s.nextID)
	pw := fmt.Sprintf("pw%dX", s.nextID)
	s.users[uid] = pw
	return uid, pw
}

func (s *Site) message(correct string) string {
	q := s.getQuirks()
	if override, ok := q.MessageOverrides[correct]; ok {
		return override
	}
	return correct
}

// Factory opens a fresh FakeDriver session per call
func (s *Site) Factory(opts ...FakeOption) driver.Factory {
	return driver.FactoryFunc(func(ctx context.Context) (driver.Driver, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return NewFakeDriver(s, opts...), nil
	})
}

// URL helpers
func (s *Site) LoginURL() string       { return s.BaseURL + "/" }
func (s *Site) ManagerURL() string     { return s.BaseURL + "/manager/Managerhomepage.php" }
func (s *Site) AddCustomerURL() string { return s.BaseURL + "/manager/addcustomerpage.php" }
func (s *Site) RegisteredURL(id string) string {
	return s.BaseURL + "/manager/CustomerRegMsg.php?cid=" + id
}
func (s *Site) AccessURL() string { return strings.TrimRight(s.SignupURL, "/") + "/access.php" }

// Field validators modelled on the demo site's keyup handlers

func firstCharSpace(v string) bool { return strings.HasPrefix(v, " ") }

func hasDigit(v string) bool {
	return strings.IndexFunc(v, unicode.IsDigit) >= 0
}

func hasSpecial(v string, allowDigits bool) bool {
	for _, r := range v {
		if unicode.IsLetter(r) || r == ' ' || (allowDigits && unicode.IsDigit(r)) {
			continue
		}
		return true
	}
	return false
}

func (s *Site) nameLike(blank string) func(string) string {
	return func(v string) string {
		switch {
		case v == "":
			return s.message(blank)
		case firstCharSpace(v):
			return s.message(MsgFirstCharSpace)
		case hasDigit(v):
			return s.message(MsgNumbersNotAllow)
		case hasSpecial(v, false):
			return s.message(MsgSpecialChars)
		}
		return ""
	}
}

func (s *Site) address(v string) string {
	switch {
	case v == "":
		return s.message("Address Field must not be blank")
	case firstCharSpace(v):
		return s.message(MsgFirstCharSpace)
	case hasSpecial(v, true):
		return s.message(MsgSpecialChars)
	}
	return ""
}

func (s *Site) digits(blank string, exact int) func(string) string {
	return func(v string) string {
		switch {
		case v == "":
			return s.message(blank)
		case firstCharSpace(v):
			return s.message(MsgFirstCharSpace)
		case strings.IndexFunc(v, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0:
			return s.message(MsgCharsNotAllowed)
		case exact > 0 && len(v) != exact:
			return s.message(MsgPinDigits)
		}
		return ""
	}
}

func (s *Site) email(blank, invalid string) func(string) string {
	return func(v string) string {
		switch {
		case v == "":
			return s.message(blank)
		case firstCharSpace(v):
			return s.message(MsgFirstCharSpace)
		case !emailPattern.MatchString(v):
			return s.message(invalid)
		}
		return ""
	}
}

func (s *Site) required(blank string) func(string) string {
	return func(v string) string {
		if v == "" {
			return s.message(blank)
		}
		return ""
	}
}

func (s *Site) date(v string) string {
	if v == "" {
		return s.message("Date Field must not be blank")
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		return s.message("Date Field must not be blank")
	}
	return ""
}
