package fixtures

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/user/formcheck/internal/errors"
	testHelpers "github.com/user/formcheck/internal/testing"
)

func TestDefault(t *testing.T) {
	set, err := Default()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if set.Login.UserID != "mngr34926" {
		t.Errorf("Expected default user mngr34926, got %s", set.Login.UserID)
	}
	if set.Customer.GenderValue() != "f" {
		t.Errorf("Expected gender f, got %s", set.Customer.GenderValue())
	}
	if err := set.Validate(); err != nil {
		t.Errorf("Expected embedded fixtures to validate, got %v", err)
	}
}

func TestLoad_NoDirectory(t *testing.T) {
	set, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	def, _ := Default()
	if diff := cmp.Diff(def, set); diff != "" {
		t.Errorf("Expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoad_JSONOverride(t *testing.T) {
	dir := t.TempDir()
	testHelpers.WriteFile(t, dir, "login.json", `{"userID": "mngr1", "password": "pw"}`)

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := Login{UserID: "mngr1", Password: "pw"}
	if diff := cmp.Diff(want, set.Login); diff != "" {
		t.Errorf("Login mismatch (-want +got):\n%s", diff)
	}
	if set.Customer.PIN != "540123" {
		t.Errorf("Expected customer defaults kept, got pin %q", set.Customer.PIN)
	}
}

func TestLoad_YAMLOverride(t *testing.T) {
	dir := t.TempDir()
	testHelpers.WriteFile(t, dir, "customer.yaml", testHelpers.SampleCustomerYAML())

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if set.Customer.Address.City != "Springfield" {
		t.Errorf("Expected city Springfield, got %s", set.Customer.Address.City)
	}
	if set.Customer.MobileOver15Digits != "12345678901234567" {
		t.Errorf("Expected mobile overflow from file, got %s", set.Customer.MobileOver15Digits)
	}
}

func TestLoad_PartialOverrideKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	testHelpers.WriteFile(t, dir, "customer.yml", "gender: 0\npin: 112233\n")

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if set.Customer.GenderValue() != "m" {
		t.Errorf("Expected gender m, got %s", set.Customer.GenderValue())
	}
	if set.Customer.PIN != "112233" {
		t.Errorf("Expected pin 112233, got %s", set.Customer.PIN)
	}
	if set.Customer.DOB != "1990-04-17" {
		t.Errorf("Expected default dob, got %s", set.Customer.DOB)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"BadGender", "customer.yaml", "gender: 2\n"},
		{"BadDate", "customer.yaml", "dob: 17/04/1990\n"},
		{"ShortPin", "customer.yaml", "pin: \"123\"\n"},
		{"ShortOverflow", "customer.yaml", "pinOver6Digits: \"123456\"\n"},
		{"EmptyUser", "login.json", `{"userID": ""}`},
		{"Malformed", "login.json", `{"userID": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			testHelpers.WriteFile(t, dir, tt.file, tt.content)

			_, err := Load(dir)
			var fixErr *errors.FixtureError
			if !stderrors.As(err, &fixErr) {
				t.Fatalf("Expected FixtureError, got %v", err)
			}
			if errors.ExitCodeOf(err) != errors.ExitIOError {
				t.Errorf("Expected exit code %d, got %d", errors.ExitIOError, errors.ExitCodeOf(err))
			}
		})
	}
}
