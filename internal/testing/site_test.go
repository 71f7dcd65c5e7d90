package testing

import (
	stderrors "errors"
	"testing"

	"github.com/user/formcheck/internal/errors"
)

func TestFakeDriver_TypeTruncatesAndValidates(t *testing.T) {
	site := NewTestSite()
	d := NewFakeDriver(site)
	ctx := t.Context()
	LoginAs(t, d, "mngr34926", "amUpenu")

	link, _ := d.Locate(ctx, `a[href="addcustomerpage.php"]`)
	if err := d.Click(ctx, link); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	pin, _ := d.Locate(ctx, `input[name="pinno"]`)
	_ = d.Type(ctx, pin, "1234")
	msg, _ := d.Locate(ctx, "#message6")
	text, _ := d.ReadText(ctx, msg)
	if text != MsgPinDigits {
		t.Errorf("Expected %q, got %q", MsgPinDigits, text)
	}

	_ = d.Type(ctx, pin, "56789")
	value, _ := d.ReadValue(ctx, pin)
	if value != "123456" {
		t.Errorf("Expected truncation to 123456, got %q", value)
	}
	if visible, _ := d.WaitVisible(ctx, msg, 0); visible {
		t.Error("Expected message to hide once the PIN is valid")
	}
}

func TestFakeDriver_MissingElementTimesOut(t *testing.T) {
	d := NewFakeDriver(NewTestSite())
	ctx := t.Context()
	_ = d.Navigate(ctx, TestSignupURL)

	el, _ := d.Locate(ctx, "#nope")
	err := d.Click(ctx, el)
	var timeout *errors.TimeoutError
	if !stderrors.As(err, &timeout) {
		t.Fatalf("Expected TimeoutError, got %v", err)
	}
}

func TestFakeDriver_SignupRegistersUser(t *testing.T) {
	site := NewTestSite()
	d := NewFakeDriver(site)
	ctx := t.Context()
	_ = d.Navigate(ctx, TestSignupURL)

	email, _ := d.Locate(ctx, `input[name="emailid"]`)
	_ = d.Type(ctx, email, "test_1@test.com")
	submit, _ := d.Locate(ctx, `input[type="submit"]`)
	_ = d.Click(ctx, submit)

	uidCell, _ := d.Locate(ctx, AccessSelector("User ID"))
	pwCell, _ := d.Locate(ctx, AccessSelector("Password"))
	uid, _ := d.ReadText(ctx, uidCell)
	pw, _ := d.ReadText(ctx, pwCell)

	other := NewFakeDriver(site)
	LoginAs(t, other, uid, pw)

	if site.Sessions() != 2 {
		t.Errorf("Expected 2 sessions, got %d", site.Sessions())
	}
}

func TestFakeDriver_UnarmedAlertIsRecorded(t *testing.T) {
	d := NewFakeDriver(NewTestSite())
	ctx := t.Context()
	_ = d.Navigate(ctx, TestBaseURL)

	btn, _ := d.Locate(ctx, `input[name="btnLogin"]`)
	_ = d.Click(ctx, btn)

	alerts := d.UnhandledAlerts()
	if len(alerts) != 1 || alerts[0] != AlertLoginInvalid {
		t.Errorf("Expected one login alert, got %v", alerts)
	}
}

func TestFakeDriver_ScriptErrorPolicy(t *testing.T) {
	site := NewTestSite()
	site.SetQuirks(Quirks{ScriptErrorOnLoad: stderrors.New("TypeError: x is undefined")})
	ctx := t.Context()

	strict := NewFakeDriver(site, WithIgnoreUncaught(false))
	var scriptErr *errors.PageScriptError
	if err := strict.Navigate(ctx, TestBaseURL); !stderrors.As(err, &scriptErr) {
		t.Errorf("Expected PageScriptError, got %v", err)
	}

	lenient := NewFakeDriver(site, WithIgnoreUncaught(true))
	if err := lenient.Navigate(ctx, TestBaseURL); err != nil {
		t.Errorf("Expected ignored script error, got %v", err)
	}
}
