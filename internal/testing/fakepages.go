package testing

import (
	"context"
	"fmt"
)

// ReceiptSelector is the value cell next to a confirmation-table label
func ReceiptSelector(label string) string {
	return fmt.Sprintf(`td:text-is(%q) + td`, label)
}

// AccessSelector is the value cell next to a signup credential label
func AccessSelector(label string) string {
	return fmt.Sprintf(`td.accpage:has-text(%q) + td`, label)
}

func (d *FakeDriver) input(p *page, selector, errorSel string, maxLength int, validate func(string) string) {
	p.add(selector, &element{
		kind:      kindInput,
		maxLength: maxLength,
		visible:   true,
		validate:  validate,
		errorSel:  errorSel,
	})
	if errorSel != "" {
		p.errorSlot(errorSel)
	}
}

func (d *FakeDriver) loginPage() *page {
	s := d.site
	p := newPage(s.LoginURL(), "Guru99 Bank Home Page")
	p.text(".barone", "Guru99 Bank")
	d.input(p, `input[name="uid"]`, "#message23", 10, s.required("User-ID must not be blank"))
	d.input(p, `input[name="password"]`, "#message18", 0, s.required("Password must not be blank"))
	p.add(`input[name="btnLogin"]`, &element{kind: kindSubmit, visible: true, onClick: func(ctx context.Context) error {
		uid := p.elements[`input[name="uid"]`].value
		pw := p.elements[`input[name="password"]`].value
		if uid == "" || pw == "" || !s.login(uid, pw) {
			d.openAlert(AlertLoginInvalid)
			return nil
		}
		d.loggedIn = uid
		d.load(d.managerPage())
		return nil
	}})
	p.add(`input[name="btnReset"]`, &element{kind: kindReset, visible: true})
	return p
}

func (d *FakeDriver) managerPage() *page {
	p := newPage(d.site.ManagerURL(), "Guru99 Bank Manager HomePage")
	p.text("marquee.heading3", "Welcome To Manager's Page of Guru99 Bank")
	p.text(`td:has-text("Manger Id")`, "Manger Id : "+d.loggedIn)
	p.add(`a[href="addcustomerpage.php"]`, &element{kind: kindLink, text: "New Customer", visible: true, onClick: func(ctx context.Context) error {
		d.load(d.addCustomerPage())
		return nil
	}})
	return p
}

func (d *FakeDriver) signupPage() *page {
	s := d.site
	p := newPage(s.SignupURL, "Guru99 Bank Home Page")
	d.input(p, `input[name="emailid"]`, "#message9", 0, s.email("Email ID must not be blank", MsgSignupInvalid))
	p.add(`input[type="submit"]`, &element{kind: kindSubmit, visible: true, onClick: func(ctx context.Context) error {
		email := p.elements[`input[name="emailid"]`]
		d.revalidate(email)
		if p.elements["#message9"].visible {
			return nil
		}
		uid, pw := s.signup()
		d.load(d.accessPage(uid, pw))
		return nil
	}})
	return p
}

func (d *FakeDriver) accessPage(uid, pw string) *page {
	p := newPage(d.site.AccessURL(), "Guru99 Bank Home Page")
	p.text(AccessSelector("User ID"), uid)
	p.text(AccessSelector("Password"), pw)
	p.text("h3", TextAccessValidity)
	return p
}

var addCustomerInputs = []struct {
	id, selector string
}{
	{"name", `input[name="name"]`},
	{"dob", "#dob"},
	{"addr", `textarea[name="addr"]`},
	{"city", `input[name="city"]`},
	{"state", `input[name="state"]`},
	{"pinno", `input[name="pinno"]`},
	{"telephoneno", `input[name="telephoneno"]`},
	{"emailid", `input[name="emailid"]`},
	{"password", `input[name="password"]`},
}

func (d *FakeDriver) addCustomerPage() *page {
	s := d.site
	p := newPage(s.AddCustomerURL(), "Guru99 Bank New Customer Entry Page")

	flaky := s.takeFlakyLoad()
	if !s.getQuirks().MissingHeading && !flaky {
		p.text(".heading3", "Add New Customer")
	}

	d.input(p, `input[name="name"]`, "#message", 25, s.nameLike("Customer name must not be blank"))
	p.add(`input[name="rad1"][value="m"]`, &element{kind: kindRadio, group: "rad1", value: "m", checked: true, defaultChecked: true, visible: true})
	p.add(`input[name="rad1"][value="f"]`, &element{kind: kindRadio, group: "rad1", value: "f", visible: true})
	d.input(p, "#dob", "#message24", 0, s.date)
	d.input(p, `textarea[name="addr"]`, "#message3", 50, s.address)
	d.input(p, `input[name="city"]`, "#message4", 25, s.nameLike("City Field must not be blank"))
	d.input(p, `input[name="state"]`, "#message5", 25, s.nameLike("State must not be blank"))
	d.input(p, `input[name="pinno"]`, "#message6", 6, s.digits("PIN Code must not be blank", 6))
	d.input(p, `input[name="telephoneno"]`, "#message7", 15, s.digits("Mobile no must not be blank", 0))
	d.input(p, `input[name="emailid"]`, "#message9", 30, s.email("Email-ID must not be blank", MsgEmailInvalid))
	d.input(p, `input[name="password"]`, "#message18", 0, s.required("Password must not be blank"))

	p.add(`input[type="submit"]`, &element{kind: kindSubmit, visible: true, onClick: func(ctx context.Context) error {
		fields := make(map[string]string)
		for _, in := range addCustomerInputs {
			e := p.elements[in.selector]
			if e.validate(e.value) != "" {
				d.openAlert(AlertFillAllFields)
				return nil
			}
			fields[in.id] = e.value
		}
		fields["gender"] = "m"
		if p.elements[`input[name="rad1"][value="f"]`].checked {
			fields["gender"] = "f"
		}
		d.load(d.registeredPage(s.register(fields)))
		return nil
	}})
	p.add(`input[type="reset"]`, &element{kind: kindReset, visible: true})
	return p
}

func (d *FakeDriver) registeredPage(c Customer) *page {
	p := newPage(d.site.RegisteredURL(c.ID), "Guru 99 Bank Customer Registration Page")

	banner := TextRegistered
	if d.site.getQuirks().SuccessTextTypo {
		banner = "Customer Registred Successfully!!!"
	}
	p.text("p.heading3", banner)

	gender := "male"
	if c.Fields["gender"] == "f" {
		gender = "female"
	}
	rows := []struct{ label, value string }{
		{"Customer ID", c.ID},
		{"Customer Name", c.Fields["name"]},
		{"Gender", gender},
		{"Birthdate", c.Fields["dob"]},
		{"Address", c.Fields["addr"]},
		{"City", c.Fields["city"]},
		{"State", c.Fields["state"]},
		{"Pin", c.Fields["pinno"]},
		{"Mobile No.", c.Fields["telephoneno"]},
		{"Email", c.Fields["emailid"]},
	}
	for _, r := range rows {
		p.text(ReceiptSelector(r.label), r.value)
	}
	return p
}
