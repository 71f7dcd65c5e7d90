package pages

import (
	"fmt"

	"github.com/user/formcheck/internal/form"
)

// Add-customer page selectors
const (
	NewCustomerLink     = `a[href="addcustomerpage.php"]`
	CustomerSubmit      = `input[type="submit"]`
	CustomerReset       = `input[type="reset"]`
	CustomerMaleRadio   = `input[name="rad1"][value="m"]`
	CustomerFemaleRadio = `input[name="rad1"][value="f"]`
)

// Add-customer messages
const (
	MsgFirstCharSpace  = "First character can not have space"
	MsgCharsNotAllowed = "Characters are not allowed"
	MsgPinSixDigits    = "PIN Code must have 6 Digits"
	AlertFillAllFields = "please fill all fields"
	TextRegistered     = "Customer Registered Successfully!!!"

	// Leading space is the invalid prefix every text field rejects
	leadingSpace = " start with space"
)

// NameLength is the number of random letters in a generated customer name
const NameLength = 5

// ReceiptCell is the value cell next to a label on the registration page
func ReceiptCell(label string) string {
	return fmt.Sprintf(`td:text-is(%q) + td`, label)
}

// AddCustomerModel describes the new-customer form and its registration
// receipt. Name and email samples come from gen so every submission is
// unique.
func AddCustomerModel(gen *form.Generator) (*form.FormModel, error) {
	return form.New(form.ModelSpec{
		Name:           "add-customer",
		PageHeading:    "Add New Customer",
		HeadingLocator: ".heading3",
		SubmitLocator:  CustomerSubmit,
		ResetLocator:   CustomerReset,
		Fields: []form.FieldDescriptor{
			{
				ID: "name", Label: "Customer Name",
				Locator: `input[name="name"]`, ErrorLocator: "#message",
				MaxLength: 25, Required: true,
				ValidSample: gen.NameSource(NameLength),
				Rules: []form.Rule{
					{ExpectedMessage: "Customer name must not be blank"},
					{InvalidInput: leadingSpace, ExpectedMessage: MsgFirstCharSpace},
				},
			},
			{
				ID: "gender", Label: "Gender", Kind: form.KindChoice,
				Choices: []form.Choice{
					{Value: "m", Locator: CustomerMaleRadio, Label: "male"},
					{Value: "f", Locator: CustomerFemaleRadio, Label: "female"},
				},
			},
			{
				ID: "dob", Label: "Date of Birth", Kind: form.KindDate,
				Locator: "#dob", ErrorLocator: "#message24",
				Required: true,
			},
			{
				ID: "addr", Label: "Address",
				Locator: `textarea[name="addr"]`, ErrorLocator: "#message3",
				MaxLength: 50, Required: true,
				Rules: []form.Rule{
					{ExpectedMessage: "Address Field must not be blank"},
					{InvalidInput: leadingSpace, ExpectedMessage: MsgFirstCharSpace},
				},
			},
			{
				ID: "city", Label: "City",
				Locator: `input[name="city"]`, ErrorLocator: "#message4",
				MaxLength: 25, Required: true,
				Rules: []form.Rule{
					{ExpectedMessage: "City Field must not be blank"},
					{InvalidInput: leadingSpace, ExpectedMessage: MsgFirstCharSpace},
				},
			},
			{
				ID: "state", Label: "State",
				Locator: `input[name="state"]`, ErrorLocator: "#message5",
				MaxLength: 25, Required: true,
				Rules: []form.Rule{
					{ExpectedMessage: "State must not be blank"},
					{InvalidInput: leadingSpace, ExpectedMessage: MsgFirstCharSpace},
				},
			},
			{
				ID: "pinno", Label: "PIN",
				Locator: `input[name="pinno"]`, ErrorLocator: "#message6",
				MaxLength: 6, Required: true,
				ResetBeforeInvalid: true,
				Rules: []form.Rule{
					{ExpectedMessage: "PIN Code must not be blank"},
					{InvalidInput: " ", ExpectedMessage: MsgFirstCharSpace},
					{InvalidInput: "text", ExpectedMessage: MsgCharsNotAllowed},
					{InvalidInput: "1234", ExpectedMessage: MsgPinSixDigits},
				},
			},
			{
				ID: "telephoneno", Label: "Mobile Number",
				Locator: `input[name="telephoneno"]`, ErrorLocator: "#message7",
				MaxLength: 15, Required: true,
				ResetBeforeInvalid: true,
				Rules: []form.Rule{
					{ExpectedMessage: "Mobile no must not be blank"},
					{InvalidInput: " space", ExpectedMessage: MsgFirstCharSpace},
					{InvalidInput: "text", ExpectedMessage: MsgCharsNotAllowed},
				},
			},
			{
				ID: "emailid", Label: "E-mail",
				Locator: `input[name="emailid"]`, ErrorLocator: "#message9",
				MaxLength: 30, Required: true,
				ValidSample: gen.EmailSource(),
				Rules: []form.Rule{
					{ExpectedMessage: "Email-ID must not be blank"},
					{InvalidInput: " startwithspace", ExpectedMessage: MsgFirstCharSpace},
				},
			},
			{
				ID: "password", Label: "Password",
				Locator: `input[name="password"]`, ErrorLocator: "#message18",
				Required: true,
				Rules:    []form.Rule{{ExpectedMessage: "Password must not be blank"}},
			},
		},
		Success: form.SuccessIndicator{
			Locator:             "p.heading3",
			ExpectedText:        TextRegistered,
			ExpectedURLFragment: "CustomerRegMsg.php",
		},
		Failure: form.FailureIndicator{ExpectedAlertSubstring: AlertFillAllFields},
		Receipt: []form.ReceiptEntry{
			{Label: "Customer ID", Locator: ReceiptCell("Customer ID")},
			{Label: "Customer Name", Locator: ReceiptCell("Customer Name"), FieldID: "name"},
			{Label: "Gender", Locator: ReceiptCell("Gender"), FieldID: "gender"},
			{Label: "Birthdate", Locator: ReceiptCell("Birthdate"), FieldID: "dob"},
			{Label: "Address", Locator: ReceiptCell("Address"), FieldID: "addr"},
			{Label: "City", Locator: ReceiptCell("City"), FieldID: "city"},
			{Label: "State", Locator: ReceiptCell("State"), FieldID: "state"},
			{Label: "Pin", Locator: ReceiptCell("Pin"), FieldID: "pinno"},
			{Label: "Mobile No.", Locator: ReceiptCell("Mobile No."), FieldID: "telephoneno"},
			{Label: "Email", Locator: ReceiptCell("Email"), FieldID: "emailid"},
		},
	})
}
