package pages

import (
	"fmt"

	"github.com/user/formcheck/internal/form"
)

// Signup page selectors
const (
	SignupEmail  = `input[name="emailid"]`
	SignupSubmit = `input[type="submit"]`
)

const (
	MsgSignupEmailBlank   = "Email ID must not be blank"
	MsgSignupEmailInvalid = "Email ID is not valid"
	TextAccessValidity    = "This access is valid only for 20 days."
)

// AccessCell is the credential cell next to a label on the access page
func AccessCell(label string) string {
	return fmt.Sprintf(`td.accpage:has-text(%q) + td`, label)
}

// SignupModel describes the email signup form. The email message only
// appears once the form is submitted.
func SignupModel(gen *form.Generator) (*form.FormModel, error) {
	return form.New(form.ModelSpec{
		Name:          "signup",
		SubmitLocator: SignupSubmit,
		Fields: []form.FieldDescriptor{
			{
				ID:               "emailid",
				Label:            "Email ID",
				Locator:          SignupEmail,
				ErrorLocator:     "#message9",
				Required:         true,
				ValidateOnSubmit: true,
				ValidSample:      gen.EmailSource(),
				Rules: []form.Rule{
					{ExpectedMessage: MsgSignupEmailBlank},
					{InvalidInput: "mail", ExpectedMessage: MsgSignupEmailInvalid},
					{InvalidInput: "mail@email", ExpectedMessage: MsgSignupEmailInvalid},
				},
			},
		},
		Success: form.SuccessIndicator{
			ExpectedURLFragment: "access.php",
			ExpectedText:        TextAccessValidity,
		},
		Receipt: []form.ReceiptEntry{
			{Label: "User ID", Locator: AccessCell("User ID")},
			{Label: "Password", Locator: AccessCell("Password")},
		},
	})
}
