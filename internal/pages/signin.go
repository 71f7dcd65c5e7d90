// Package pages declares the Guru99 demo forms and the built-in workflows
// that exercise them.
package pages

import (
	"strings"

	"github.com/user/formcheck/internal/form"
)

// Sign-in page selectors
const (
	LoginUserID   = `input[name="uid"]`
	LoginPassword = `input[name="password"]`
	LoginButton   = `input[name="btnLogin"]`
	LoginReset    = `input[name="btnReset"]`

	managerPath = "manager/Managerhomepage.php"
)

// Sign-in messages
const (
	MsgUserIDBlank   = "User-ID must not be blank"
	MsgPasswordBlank = "Password must not be blank"
	AlertLoginFailed = "User or Password is not valid"
)

// LoginURL is the sign-in page under baseURL
func LoginURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/"
}

// SigninModel describes the manager login form. A valid login lands on the
// manager home page greeting the user id.
func SigninModel() (*form.FormModel, error) {
	return form.New(form.ModelSpec{
		Name:           "signin",
		PageHeading:    "Guru99 Bank",
		HeadingLocator: ".barone",
		SubmitLocator:  LoginButton,
		ResetLocator:   LoginReset,
		Fields: []form.FieldDescriptor{
			{
				ID:           "uid",
				Label:        "User-ID",
				Locator:      LoginUserID,
				ErrorLocator: "#message23",
				MaxLength:    10,
				Required:     true,
				Rules:        []form.Rule{{ExpectedMessage: MsgUserIDBlank}},
			},
			{
				ID:           "password",
				Label:        "Password",
				Locator:      LoginPassword,
				ErrorLocator: "#message18",
				Required:     true,
				Rules:        []form.Rule{{ExpectedMessage: MsgPasswordBlank}},
			},
		},
		Success: form.SuccessIndicator{
			ExpectedURLFragment: managerPath,
			ExpectedText:        "Manger Id : {uid}",
		},
		Failure: form.FailureIndicator{ExpectedAlertSubstring: AlertLoginFailed},
	})
}
