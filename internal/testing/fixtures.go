package testing

// SampleLoginJSON is a login fixture matching the simulated site's account
func SampleLoginJSON() string {
	return `{
  "userID": "mngr34926",
  "password": "amUpenu"
}
`
}

// SampleCustomerYAML is a customer fixture in YAML form
func SampleCustomerYAML() string {
	return `gender: 1
dob: "1990-04-17"
address:
  street: 12 Orchard Lane
  city: Springfield
  state: Oregon
pin: "540123"
mobile: "5551234567"
password: s3cretPass
nameOver25Chars: Tester Abcdefghijklmnopqrstuvwxyz
addressOver50Chars: 1234 Long Address Street Suite Number Five Hundred And Twelve
cityOver25Chars: Llanfairpwllgwyngyllgogerych
stateOver25Chars: Northern Territories Of The West
pinOver6Digits: "1234567"
mobileOver15Digits: "12345678901234567"
emailOver30Chars: very_long_email_address_for_testing@test.com
`
}
