package runner

// Party is a sender or receiver block of an MT103 transfer.
type Party struct {
	Name    string `json:"Name"`
	Account string `json:"Account,omitempty"`
	IBAN    string `json:"IBAN"`
	Bank    string `json:"Bank"`
	SWIFT   string `json:"SWIFT"`
}

// MT103 is the transfer document posted by the API scenario.
type MT103 struct {
	Protocol string  `json:"protocol"`
	Server   string  `json:"server"`
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
	Sender   Party   `json:"sender"`
	Receiver Party   `json:"receiver"`
}

// SamplePayload returns the representative transfer used for every API call.
func SamplePayload() MT103 {
	return MT103{
		Protocol: "101.1",
		Server:   "SBI-3.10.0693.5.2-e19",
		Currency: "EUR",
		Amount:   1000.00,
		Sender: Party{
			Name:    "Test Sender",
			Account: "123456789",
			IBAN:    "SA0380000000608010167519",
			Bank:    "Test Bank",
			SWIFT:   "SABBSARI",
		},
		Receiver: Party{
			Name:  "Test Receiver",
			IBAN:  "DE89370400440532013000",
			Bank:  "Test Bank DE",
			SWIFT: "COBADEFF",
		},
	}
}
