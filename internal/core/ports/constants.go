package ports

const (
	// INRScale is the display precision of INR amounts.
	INRScale int32 = 2

	// USDTScale is the display precision of USDT amounts.
	USDTScale int32 = 6
)
