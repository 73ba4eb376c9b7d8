package config

var Network string

// flags shared by every command
var (
	ConfigFile string
	LogLevel   string
	JSONOutput bool
)

// flags of the transactional commands
var (
	GasPrice          float64
	TipGas            float64
	ExtraGasPrice     float64
	ExtraTipGas       float64
	GasLimit          uint64
	ExtraGasLimit     uint64
	Nonce             uint64
	From              string
	DontBroadcast     bool
	DontWaitToBeMined bool
	ForceLegacy       bool
	Yes               bool
)

// flags of the read commands
var (
	RawURI        string
	WatchInterval string
	ListenAddr    string
)
