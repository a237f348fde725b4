package model

// Network describes one deposit/withdraw network of a coin.
type Network struct {
	Network              string  `json:"network"`
	Coin                 string  `json:"coin"`
	Name                 string  `json:"name"`
	IsDefault            bool    `json:"isDefault"`
	DepositEnable        bool    `json:"depositEnable"`
	WithdrawEnable       bool    `json:"withdrawEnable"`
	WithdrawFee          string  `json:"withdrawFee"`
	WithdrawMin          string  `json:"withdrawMin"`
	WithdrawMax          string  `json:"withdrawMax"`
	MinConfirm           int     `json:"minConfirm"`
	UnLockConfirm        int     `json:"unLockConfirm"`
	Busy                 bool    `json:"busy"`
	EstimatedArrivalTime int64   `json:"estimatedArrivalTime"`
	ContractAddress      *string `json:"contractAddress,omitempty"`
}

// CoinInfo is one entry of the exchange coin catalog.
type CoinInfo struct {
	Coin              string    `json:"coin"`
	Name              string    `json:"name"`
	DepositAllEnable  bool      `json:"depositAllEnable"`
	WithdrawAllEnable bool      `json:"withdrawAllEnable"`
	Free              string    `json:"free"`
	Locked            string    `json:"locked"`
	IsLegalMoney      bool      `json:"isLegalMoney"`
	Trading           bool      `json:"trading"`
	NetworkList       []Network `json:"networkList"`
}

// QuoteAsset is the asset every catalog symbol is quoted in.
const QuoteAsset = "USDT"

// Symbol returns the trading pair against the quote asset.
func (c CoinInfo) Symbol() string { return c.Coin + QuoteAsset }
